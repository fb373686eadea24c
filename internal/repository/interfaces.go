package repository

import (
	"context"
	"time"

	"github.com/sitemaster/dpr/internal/domain"
)

// StoredRecord is a DPR record as the stand-in backend keeps it. The work
// completion pair is kept separately from the percent so the backend can send
// either, as the real one does.
type StoredRecord struct {
	domain.Record
	WorkCompletionValue *float64
	WorkCompletionUnit  string
}

// RecordQuery selects a page of records.
type RecordQuery struct {
	Page      int
	Limit     int
	Search    string
	ProjectID string
	Status    domain.Status
}

type RecordRepo interface {
	Create(ctx context.Context, r *StoredRecord) error
	GetByID(ctx context.Context, id string) (*StoredRecord, error)
	// List returns the requested page and the number of matching records.
	List(ctx context.Context, q RecordQuery) ([]*StoredRecord, int, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, at time.Time) error
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)
	// All returns every record, oldest first.
	All(ctx context.Context) ([]*StoredRecord, error)
}

// HistoryRepo is append-only.
type HistoryRepo interface {
	Append(ctx context.Context, recordID string, e domain.ProgressEntry) error
	ListByRecord(ctx context.Context, recordID string) ([]domain.ProgressEntry, error)
	ListByRecords(ctx context.Context, recordIDs []string) (map[string][]domain.ProgressEntry, error)
}
