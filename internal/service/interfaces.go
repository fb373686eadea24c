package service

import (
	"context"

	"github.com/sitemaster/dpr/internal/domain"
)

// RecordService is the read side of the DPR screens.
type RecordService interface {
	List(ctx context.Context, filter ListFilter) ([]*RecordView, error)
	Get(ctx context.Context, id string) (*RecordView, error)
	Summary(ctx context.Context) (*StatusSummary, error)

	// OpenEditor fetches the record and returns a status editor bound to it.
	OpenEditor(ctx context.Context, id string, opts ...EditorOption) (*StatusEditor, error)
}

// StatusUpdater sends one status change to the backend.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, recordID string, update domain.StatusUpdate) error
}

// ListFilter narrows a record listing.
type ListFilter struct {
	Page      int
	Limit     int
	Search    string
	ProjectID string
	// Status keeps only records in this canonical status. Empty keeps all.
	Status domain.Status
}

// RecordView is a record with everything the screens derive from it.
type RecordView struct {
	Record   *domain.Record
	Status   domain.Status
	Progress domain.AggregatedProgress
	Feed     []domain.ActivityEvent
	// Percent is the backend percent rounded and clamped to 0..100.
	Percent int
}

// StatusSummary counts records per canonical status and per due bucket.
type StatusSummary struct {
	// Counts is nil when neither the backend nor the record listing could
	// provide per-status counts.
	Counts map[domain.Status]int
	Total  int
	// Derived is true when the counts were computed from listed records
	// because the backend's status endpoint did not provide them.
	Derived bool

	// Due holds the today/overdue/upcoming/completed buckets. DueTotal is
	// their sum, the "my tasks" figure.
	Due        map[domain.DueBucket]int
	DueTotal   int
	DueDerived bool
}
