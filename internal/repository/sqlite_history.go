package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sitemaster/dpr/internal/db"
	"github.com/sitemaster/dpr/internal/domain"
)

// SQLiteHistoryRepo implements HistoryRepo using a SQLite database.
type SQLiteHistoryRepo struct {
	db db.DBTX
}

// NewSQLiteHistoryRepo creates a new SQLiteHistoryRepo.
func NewSQLiteHistoryRepo(conn db.DBTX) *SQLiteHistoryRepo {
	return &SQLiteHistoryRepo{db: conn}
}

func (r *SQLiteHistoryRepo) Append(ctx context.Context, recordID string, e domain.ProgressEntry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	query := `INSERT INTO status_history (id, record_id, todays_progress, status, remarks, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		recordID,
		e.Quantity,
		domain.NormalizeStatus(e.RawStatus).WireValue(),
		e.Remarks,
		at.UTC().Format(timeLayout),
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting status history entry: %w", err)
	}
	return nil
}

func (r *SQLiteHistoryRepo) ListByRecord(ctx context.Context, recordID string) ([]domain.ProgressEntry, error) {
	byRecord, err := r.ListByRecords(ctx, []string{recordID})
	if err != nil {
		return nil, err
	}
	return byRecord[recordID], nil
}

func (r *SQLiteHistoryRepo) ListByRecords(ctx context.Context, recordIDs []string) (map[string][]domain.ProgressEntry, error) {
	out := make(map[string][]domain.ProgressEntry, len(recordIDs))
	if len(recordIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(recordIDs))
	for i, id := range recordIDs {
		args[i] = id
	}
	query := `SELECT id, record_id, todays_progress, status, remarks, date
		FROM status_history WHERE record_id IN (` + placeholders(len(recordIDs)) + `)
		ORDER BY date, created_at, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing status history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e        domain.ProgressEntry
			recordID string
			date     string
		)
		if err := rows.Scan(&e.ID, &recordID, &e.Quantity, &e.RawStatus, &e.Remarks, &date); err != nil {
			return nil, fmt.Errorf("scanning status history row: %w", err)
		}
		if t, err := time.Parse(timeLayout, date); err == nil {
			e.At = t
		}
		out[recordID] = append(out[recordID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status history: %w", err)
	}
	return out, nil
}
