package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sitemaster/dpr/internal/db"
	"github.com/sitemaster/dpr/internal/domain"
)

const recordColumns = `id, project_id, project_code, project_name, activity_id, activity_name, category,
	percent_complete, work_completion_value, work_completion_unit, current_status, status_updated_at,
	planned_start, planned_finish, created_by, created_at, updated_at, comment_count, attachment_count`

// SQLiteRecordRepo implements RecordRepo using a SQLite database.
type SQLiteRecordRepo struct {
	db db.DBTX
}

// NewSQLiteRecordRepo creates a new SQLiteRecordRepo.
func NewSQLiteRecordRepo(conn db.DBTX) *SQLiteRecordRepo {
	return &SQLiteRecordRepo{db: conn}
}

func (r *SQLiteRecordRepo) Create(ctx context.Context, rec *StoredRecord) error {
	status := domain.NormalizeStatus(rec.RawStatus)
	createdAt := time.Now().UTC()
	if rec.CreatedAt != nil {
		createdAt = rec.CreatedAt.UTC()
	}
	updatedAt := createdAt
	if rec.UpdatedAt != nil {
		updatedAt = rec.UpdatedAt.UTC()
	}

	query := `INSERT INTO dpr_records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.ProjectID,
		rec.ProjectCode,
		rec.ProjectName,
		rec.ActivityID,
		rec.ActivityName,
		rec.Category,
		nullableFloat(rec.PercentComplete),
		nullableFloat(rec.WorkCompletionValue),
		rec.WorkCompletionUnit,
		status.WireValue(),
		nullableTimeToString(rec.StatusUpdatedAt),
		nullableTimeToString(rec.PlannedStart),
		nullableTimeToString(rec.PlannedFinish),
		rec.CreatedBy,
		createdAt.Format(timeLayout),
		updatedAt.Format(timeLayout),
		rec.CommentCount,
		rec.AttachmentCount,
	)
	if err != nil {
		return fmt.Errorf("inserting dpr record: %w", err)
	}
	return nil
}

func (r *SQLiteRecordRepo) GetByID(ctx context.Context, id string) (*StoredRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM dpr_records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dpr record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning dpr record: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRecordRepo) List(ctx context.Context, q RecordQuery) ([]*StoredRecord, int, error) {
	var (
		where []string
		args  []any
	)
	if q.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, q.ProjectID)
	}
	if q.Status != "" {
		where = append(where, "current_status = ?")
		args = append(args, q.Status.WireValue())
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		where = append(where, "(activity_name LIKE ? ESCAPE '\\' OR project_code LIKE ? ESCAPE '\\')")
		pattern := "%" + escapeLike(s) + "%"
		args = append(args, pattern, pattern)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dpr_records`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting dpr records: %w", err)
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	query := `SELECT ` + recordColumns + ` FROM dpr_records` + clause +
		` ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing dpr records: %w", err)
	}
	defer rows.Close()

	var out []*StoredRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning dpr record row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating dpr records: %w", err)
	}
	return out, total, nil
}

func (r *SQLiteRecordRepo) UpdateStatus(ctx context.Context, id string, status domain.Status, at time.Time) error {
	ts := at.UTC().Format(timeLayout)
	res, err := r.db.ExecContext(ctx,
		`UPDATE dpr_records SET current_status = ?, status_updated_at = ?, updated_at = ? WHERE id = ?`,
		status.WireValue(), ts, ts, id)
	if err != nil {
		return fmt.Errorf("updating dpr record status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("dpr record %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRecordRepo) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT current_status, COUNT(*) FROM dpr_records GROUP BY current_status`)
	if err != nil {
		return nil, fmt.Errorf("counting dpr records by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for _, s := range domain.AllStatuses() {
		counts[s] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		counts[domain.NormalizeStatus(status)] += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status counts: %w", err)
	}
	return counts, nil
}

func (r *SQLiteRecordRepo) All(ctx context.Context) ([]*StoredRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM dpr_records ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing all dpr records: %w", err)
	}
	defer rows.Close()

	var out []*StoredRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning dpr record row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dpr records: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*StoredRecord, error) {
	var (
		rec                                StoredRecord
		percent, wcValue                   sql.NullFloat64
		statusAt, plannedStart, plannedEnd sql.NullString
		createdAt, updatedAt               sql.NullString
	)
	err := row.Scan(
		&rec.ID, &rec.ProjectID, &rec.ProjectCode, &rec.ProjectName, &rec.ActivityID, &rec.ActivityName,
		&rec.Category, &percent, &wcValue, &rec.WorkCompletionUnit, &rec.RawStatus, &statusAt,
		&plannedStart, &plannedEnd, &rec.CreatedBy, &createdAt, &updatedAt,
		&rec.CommentCount, &rec.AttachmentCount,
	)
	if err != nil {
		return nil, err
	}
	rec.PercentComplete = floatPtr(percent)
	rec.WorkCompletionValue = floatPtr(wcValue)
	rec.StatusUpdatedAt = parseNullableTime(statusAt)
	rec.PlannedStart = parseNullableTime(plannedStart)
	rec.PlannedFinish = parseNullableTime(plannedEnd)
	rec.CreatedAt = parseNullableTime(createdAt)
	rec.UpdatedAt = parseNullableTime(updatedAt)
	return &rec, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
