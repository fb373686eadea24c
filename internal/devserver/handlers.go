package devserver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sitemaster/dpr/internal/db"
	"github.com/sitemaster/dpr/internal/domain"
	"github.com/sitemaster/dpr/internal/reconcile"
	"github.com/sitemaster/dpr/internal/repository"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 200
)

func (s *Server) listRecords(c *gin.Context) {
	q := repository.RecordQuery{
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", defaultPageLimit),
		Search:    c.Query("search"),
		ProjectID: c.Query("projectId"),
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	if cs := strings.TrimSpace(c.Query("cardStatus")); cs != "" && !strings.EqualFold(cs, "all") {
		q.Status = domain.NormalizeStatus(cs)
	}

	ctx := c.Request.Context()
	recs, total, err := s.records.List(ctx, q)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	history, err := s.history.ListByRecords(ctx, ids)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	out := make([]recordJSON, 0, len(recs))
	for _, r := range recs {
		out = append(out, toRecordJSON(r, history[r.ID]))
	}
	respondList(c, out, total, q.Page, q.Limit)
}

func (s *Server) getRecord(c *gin.Context) {
	out, err := s.loadRecord(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		respondNotFound(c, "record not found")
		return
	}
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondData(c, out)
}

// statusCounts reports per-status counts plus the today/overdue/upcoming
// buckets of the "my tasks" screen, in one flat map.
func (s *Server) statusCounts(c *gin.Context) {
	counts, err := s.records.CountByStatus(c.Request.Context())
	if err != nil {
		respondInternalError(c, err)
		return
	}
	out := make(map[string]int, len(counts)+1)
	total := 0
	for status, n := range counts {
		out[status.WireValue()] = n
		total += n
	}
	out["total"] = total

	all, err := s.records.All(c.Request.Context())
	if err != nil {
		respondInternalError(c, err)
		return
	}
	for _, b := range []domain.DueBucket{domain.DueToday, domain.DueOverdue, domain.DueUpcoming} {
		out[string(b)] = 0
	}
	now := s.now()
	for _, rec := range all {
		// completed is already reported under its status key.
		if b, ok := reconcile.DueBucketOf(&rec.Record, now); ok && b != domain.DueCompleted {
			out[string(b)]++
		}
	}
	respondData(c, out)
}

// updateStatus appends one history entry and moves the current status in a
// single transaction.
func (s *Server) updateStatus(c *gin.Context) {
	id := c.Param("id")
	var body updateStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, "invalid JSON body")
		return
	}

	status, err := domain.ParseSubmittableStatus(body.Status)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	progress := 0.0
	if body.TodaysProgress != nil {
		progress = *body.TodaysProgress
	}
	if math.IsNaN(progress) || math.IsInf(progress, 0) || progress < 0 {
		respondValidationError(c, "todays_progress must be a non-negative number")
		return
	}
	if progress > 0 && status != domain.StatusInProgress {
		respondValidationError(c, "todays_progress can only be logged with status in progress")
		return
	}
	at := s.now().UTC()
	if body.Date != "" {
		at, err = time.Parse(time.RFC3339, body.Date)
		if err != nil {
			respondValidationError(c, "date must be an ISO-8601 timestamp")
			return
		}
	}

	ctx := c.Request.Context()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		records := repository.NewSQLiteRecordRepo(tx)
		history := repository.NewSQLiteHistoryRepo(tx)

		rec, err := records.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := matchRefs(rec, body); err != nil {
			return err
		}
		entry := domain.ProgressEntry{
			ID:        uuid.New().String(),
			Quantity:  progress,
			At:        at,
			Remarks:   strings.TrimSpace(body.Remarks),
			RawStatus: status.WireValue(),
		}
		if err := history.Append(ctx, id, entry); err != nil {
			return err
		}
		return records.UpdateStatus(ctx, id, status, s.now())
	})
	var mismatch *refMismatchError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondNotFound(c, "record not found")
		return
	case errors.As(err, &mismatch):
		respondValidationError(c, mismatch.Error())
		return
	case err != nil:
		respondInternalError(c, err)
		return
	}

	out, err := s.loadRecord(ctx, id)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondData(c, out)
}

func (s *Server) loadRecord(ctx context.Context, id string) (recordJSON, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return recordJSON{}, err
	}
	history, err := s.history.ListByRecord(ctx, id)
	if err != nil {
		return recordJSON{}, err
	}
	return toRecordJSON(rec, history), nil
}

type refMismatchError struct {
	field, want, got string
}

func (e *refMismatchError) Error() string {
	return fmt.Sprintf("%s %q does not match record (%q)", e.field, e.got, e.want)
}

// matchRefs rejects a body whose projectId or activityId names a different
// record. Empty ids are not checked.
func matchRefs(rec *repository.StoredRecord, body updateStatusBody) error {
	if body.ProjectID != "" && body.ProjectID != rec.ProjectID {
		return &refMismatchError{field: "projectId", want: rec.ProjectID, got: body.ProjectID}
	}
	if body.ActivityID != "" && body.ActivityID != rec.ActivityID {
		return &refMismatchError{field: "activityId", want: rec.ActivityID, got: body.ActivityID}
	}
	return nil
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}
