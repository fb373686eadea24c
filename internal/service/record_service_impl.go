package service

import (
	"context"
	"errors"
	"time"

	"github.com/sitemaster/dpr/internal/api"
	"github.com/sitemaster/dpr/internal/domain"
	"github.com/sitemaster/dpr/internal/log"
	"github.com/sitemaster/dpr/internal/reconcile"
)

const (
	summaryPageLimit = 200
	summaryMaxPages  = 50
)

type recordService struct {
	source   api.DataSource
	clock    func() time.Time
	observer UseCaseObserver
}

// NewRecordService creates a RecordService reading from source. A nil clock
// means time.Now.
func NewRecordService(source api.DataSource, clock func() time.Time, observers ...UseCaseObserver) RecordService {
	if clock == nil {
		clock = time.Now
	}
	return &recordService{
		source:   source,
		clock:    clock,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *recordService) List(ctx context.Context, filter ListFilter) (views []*RecordView, err error) {
	fields := map[string]any{"page": filter.Page, "status": string(filter.Status)}
	defer observe(ctx, s.observer, "list-records", time.Now(), fields, &err)

	page, err := s.source.ListRecords(ctx, api.ListQuery{
		Page:      filter.Page,
		Limit:     filter.Limit,
		Search:    filter.Search,
		ProjectID: filter.ProjectID,
		Status:    filter.Status,
	})
	if err != nil {
		return nil, err
	}

	// The backend may ignore cardStatus, so filter again here.
	records := reconcile.FilterByStatus(page.Records, filter.Status)
	now := s.clock()
	views = make([]*RecordView, 0, len(records))
	for _, rec := range records {
		views = append(views, NewRecordView(rec, now))
	}
	fields["count"] = len(views)
	return views, nil
}

func (s *recordService) Get(ctx context.Context, id string) (view *RecordView, err error) {
	defer observe(ctx, s.observer, "get-record", time.Now(), map[string]any{"record_id": id}, &err)

	rec, err := s.source.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewRecordView(rec, s.clock()), nil
}

func (s *recordService) Summary(ctx context.Context) (summary *StatusSummary, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "status-summary", time.Now(), fields, &err)

	var (
		counts        map[domain.Status]int
		due           map[domain.DueBucket]int
		haveCounts    bool
		haveDue       bool
		countsDerived bool
		dueDerived    bool
	)
	raw, err := s.source.StatusCounts(ctx)
	switch {
	case err == nil:
		counts, haveCounts = reconcile.CountRawStatuses(raw)
		due, haveDue = reconcile.CountRawDueBuckets(raw)
	case ctx.Err() != nil:
		return nil, err
	default:
		log.Warn().Err(err).Msg("status counts unavailable, deriving from records")
	}

	if !haveCounts || !haveDue {
		records, listErr := s.listAll(ctx)
		switch {
		case listErr == nil:
			if !haveCounts {
				counts, countsDerived = reconcile.CountByStatus(records), true
			}
			if !haveDue {
				due, dueDerived = reconcile.CountDueBuckets(records, s.clock()), true
			}
		case !haveCounts && !haveDue:
			return nil, listErr
		default:
			log.Warn().Err(listErr).Msg("record listing unavailable, summary is partial")
			if !haveCounts {
				counts = nil
			}
			if !haveDue {
				due = nil
			}
		}
	}

	fields["derived"] = countsDerived
	fields["due_derived"] = dueDerived
	return newSummary(counts, countsDerived, due, dueDerived), nil
}

func (s *recordService) OpenEditor(ctx context.Context, id string, opts ...EditorOption) (*StatusEditor, error) {
	rec, err := s.source.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	opts = append([]EditorOption{WithClock(s.clock), WithEditorObserver(s.observer)}, opts...)
	return NewStatusEditor(s.source, rec, opts...), nil
}

// listAll pages through every record, stopping at the first short page.
func (s *recordService) listAll(ctx context.Context) ([]*domain.Record, error) {
	var all []*domain.Record
	for pageNo := 1; pageNo <= summaryMaxPages; pageNo++ {
		page, err := s.source.ListRecords(ctx, api.ListQuery{Page: pageNo, Limit: summaryPageLimit})
		if err != nil {
			if errors.Is(err, api.ErrNotFound) {
				break
			}
			return nil, err
		}
		all = append(all, page.Records...)
		if len(page.Records) < summaryPageLimit {
			break
		}
	}
	return all, nil
}

func newSummary(counts map[domain.Status]int, derived bool, due map[domain.DueBucket]int, dueDerived bool) *StatusSummary {
	summary := &StatusSummary{Counts: counts, Derived: derived, Due: due, DueDerived: dueDerived}
	for _, n := range counts {
		summary.Total += n
	}
	for _, n := range due {
		summary.DueTotal += n
	}
	return summary
}

// NewRecordView derives status, quantities, feed and display percent for rec
// as of now.
func NewRecordView(rec *domain.Record, now time.Time) *RecordView {
	return &RecordView{
		Record:   rec,
		Status:   rec.Status(),
		Progress: reconcile.Aggregate(rec.History, rec.PercentComplete, now),
		Feed:     reconcile.BuildFeed(rec.Creation(), rec.History),
		Percent:  reconcile.DisplayPercent(rec.PercentComplete),
	}
}
