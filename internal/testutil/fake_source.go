package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sitemaster/dpr/internal/api"
	"github.com/sitemaster/dpr/internal/domain"
)

// FakeSource is an in-memory api.DataSource. Set the *Err fields to inject
// failures. UpdateStatus calls are recorded and, unless UpdateErr is set,
// applied to the stored record.
type FakeSource struct {
	mu      sync.Mutex
	records []*domain.Record

	ListErr   error
	GetErr    error
	UpdateErr error
	CountsErr error

	// Counts is returned by StatusCounts. Nil means count the stored records.
	Counts map[string]int

	// Block, when non-nil, holds UpdateStatus until it is closed.
	Block chan struct{}

	Updates []FakeUpdate
}

// FakeUpdate is one recorded UpdateStatus call.
type FakeUpdate struct {
	RecordID string
	Update   domain.StatusUpdate
}

var _ api.DataSource = (*FakeSource)(nil)

// NewFakeSource creates a FakeSource holding records.
func NewFakeSource(records ...*domain.Record) *FakeSource {
	return &FakeSource{records: records}
}

func (f *FakeSource) ListRecords(ctx context.Context, q api.ListQuery) (*api.RecordPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var matched []*domain.Record
	for _, r := range f.records {
		if q.ProjectID != "" && r.ProjectID != q.ProjectID {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(r.ActivityName), strings.ToLower(q.Search)) {
			continue
		}
		if q.Status != "" && r.Status() != q.Status {
			continue
		}
		matched = append(matched, r)
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	start := min((page-1)*limit, len(matched))
	end := min(start+limit, len(matched))
	return &api.RecordPage{Records: matched[start:end], Total: len(matched), Page: page, Limit: limit}, nil
}

func (f *FakeSource) GetRecord(ctx context.Context, id string) (*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.GetErr != nil {
		return nil, f.GetErr
	}
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("record %s: %w", id, api.ErrNotFound)
}

func (f *FakeSource) UpdateStatus(ctx context.Context, recordID string, update domain.StatusUpdate) error {
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Updates = append(f.Updates, FakeUpdate{RecordID: recordID, Update: update})
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	for _, r := range f.records {
		if r.ID == recordID {
			r.RawStatus = update.Status.WireValue()
			r.History = append(r.History, domain.ProgressEntry{
				ID:        fmt.Sprintf("fake-%d", len(f.Updates)),
				Quantity:  update.TodaysProgress,
				At:        update.Date,
				Remarks:   update.Remarks,
				RawStatus: update.Status.WireValue(),
			})
			return nil
		}
	}
	return fmt.Errorf("record %s: %w", recordID, api.ErrNotFound)
}

func (f *FakeSource) StatusCounts(ctx context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CountsErr != nil {
		return nil, f.CountsErr
	}
	if f.Counts != nil {
		return f.Counts, nil
	}
	counts := make(map[string]int)
	for _, r := range f.records {
		counts[r.RawStatus]++
	}
	return counts, nil
}

// UpdateCount returns the number of UpdateStatus calls seen so far.
func (f *FakeSource) UpdateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Updates)
}
