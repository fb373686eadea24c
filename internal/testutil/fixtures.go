package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/sitemaster/dpr/internal/domain"
)

// Record options
type RecordOption func(*domain.Record)

func WithRecordID(id string) RecordOption {
	return func(r *domain.Record) {
		r.ID = id
	}
}

func WithPercent(p float64) RecordOption {
	return func(r *domain.Record) {
		r.PercentComplete = &p
	}
}

func WithRawStatus(s string) RecordOption {
	return func(r *domain.Record) {
		r.RawStatus = s
	}
}

func WithProject(id, code, name string) RecordOption {
	return func(r *domain.Record) {
		r.ProjectID = id
		r.ProjectCode = code
		r.ProjectName = name
	}
}

func WithCategory(c string) RecordOption {
	return func(r *domain.Record) {
		r.Category = c
	}
}

func WithCreation(at time.Time, by string) RecordOption {
	return func(r *domain.Record) {
		r.CreatedAt = &at
		r.CreatedBy = by
	}
}

func WithoutCreation() RecordOption {
	return func(r *domain.Record) {
		r.CreatedAt = nil
		r.CreatedBy = ""
	}
}

func WithHistory(entries ...domain.ProgressEntry) RecordOption {
	return func(r *domain.Record) {
		r.History = append(r.History, entries...)
	}
}

func WithPlanned(start, finish time.Time) RecordOption {
	return func(r *domain.Record) {
		r.PlannedStart = &start
		r.PlannedFinish = &finish
	}
}

// NewTestRecord builds an in-progress record with no percent and no history.
func NewTestRecord(activity string, opts ...RecordOption) *domain.Record {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	r := &domain.Record{
		ID:           uuid.New().String(),
		ProjectID:    "proj-1",
		ProjectCode:  "PRJ-1",
		ProjectName:  "Test Project",
		ActivityID:   uuid.New().String(),
		ActivityName: activity,
		RawStatus:    "in progress",
		CreatedAt:    &created,
		CreatedBy:    "Site Manager",
		UpdatedAt:    &created,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Progress entry options
type EntryOption func(*domain.ProgressEntry)

func WithEntryStatus(s string) EntryOption {
	return func(e *domain.ProgressEntry) {
		e.RawStatus = s
	}
}

func WithRemarks(r string) EntryOption {
	return func(e *domain.ProgressEntry) {
		e.Remarks = r
	}
}

func WithEntryID(id string) EntryOption {
	return func(e *domain.ProgressEntry) {
		e.ID = id
	}
}

// NewTestEntry builds an in-progress history entry.
func NewTestEntry(quantity float64, at time.Time, opts ...EntryOption) domain.ProgressEntry {
	e := domain.ProgressEntry{
		ID:        uuid.New().String(),
		Quantity:  quantity,
		At:        at,
		RawStatus: "in progress",
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
