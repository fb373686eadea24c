package reconcile

import (
	"testing"
	"time"

	"github.com/sitemaster/dpr/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCountByStatus(t *testing.T) {
	records := []*domain.Record{
		{RawStatus: "in-progress"},
		{RawStatus: "in progress"},
		{RawStatus: "ideal"},
		{},
		{RawStatus: "complete"},
	}
	counts := CountByStatus(records)
	assert.Equal(t, 2, counts[domain.StatusInProgress])
	assert.Equal(t, 2, counts[domain.StatusIdle])
	assert.Equal(t, 1, counts[domain.StatusCompleted])
	assert.Equal(t, 0, counts[domain.StatusPending])
	assert.Len(t, counts, len(domain.AllStatuses()))
}

func TestCountRawStatuses(t *testing.T) {
	counts, ok := CountRawStatuses(map[string]int{
		"in_progress":  3,
		"in progress":  1,
		"work stopped": 2,
		"total":        6,
	})
	assert.True(t, ok)
	assert.Equal(t, 4, counts[domain.StatusInProgress])
	assert.Equal(t, 2, counts[domain.StatusWorkStopped])
	assert.Equal(t, 0, counts[domain.StatusPending])
}

func TestCountRawStatuses_UnknownKeysSkipped(t *testing.T) {
	counts, ok := CountRawStatuses(map[string]int{"": 2, "paused": 9, "idle": 1})
	assert.True(t, ok)
	assert.Equal(t, 3, counts[domain.StatusIdle])
	assert.Equal(t, 0, counts[domain.StatusInProgress])
}

func TestStatusEndpointDueShape(t *testing.T) {
	raw := map[string]int{"today": 3, "overdue": 4, "upcoming": 5, "completed": 2}

	counts, ok := CountRawStatuses(raw)
	assert.False(t, ok, "only completed names a status")
	assert.Equal(t, 0, counts[domain.StatusInProgress])
	assert.Equal(t, 2, counts[domain.StatusCompleted])

	due, ok := CountRawDueBuckets(raw)
	assert.True(t, ok)
	assert.Equal(t, map[domain.DueBucket]int{
		domain.DueToday:     3,
		domain.DueOverdue:   4,
		domain.DueUpcoming:  5,
		domain.DueCompleted: 2,
	}, due)

	_, ok = CountRawDueBuckets(map[string]int{"idle": 1, "completed": 1})
	assert.False(t, ok)
}

func TestDueBucketOf(t *testing.T) {
	now := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	planned := func(raw string, start, finish time.Time) *domain.Record {
		return &domain.Record{RawStatus: raw, PlannedStart: &start, PlannedFinish: &finish}
	}

	cases := []struct {
		name   string
		rec    *domain.Record
		want   domain.DueBucket
		wantOK bool
	}{
		{"finished yesterday", planned("in progress", day(1), day(9)), domain.DueOverdue, true},
		{"window covers today", planned("idle", day(5), day(20)), domain.DueToday, true},
		{"finishes today", planned("idle", day(1), day(10)), domain.DueToday, true},
		{"starts tomorrow", planned("pending", day(11), day(20)), domain.DueUpcoming, true},
		{"completed wins", planned("completed", day(1), day(2)), domain.DueCompleted, true},
		{"no planned dates", &domain.Record{RawStatus: "idle"}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DueBucketOf(tc.rec, now)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	counts := CountDueBuckets([]*domain.Record{
		planned("idle", day(1), day(9)),
		planned("idle", day(1), day(9)),
		{RawStatus: "completed"},
		{RawStatus: "idle"},
	}, now)
	assert.Equal(t, 2, counts[domain.DueOverdue])
	assert.Equal(t, 1, counts[domain.DueCompleted])
	assert.Equal(t, 0, counts[domain.DueToday])
}

func TestFilterByStatus(t *testing.T) {
	records := []*domain.Record{
		{ID: "1", RawStatus: "pending"},
		{ID: "2", RawStatus: "idle"},
		{ID: "3", RawStatus: "Pending"},
	}
	assert.Len(t, FilterByStatus(records, ""), 3)
	got := FilterByStatus(records, domain.StatusPending)
	assert.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}
