package formatter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sitemaster/dpr/internal/domain"
	"github.com/sitemaster/dpr/internal/reconcile"
	"github.com/sitemaster/dpr/internal/service"
	"github.com/sitemaster/dpr/internal/testutil"
)

var fmtNow = time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

func TestFormatRecordList(t *testing.T) {
	finish := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	rec := testutil.NewTestRecord("Level 3 slab casting",
		testutil.WithRecordID("dpr-101-abcdef"),
		testutil.WithPercent(60),
	)
	rec.PlannedFinish = &finish
	rec.CommentCount = 2

	out := stripANSI(FormatRecordList([]*service.RecordView{service.NewRecordView(rec, fmtNow)}))
	assert.Contains(t, out, "dpr-101-")
	assert.NotContains(t, out, "dpr-101-abcdef")
	assert.Contains(t, out, "Level 3 slab casting")
	assert.Contains(t, out, "PRJ-1")
	assert.Contains(t, out, "IN PROGRESS")
	assert.Contains(t, out, " 60%")
	assert.Contains(t, out, "-- → 20 Mar")
	assert.Contains(t, out, "💬 2")
}

func TestFormatRecordList_Empty(t *testing.T) {
	assert.Contains(t, stripANSI(FormatRecordList(nil)), "No work items match.")
}

func TestFormatProgress(t *testing.T) {
	total, pending := 100.0, -12.5
	out := stripANSI(FormatProgress(domain.AggregatedProgress{Completed: 112.5, Today: 10, Total: &total, Pending: &pending}))
	assert.Contains(t, out, "112.5")
	assert.Contains(t, out, "-12.5")

	out = stripANSI(FormatProgress(domain.AggregatedProgress{Completed: 5}))
	assert.Contains(t, out, "--")
}

func TestFormatFeed(t *testing.T) {
	created := fmtNow.Add(-3 * 24 * time.Hour)
	feed := reconcile.BuildFeed(
		&domain.Creation{At: created, ActorName: "Site Manager"},
		[]domain.ProgressEntry{{ID: "h1", At: fmtNow.Add(-2 * time.Hour), RawStatus: "in progress", Remarks: "Started"}},
	)
	feed = reconcile.AppendEvent(feed, reconcile.NewCommentEvent("c1", "You", "Logged 5 today", fmtNow))

	out := stripANSI(FormatFeed(feed, fmtNow))
	assert.Contains(t, out, "Site Manager created this task")
	assert.Contains(t, out, "3 days ago")
	assert.Contains(t, out, "IDLE → IN PROGRESS")
	assert.Contains(t, out, "2 hr ago")
	assert.Contains(t, out, "Started")
	assert.Contains(t, out, "You  Just now")
	assert.Contains(t, out, "Logged 5 today")
}

func TestFormatRecordDetail(t *testing.T) {
	rec := testutil.NewTestRecord("Waterproofing",
		testutil.WithPercent(50),
		testutil.WithCategory("Finishes"),
		testutil.WithHistory(testutil.NewTestEntry(20, fmtNow.Add(-time.Hour))),
	)
	out := stripANSI(FormatRecordDetail(service.NewRecordView(rec, fmtNow), fmtNow))
	assert.Contains(t, out, "Waterproofing")
	assert.Contains(t, out, "Finishes")
	assert.Contains(t, out, "COMPLETED")
	assert.Contains(t, out, "ACTIVITY")
	assert.Contains(t, out, " 50%")
}

func TestFormatSummary(t *testing.T) {
	out := stripANSI(FormatSummary(&service.StatusSummary{
		Counts: map[domain.Status]int{
			domain.StatusInProgress: 3,
			domain.StatusIdle:       1,
		},
		Total:   4,
		Derived: true,
	}))
	assert.Contains(t, out, "IN PROGRESS")
	assert.Contains(t, out, " 75%")
	assert.Contains(t, out, "Total: 4")
	assert.Contains(t, out, "Counted from listed records")
	assert.NotContains(t, out, "My tasks")
}

func TestFormatSummary_DueBuckets(t *testing.T) {
	out := stripANSI(FormatSummary(&service.StatusSummary{
		Due: map[domain.DueBucket]int{
			domain.DueToday:     3,
			domain.DueOverdue:   4,
			domain.DueUpcoming:  5,
			domain.DueCompleted: 2,
		},
		DueTotal: 14,
	}))
	assert.Contains(t, out, "Overdue")
	assert.Contains(t, out, "Upcoming")
	assert.Contains(t, out, "My tasks: 14")
	assert.Contains(t, out, "Status counts unavailable.")
	assert.NotContains(t, out, "Total:")
}

func TestFormatNotice(t *testing.T) {
	assert.Equal(t, "⚠ boom\n", stripANSI(FormatNotice(errors.New("boom"))))
}
