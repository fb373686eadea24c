package reconcile

import (
	"testing"
	"time"

	"github.com/sitemaster/dpr/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFeed_EmptyReturnsPlaceholder(t *testing.T) {
	feed := BuildFeed(nil, nil)
	require.Len(t, feed, 1)
	assert.Equal(t, PlaceholderEventID, feed[0].ID)
	assert.Equal(t, domain.ActivitySystem, feed[0].Kind)
	assert.NotEmpty(t, feed[0].Message)
}

func TestBuildFeed_CreationNeedsTimestampAndActor(t *testing.T) {
	created := time.Date(2025, 6, 12, 20, 20, 0, 0, time.UTC)

	feed := BuildFeed(&domain.Creation{At: created, ActorName: "Devashish"}, nil)
	require.Len(t, feed, 1)
	assert.Equal(t, "created", feed[0].ID)
	assert.Equal(t, domain.ActivitySystem, feed[0].Kind)
	assert.Equal(t, "Devashish created this task", feed[0].Message)
	assert.Equal(t, "Thursday, 8:20 PM", feed[0].Label)

	feed = BuildFeed(&domain.Creation{ActorName: "Devashish"}, nil)
	require.Len(t, feed, 1)
	assert.Equal(t, PlaceholderEventID, feed[0].ID, "partial creation must not produce an event")

	feed = BuildFeed(&domain.Creation{At: created}, nil)
	require.Len(t, feed, 1)
	assert.Equal(t, PlaceholderEventID, feed[0].ID)
}

func TestBuildFeed_SortsHistoryAndCarriesStatusForward(t *testing.T) {
	t1 := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	t3 := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)
	history := []domain.ProgressEntry{
		{ID: "c", At: t3, RawStatus: "idle", Remarks: "rain"},
		{ID: "a", At: t1, RawStatus: "in-progress"},
		{ID: "b", At: t2, RawStatus: "work_stopped"},
	}

	feed := BuildFeed(nil, history)
	require.Len(t, feed, 3)

	assert.Equal(t, []string{"a", "b", "c"}, []string{feed[0].ID, feed[1].ID, feed[2].ID})
	assert.Equal(t, domain.StatusIdle, feed[0].From)
	assert.Equal(t, domain.StatusInProgress, feed[0].To)
	assert.Equal(t, domain.StatusInProgress, feed[1].From)
	assert.Equal(t, domain.StatusWorkStopped, feed[1].To)
	assert.Equal(t, domain.StatusWorkStopped, feed[2].From)
	assert.Equal(t, domain.StatusIdle, feed[2].To)

	assert.Equal(t, "Status changed", feed[0].Message)
	assert.Equal(t, "rain", feed[2].Message)
	for _, ev := range feed {
		assert.Equal(t, domain.ActivityStatusChange, ev.Kind)
	}

	// Input order is left untouched.
	assert.Equal(t, "c", history[0].ID)
}

func TestBuildFeed_UnparseableTimestampSortsFirst(t *testing.T) {
	history := []domain.ProgressEntry{
		{ID: "dated", At: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), RawStatus: "idle"},
		{ID: "undated", RawStatus: "in progress"},
	}
	feed := BuildFeed(nil, history)
	require.Len(t, feed, 2)
	assert.Equal(t, "undated", feed[0].ID)
	assert.Equal(t, "-", feed[0].Label)
	assert.Equal(t, "dated", feed[1].ID)
}

func TestBuildFeed_CreationThenHistory(t *testing.T) {
	created := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)
	history := []domain.ProgressEntry{{At: created.Add(time.Hour), RawStatus: "in progress"}}
	feed := BuildFeed(&domain.Creation{At: created, ActorName: "Asha"}, history)
	require.Len(t, feed, 2)
	assert.Equal(t, domain.ActivitySystem, feed[0].Kind)
	assert.Equal(t, "history-0", feed[1].ID)
}

func TestAppendEvent_KeepsOrderAndDropsPlaceholder(t *testing.T) {
	at := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	feed := BuildFeed(nil, nil)

	feed = AppendEvent(feed, NewCommentEvent("c1", "You", "first", at))
	require.Len(t, feed, 1)
	assert.Equal(t, "c1", feed[0].ID)
	assert.Equal(t, "Just now", feed[0].Label)

	earlier := at.Add(-time.Hour)
	feed = AppendEvent(feed, NewStatusChangeEvent("s1", domain.StatusIdle, domain.StatusInProgress, "", earlier))
	require.Len(t, feed, 2)
	assert.Equal(t, "s1", feed[1].ID, "interactive events are not re-sorted")
	assert.Equal(t, "Status changed", feed[1].Message)
}

func TestAppendEvent_DoesNotMutateInput(t *testing.T) {
	feed := BuildFeed(&domain.Creation{At: today, ActorName: "Asha"}, nil)
	out := AppendEvent(feed, NewCommentEvent("c1", "You", "hi", today))
	assert.Len(t, feed, 1)
	assert.Len(t, out, 2)
}
