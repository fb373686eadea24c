package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitemaster/dpr/internal/domain"
	"github.com/sitemaster/dpr/internal/reconcile"
	"github.com/sitemaster/dpr/internal/testutil"
)

var editorNow = time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("local-%d", n)
	}
}

func newTestEditor(t *testing.T, rec *domain.Record, opts ...EditorOption) (*StatusEditor, *testutil.FakeSource) {
	t.Helper()
	src := testutil.NewFakeSource(rec)
	opts = append([]EditorOption{WithClock(testutil.FixedClock(editorNow)), WithIDGenerator(sequentialIDs())}, opts...)
	return NewStatusEditor(src, rec, opts...), src
}

// scenarioRecord is 60% complete with 30 logged on New Year's Day and 30 today.
func scenarioRecord() *domain.Record {
	return testutil.NewTestRecord("Column casting",
		testutil.WithRecordID("rec-1"),
		testutil.WithProject("proj-9", "PRJ-9", "Tower B"),
		testutil.WithPercent(60),
		testutil.WithRawStatus("in-progress"),
		testutil.WithHistory(
			testutil.NewTestEntry(30, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			testutil.NewTestEntry(30, editorNow.Add(-2*time.Hour)),
		),
	)
}

func TestStatusEditor_ScenarioCapsProposedQuantity(t *testing.T) {
	rec := scenarioRecord()
	ed, src := newTestEditor(t, rec)

	assert.Equal(t, domain.StatusInProgress, ed.Current())
	p := ed.Progress()
	assert.InDelta(t, 60, p.Completed, 1e-9)
	assert.InDelta(t, 30, p.Today, 1e-9)
	require.True(t, p.HasTotal())
	assert.InDelta(t, 100, *p.Total, 1e-9)
	assert.InDelta(t, 40, *p.Pending, 1e-9)

	require.NoError(t, ed.Open())
	shown, err := ed.SetQuantityInput("50")
	require.NoError(t, err)
	assert.Equal(t, "40", shown)

	require.NoError(t, ed.Commit(context.Background()))

	require.Len(t, src.Updates, 1)
	got := src.Updates[0]
	assert.Equal(t, "rec-1", got.RecordID)
	assert.Equal(t, 40.0, got.Update.TodaysProgress)
	assert.Equal(t, domain.StatusInProgress, got.Update.Status)
	assert.Equal(t, "proj-9", got.Update.ProjectID)
	assert.Equal(t, rec.ActivityID, got.Update.ActivityID)
	assert.Equal(t, editorNow, got.Update.Date)
	assert.Equal(t, EditorIdle, ed.State())
}

func TestStatusEditor_SubmitTimeCapCatchesUncappedDraft(t *testing.T) {
	ed, src := newTestEditor(t, scenarioRecord())
	require.NoError(t, ed.Open())

	// Bypass live capping.
	ed.draft.RawQuantity = "500"

	require.NoError(t, ed.Commit(context.Background()))
	require.Len(t, src.Updates, 1)
	assert.Equal(t, 40.0, src.Updates[0].Update.TodaysProgress)
}

func TestStatusEditor_StatusChangeForcesZeroQuantity(t *testing.T) {
	ed, src := newTestEditor(t, scenarioRecord())
	require.NoError(t, ed.Open())
	require.NoError(t, ed.SetStatus(domain.StatusWorkStopped))
	_, err := ed.SetQuantityInput("12")
	require.NoError(t, err)
	require.NoError(t, ed.SetNote("  rain delay  "))

	require.NoError(t, ed.Commit(context.Background()))

	require.Len(t, src.Updates, 1)
	u := src.Updates[0].Update
	assert.Equal(t, 0.0, u.TodaysProgress)
	assert.Equal(t, "rain delay", u.Remarks)
	assert.Equal(t, domain.StatusWorkStopped, u.Status)

	assert.Equal(t, domain.StatusWorkStopped, ed.Current())
	feed := ed.Feed()
	last := feed[len(feed)-1]
	assert.Equal(t, domain.ActivityStatusChange, last.Kind)
	assert.Equal(t, domain.StatusInProgress, last.From)
	assert.Equal(t, domain.StatusWorkStopped, last.To)
	assert.Equal(t, "rain delay", last.Message)
	assert.Equal(t, "Just now", last.Label)
	assert.Equal(t, "local-1", last.ID)
}

func TestStatusEditor_NoteOnlyAppendsComment(t *testing.T) {
	ed, src := newTestEditor(t, scenarioRecord(), WithAuthor("Asha"))
	before := len(ed.Feed())

	require.NoError(t, ed.Open())
	require.NoError(t, ed.SetNote("shuttering checked"))
	require.NoError(t, ed.Commit(context.Background()))

	feed := ed.Feed()
	require.Len(t, feed, before+1)
	last := feed[len(feed)-1]
	assert.Equal(t, domain.ActivityComment, last.Kind)
	assert.Equal(t, "Asha", last.Author)
	assert.Equal(t, "shuttering checked", last.Message)
	assert.Equal(t, domain.StatusInProgress, ed.Current())
	require.Len(t, src.Updates, 1)
	assert.Equal(t, domain.StatusInProgress, src.Updates[0].Update.Status)
}

func TestStatusEditor_QuantityOnlyCommentMessage(t *testing.T) {
	ed, _ := newTestEditor(t, scenarioRecord())
	require.NoError(t, ed.Open())
	_, err := ed.SetQuantityInput("12.5")
	require.NoError(t, err)
	require.NoError(t, ed.Commit(context.Background()))

	feed := ed.Feed()
	assert.Equal(t, "Logged 12.5 today", feed[len(feed)-1].Message)
	assert.Equal(t, "You", feed[len(feed)-1].Author)
}

func TestStatusEditor_NoChanges(t *testing.T) {
	ed, src := newTestEditor(t, scenarioRecord())
	require.NoError(t, ed.Open())
	require.NoError(t, ed.SetNote("   "))

	err := ed.Commit(context.Background())
	assert.ErrorIs(t, err, ErrNoChanges)
	assert.Empty(t, src.Updates)
	assert.Equal(t, EditorEditing, ed.State())
}

func TestStatusEditor_QuantityIgnoredForNonInProgressIsNoChange(t *testing.T) {
	rec := testutil.NewTestRecord("Brickwork", testutil.WithRawStatus("idle"))
	ed, src := newTestEditor(t, rec)
	require.NoError(t, ed.Open())
	_, err := ed.SetQuantityInput("5")
	require.NoError(t, err)

	assert.ErrorIs(t, ed.Commit(context.Background()), ErrNoChanges)
	assert.Empty(t, src.Updates)
}

func TestStatusEditor_MalformedQuantityReadsAsEmpty(t *testing.T) {
	ed, _ := newTestEditor(t, scenarioRecord())
	require.NoError(t, ed.Open())

	shown, err := ed.SetQuantityInput("12abc")
	require.NoError(t, err)
	assert.Equal(t, "", shown)
	assert.Equal(t, "", ed.Draft().RawQuantity)
}

func TestStatusEditor_ReentrantSubmitRejected(t *testing.T) {
	ed, src := newTestEditor(t, scenarioRecord())
	require.NoError(t, ed.Open())
	require.NoError(t, ed.SetStatus(domain.StatusIdle))

	sub, err := ed.Prepare()
	require.NoError(t, err)
	assert.Equal(t, EditorSubmitting, ed.State())

	_, err = ed.Prepare()
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.ErrorIs(t, ed.Open(), ErrSubmissionInFlight)
	assert.ErrorIs(t, ed.SetNote("x"), ErrSubmissionInFlight)

	require.NoError(t, ed.Complete(src.UpdateStatus(context.Background(), sub.RecordID, sub.Update)))
	assert.Equal(t, EditorIdle, ed.State())
}

func TestStatusEditor_ConcurrentCommitWhileInFlight(t *testing.T) {
	ed, src := newTestEditor(t, scenarioRecord())
	src.Block = make(chan struct{})
	require.NoError(t, ed.Open())
	require.NoError(t, ed.SetStatus(domain.StatusIdle))

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = ed.Commit(context.Background())
	}()

	require.Eventually(t, func() bool { return ed.State() == EditorSubmitting }, time.Second, time.Millisecond)
	assert.ErrorIs(t, ed.Commit(context.Background()), ErrSubmissionInFlight)

	close(src.Block)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, 1, src.UpdateCount())
}

func TestStatusEditor_FailureKeepsOptimisticState(t *testing.T) {
	ed, src := newTestEditor(t, scenarioRecord())
	boom := errors.New("connection reset")
	src.UpdateErr = boom

	require.NoError(t, ed.Open())
	require.NoError(t, ed.SetStatus(domain.StatusIdle))
	err := ed.Commit(context.Background())

	var notice *SubmitError
	require.ErrorAs(t, err, &notice)
	assert.ErrorIs(t, err, boom)
	assert.False(t, notice.RolledBack)
	assert.Equal(t, notice, ed.Notice())

	assert.Equal(t, EditorIdle, ed.State())
	assert.Equal(t, domain.StatusIdle, ed.Current())
	feed := ed.Feed()
	assert.Equal(t, domain.StatusIdle, feed[len(feed)-1].To)
}

func TestStatusEditor_RollbackOnFailure(t *testing.T) {
	ed, src := newTestEditor(t, scenarioRecord(), WithRollbackOnFailure())
	src.UpdateErr = errors.New("502")
	before := ed.Feed()

	require.NoError(t, ed.Open())
	require.NoError(t, ed.SetStatus(domain.StatusIdle))
	err := ed.Commit(context.Background())

	var notice *SubmitError
	require.ErrorAs(t, err, &notice)
	assert.True(t, notice.RolledBack)
	assert.Equal(t, domain.StatusInProgress, ed.Current())
	assert.Equal(t, before, ed.Feed())
}

func TestStatusEditor_ResultAfterCloseIsDiscarded(t *testing.T) {
	ed, _ := newTestEditor(t, scenarioRecord())
	require.NoError(t, ed.Open())
	require.NoError(t, ed.SetStatus(domain.StatusIdle))
	_, err := ed.Prepare()
	require.NoError(t, err)

	ed.Close()
	assert.NoError(t, ed.Complete(errors.New("late failure")))
	assert.Nil(t, ed.Notice())
	assert.ErrorIs(t, ed.Open(), ErrNotEditing)
}

func TestStatusEditor_DraftOpsRequireOpen(t *testing.T) {
	ed, _ := newTestEditor(t, scenarioRecord())

	assert.ErrorIs(t, ed.SetStatus(domain.StatusIdle), ErrNotEditing)
	assert.ErrorIs(t, ed.SetNote("x"), ErrNotEditing)
	_, err := ed.SetQuantityInput("1")
	assert.ErrorIs(t, err, ErrNotEditing)
	_, err = ed.Prepare()
	assert.ErrorIs(t, err, ErrNotEditing)
}

func TestStatusEditor_RejectsDerivedStatuses(t *testing.T) {
	ed, _ := newTestEditor(t, scenarioRecord())
	require.NoError(t, ed.Open())

	assert.ErrorIs(t, ed.SetStatus(domain.StatusCompleted), domain.ErrStatusNotSubmittable)
	assert.ErrorIs(t, ed.SetStatus(domain.StatusPending), domain.ErrStatusNotSubmittable)
	assert.Equal(t, domain.StatusInProgress, ed.Draft().NextStatus)
}

func TestStatusEditor_CompletedRecordNeedsExplicitStatus(t *testing.T) {
	rec := testutil.NewTestRecord("Handover", testutil.WithRawStatus("completed"))
	ed, src := newTestEditor(t, rec)
	require.NoError(t, ed.Open())
	require.NoError(t, ed.SetNote("snag list closed"))

	_, err := ed.Prepare()
	assert.ErrorIs(t, err, domain.ErrStatusNotSubmittable)
	assert.Empty(t, src.Updates)
	assert.Equal(t, EditorEditing, ed.State())
}

func TestStatusEditor_CancelDiscardsDraft(t *testing.T) {
	ed, _ := newTestEditor(t, scenarioRecord())
	require.NoError(t, ed.Open())
	require.NoError(t, ed.SetNote("draft"))

	ed.Cancel()
	assert.Equal(t, EditorIdle, ed.State())
	assert.Equal(t, domain.StatusChangeSubmission{}, ed.Draft())

	require.NoError(t, ed.Open())
	assert.Equal(t, "", ed.Draft().Note)
	assert.Equal(t, domain.StatusInProgress, ed.Draft().NextStatus)
}

func TestStatusEditor_PlaceholderReplacedByFirstEvent(t *testing.T) {
	rec := testutil.NewTestRecord("Excavation", testutil.WithoutCreation())
	ed, _ := newTestEditor(t, rec)

	feed := ed.Feed()
	require.Len(t, feed, 1)
	assert.Equal(t, reconcile.PlaceholderEventID, feed[0].ID)

	require.NoError(t, ed.Open())
	require.NoError(t, ed.SetNote("started digging"))
	require.NoError(t, ed.Commit(context.Background()))

	feed = ed.Feed()
	require.Len(t, feed, 1)
	assert.Equal(t, domain.ActivityComment, feed[0].Kind)
}

type recordingUseCaseObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingUseCaseObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func TestStatusEditor_CommitObserved(t *testing.T) {
	obs := &recordingUseCaseObserver{}
	ed, _ := newTestEditor(t, scenarioRecord(), WithEditorObserver(obs))
	require.NoError(t, ed.Open())
	require.NoError(t, ed.SetStatus(domain.StatusIdle))
	require.NoError(t, ed.Commit(context.Background()))

	require.Len(t, obs.events, 1)
	e := obs.events[0]
	assert.Equal(t, "submit-status", e.Name)
	assert.True(t, e.Success)
	assert.Equal(t, "rec-1", e.Fields["record_id"])
	assert.Equal(t, true, e.Fields["status_changed"])
}

func TestStatusEditor_SendFromAnotherGoroutine(t *testing.T) {
	ed, src := newTestEditor(t, scenarioRecord())
	require.NoError(t, ed.Open())
	_, err := ed.SetQuantityInput("7")
	require.NoError(t, err)

	sub, err := ed.Prepare()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- ed.Send(context.Background(), sub) }()
	require.NoError(t, <-done)

	assert.Equal(t, EditorIdle, ed.State())
	require.Equal(t, 1, src.UpdateCount())
	assert.InDelta(t, 7, src.Updates[0].Update.TodaysProgress, 1e-9)
}

func TestStatusEditor_LaterSubmitsCapAgainstRemainingPending(t *testing.T) {
	ed, src := newTestEditor(t, scenarioRecord())

	for i := 0; i < 2; i++ {
		require.NoError(t, ed.Open())
		_, err := ed.SetQuantityInput("40")
		require.NoError(t, err)
		err = ed.Commit(context.Background())
		if i == 1 {
			assert.ErrorIs(t, err, ErrNoChanges, "nothing is left to log")
			ed.Cancel()
			continue
		}
		require.NoError(t, err)
	}

	require.Equal(t, 1, src.UpdateCount())
	assert.InDelta(t, 40, src.Updates[0].Update.TodaysProgress, 1e-9)
	p := ed.Progress()
	assert.InDelta(t, 100, p.Completed, 1e-9)
	assert.InDelta(t, 70, p.Today, 1e-9)
	assert.InDelta(t, 0, *p.Pending, 1e-9)
}

func TestStatusEditor_PartialQuantityLeavesRemainder(t *testing.T) {
	ed, src := newTestEditor(t, scenarioRecord())

	require.NoError(t, ed.Open())
	_, err := ed.SetQuantityInput("25")
	require.NoError(t, err)
	require.NoError(t, ed.Commit(context.Background()))

	require.NoError(t, ed.Open())
	shown, err := ed.SetQuantityInput("25")
	require.NoError(t, err)
	assert.Equal(t, "15", shown)
	require.NoError(t, ed.Commit(context.Background()))

	require.Equal(t, 2, src.UpdateCount())
	assert.InDelta(t, 15, src.Updates[1].Update.TodaysProgress, 1e-9)
}

func TestStatusEditor_RollbackRestoresProgress(t *testing.T) {
	ed, src := newTestEditor(t, scenarioRecord(), WithRollbackOnFailure())
	src.UpdateErr = errors.New("503")
	before := ed.Progress()

	require.NoError(t, ed.Open())
	_, err := ed.SetQuantityInput("10")
	require.NoError(t, err)
	require.Error(t, ed.Commit(context.Background()))

	assert.Equal(t, before, ed.Progress())
}

func TestStatusEditor_StaleSubmissionIsNotResent(t *testing.T) {
	ed, src := newTestEditor(t, scenarioRecord())
	require.NoError(t, ed.Open())
	require.NoError(t, ed.SetStatus(domain.StatusIdle))

	sub, err := ed.Prepare()
	require.NoError(t, err)
	require.NoError(t, ed.Send(context.Background(), sub))

	assert.ErrorIs(t, ed.Send(context.Background(), sub), ErrStaleSubmission)
	assert.ErrorIs(t, ed.Send(context.Background(), nil), ErrStaleSubmission)
	assert.ErrorIs(t, ed.Send(context.Background(), &Submission{RecordID: "rec-1"}), ErrStaleSubmission)
	assert.Equal(t, 1, src.UpdateCount())
}
