package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sitemaster/dpr/internal/domain"
	"github.com/sitemaster/dpr/internal/reconcile"
)

var (
	// ErrSubmissionInFlight is returned when a submit is attempted while a
	// previous one has not completed.
	ErrSubmissionInFlight = errors.New("a status update is already being submitted")

	// ErrNoChanges is returned when the draft would not change anything.
	ErrNoChanges = errors.New("nothing to submit")

	// ErrNotEditing is returned by draft operations outside an editing session.
	ErrNotEditing = errors.New("status editor is not open")

	// ErrStaleSubmission is returned by Send for a submission that is not the
	// one currently in flight, or that was already sent.
	ErrStaleSubmission = errors.New("submission is not pending")
)

// EditorState is the phase of a status editor session.
type EditorState int

const (
	EditorIdle EditorState = iota
	EditorEditing
	EditorSubmitting
)

func (s EditorState) String() string {
	switch s {
	case EditorEditing:
		return "editing"
	case EditorSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

// SubmitError is the notice left behind by a failed submission.
type SubmitError struct {
	Err error
	// RolledBack is true when the optimistic status and feed entry were undone.
	RolledBack bool
}

func (e *SubmitError) Error() string {
	if e.RolledBack {
		return fmt.Sprintf("status update not saved, changes reverted: %v", e.Err)
	}
	return fmt.Sprintf("status update not saved: %v", e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Submission is a prepared status change, ready to send.
type Submission struct {
	RecordID string
	Update   domain.StatusUpdate
	// StatusChanged is false for note or quantity only updates, which show up
	// in the feed as comments.
	StatusChanged bool
}

// EditorOption configures a StatusEditor.
type EditorOption func(*StatusEditor)

// WithClock sets the time source used for submissions and local events.
func WithClock(clock func() time.Time) EditorOption {
	return func(e *StatusEditor) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithIDGenerator sets the generator for local activity event IDs.
func WithIDGenerator(newID func() string) EditorOption {
	return func(e *StatusEditor) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// WithAuthor sets the author shown on locally posted comments.
func WithAuthor(author string) EditorOption {
	return func(e *StatusEditor) {
		if author != "" {
			e.author = author
		}
	}
}

// WithRollbackOnFailure restores the pre-submit status and feed when the
// backend rejects or fails a submission. Without it the optimistic state is
// kept and only a notice is left.
func WithRollbackOnFailure() EditorOption {
	return func(e *StatusEditor) { e.rollback = true }
}

// WithEditorObserver reports each Commit as a use case.
func WithEditorObserver(obs UseCaseObserver) EditorOption {
	return func(e *StatusEditor) {
		if obs != nil {
			e.observer = obs
		}
	}
}

type editorSnapshot struct {
	current  domain.Status
	feed     []domain.ActivityEvent
	progress domain.AggregatedProgress
}

// StatusEditor owns the draft state of one status editor session for one
// record. It is safe for use from a UI goroutine and a submitting goroutine
// at the same time.
type StatusEditor struct {
	updater  StatusUpdater
	clock    func() time.Time
	newID    func() string
	author   string
	rollback bool
	observer UseCaseObserver

	mu       sync.Mutex
	record   *domain.Record
	progress domain.AggregatedProgress
	current  domain.Status
	feed     []domain.ActivityEvent
	state    EditorState
	draft    domain.StatusChangeSubmission
	snapshot *editorSnapshot
	inflight *Submission
	sent     bool
	notice   error
	closed   bool
}

// NewStatusEditor creates an idle editor for rec.
func NewStatusEditor(updater StatusUpdater, rec *domain.Record, opts ...EditorOption) *StatusEditor {
	e := &StatusEditor{
		updater:  updater,
		clock:    time.Now,
		newID:    func() string { return uuid.New().String() },
		author:   "You",
		observer: NoopUseCaseObserver{},
		record:   rec,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.current = rec.Status()
	e.progress = reconcile.Aggregate(rec.History, rec.PercentComplete, e.clock())
	e.feed = reconcile.BuildFeed(rec.Creation(), rec.History)
	return e
}

// Open starts an editing session with the draft status set to the current
// status. Opening an already open editor keeps the draft.
func (e *StatusEditor) Open() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrNotEditing
	}
	switch e.state {
	case EditorSubmitting:
		return ErrSubmissionInFlight
	case EditorEditing:
		return nil
	}
	e.state = EditorEditing
	e.draft = domain.StatusChangeSubmission{NextStatus: e.current}
	e.notice = nil
	return nil
}

// SetStatus sets the draft target status.
func (e *StatusEditor) SetStatus(s domain.Status) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireEditing(); err != nil {
		return err
	}
	if !s.Submittable() {
		return fmt.Errorf("%s: %w", s, domain.ErrStatusNotSubmittable)
	}
	e.draft.NextStatus = s
	return nil
}

// SetNote sets the draft remarks.
func (e *StatusEditor) SetNote(note string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireEditing(); err != nil {
		return err
	}
	e.draft.Note = note
	return nil
}

// SetQuantityInput stores the typed quantity after live capping and returns
// the text the input field should now show.
func (e *StatusEditor) SetQuantityInput(raw string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireEditing(); err != nil {
		return raw, err
	}
	e.draft.RawQuantity = reconcile.CoerceQuantityInput(raw, e.progress.Pending)
	return e.draft.RawQuantity, nil
}

// Cancel discards the draft. It has no effect while a submission is in flight.
func (e *StatusEditor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == EditorEditing {
		e.state = EditorIdle
		e.draft = domain.StatusChangeSubmission{}
	}
}

// Prepare validates the draft, builds the outgoing update, applies the
// optimistic status and feed change, and moves the editor to Submitting.
// The caller must send the update and then call Complete.
func (e *StatusEditor) Prepare() (*Submission, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireEditing(); err != nil {
		return nil, err
	}

	now := e.clock()
	next := e.draft.NextStatus
	note := strings.TrimSpace(e.draft.Note)
	quantity := reconcile.CapQuantity(reconcile.ParseQuantity(e.draft.RawQuantity), e.progress.Pending)
	if next != domain.StatusInProgress {
		quantity = 0
	}

	statusChanged := next != e.current
	if !statusChanged && note == "" && quantity == 0 {
		return nil, ErrNoChanges
	}
	if !next.Submittable() {
		return nil, fmt.Errorf("%s: %w", next, domain.ErrStatusNotSubmittable)
	}

	sub := &Submission{
		RecordID:      e.record.ID,
		StatusChanged: statusChanged,
		Update: domain.StatusUpdate{
			ProjectID:      e.record.ProjectID,
			ActivityID:     e.record.ActivityID,
			TodaysProgress: quantity,
			Date:           now,
			Remarks:        note,
			Status:         next,
		},
	}

	e.snapshot = &editorSnapshot{current: e.current, feed: e.feed, progress: e.progress}
	e.progress = reconcile.WithLogged(e.progress, quantity)
	if statusChanged {
		e.feed = reconcile.AppendEvent(e.feed, reconcile.NewStatusChangeEvent(e.newID(), e.current, next, note, now))
		e.current = next
	} else {
		e.feed = reconcile.AppendEvent(e.feed, reconcile.NewCommentEvent(e.newID(), e.author, commentMessage(note, quantity), now))
	}
	e.state = EditorSubmitting
	e.inflight = sub
	e.sent = false
	e.notice = nil
	return sub, nil
}

// Complete ends the in-flight submission with the result of the backend
// call. A failure is returned as a *SubmitError and kept as the editor's
// notice. Results arriving after Close are discarded.
func (e *StatusEditor) Complete(sendErr error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.state != EditorSubmitting {
		return nil
	}
	e.state = EditorIdle
	e.draft = domain.StatusChangeSubmission{}
	snap := e.snapshot
	e.snapshot = nil
	e.inflight = nil

	if sendErr == nil {
		return nil
	}
	notice := &SubmitError{Err: sendErr}
	if e.rollback && snap != nil {
		e.current = snap.current
		e.feed = snap.feed
		e.progress = snap.progress
		notice.RolledBack = true
	}
	e.notice = notice
	return notice
}

// Commit prepares the draft, sends it and completes the session. Validation
// errors leave the editor in Editing; send failures come back as *SubmitError.
func (e *StatusEditor) Commit(ctx context.Context) error {
	sub, err := e.Prepare()
	if err != nil {
		return err
	}
	return e.Send(ctx, sub)
}

// Send delivers a prepared submission and completes the session with the
// result. Interactive callers run it off the UI goroutine. Only the
// submission returned by the latest Prepare is sent, and only once.
func (e *StatusEditor) Send(ctx context.Context, sub *Submission) (err error) {
	if err := e.claim(sub); err != nil {
		return err
	}
	fields := map[string]any{
		"record_id":       sub.RecordID,
		"status":          string(sub.Update.Status),
		"status_changed":  sub.StatusChanged,
		"todays_progress": sub.Update.TodaysProgress,
	}
	defer observe(ctx, e.observer, "submit-status", time.Now(), fields, &err)

	return e.Complete(e.updater.UpdateStatus(ctx, sub.RecordID, sub.Update))
}

func (e *StatusEditor) claim(sub *Submission) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sub == nil || e.state != EditorSubmitting || e.inflight != sub || e.sent {
		return ErrStaleSubmission
	}
	e.sent = true
	return nil
}

// Close ends the session. A submission still in flight is not cancelled but
// its result will be ignored.
func (e *StatusEditor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	e.draft = domain.StatusChangeSubmission{}
}

func (e *StatusEditor) requireEditing() error {
	switch {
	case e.closed:
		return ErrNotEditing
	case e.state == EditorSubmitting:
		return ErrSubmissionInFlight
	case e.state != EditorEditing:
		return ErrNotEditing
	}
	return nil
}

// State returns the current phase of the session.
func (e *StatusEditor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Current returns the status shown for the record, including optimistic changes.
func (e *StatusEditor) Current() domain.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Draft returns a copy of the draft.
func (e *StatusEditor) Draft() domain.StatusChangeSubmission {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Feed returns a copy of the activity feed, including optimistic entries.
func (e *StatusEditor) Feed() []domain.ActivityEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.ActivityEvent, len(e.feed))
	copy(out, e.feed)
	return out
}

// Progress returns the quantities the editor caps against, including
// quantities logged in this session.
func (e *StatusEditor) Progress() domain.AggregatedProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

// Notice returns the error left by the last failed submission, if any.
func (e *StatusEditor) Notice() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.notice
}

// Record returns the record the editor was opened for.
func (e *StatusEditor) Record() *domain.Record {
	return e.record
}

func commentMessage(note string, quantity float64) string {
	if note != "" {
		return note
	}
	return fmt.Sprintf("Logged %s today", reconcile.FormatQuantity(quantity))
}
