package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the canonical work-item status, independent of how the
// backend happens to spell it.
type Status string

const (
	StatusPending     Status = "pending"
	StatusIdle        Status = "idle"
	StatusWorkStopped Status = "work stopped"
	StatusCompleted   Status = "completed"
	StatusInProgress  Status = "in progress"
)

// ErrStatusNotSubmittable is returned when a user asks to move a work item
// into a status that is only ever derived by the backend.
var ErrStatusNotSubmittable = errors.New("status cannot be submitted")

// AllStatuses lists every canonical status in display order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusIdle, StatusWorkStopped, StatusCompleted}
}

// SubmittableStatuses lists the statuses a user may pick in the status editor.
func SubmittableStatuses() []Status {
	return []Status{StatusInProgress, StatusIdle, StatusWorkStopped}
}

// statusSynonyms maps separator-normalized spellings to canonical values.
// "ideal" is a misspelling the backend has been seen to send for idle.
// "stopped" and "done" are not synonyms; like any unknown word they fall back
// to in progress.
var statusSynonyms = map[string]Status{
	"pending":      StatusPending,
	"idle":         StatusIdle,
	"ideal":        StatusIdle,
	"work stopped": StatusWorkStopped,
	"completed":    StatusCompleted,
	"complete":     StatusCompleted,
	"in progress":  StatusInProgress,
	"inprogress":   StatusInProgress,
	"ongoing":      StatusInProgress,
}

// NormalizeStatus maps any backend status string onto a canonical Status.
// Blank input (the backend omitting the field) is Idle. Anything else that is
// not recognised falls back to InProgress.
func NormalizeStatus(raw string) Status {
	key := statusKey(raw)
	if key == "" {
		return StatusIdle
	}
	if s, ok := statusSynonyms[key]; ok {
		return s
	}
	// TODO: route unknown values to an explicit Unknown status once the
	// list and editor screens can render one.
	return StatusInProgress
}

// LookupStatus is NormalizeStatus without the fallbacks: ok is false for
// blank or unrecognised input.
func LookupStatus(raw string) (Status, bool) {
	s, ok := statusSynonyms[statusKey(raw)]
	return s, ok
}

// statusKey lowercases raw and collapses runs of spaces, hyphens and
// underscores into a single space.
func statusKey(raw string) string {
	fields := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t' || r == '\n'
	})
	return strings.Join(fields, " ")
}

// WireValue returns the token sent to the backend for s.
func (s Status) WireValue() string {
	switch s {
	case StatusInProgress:
		return "in progress"
	case StatusIdle:
		return "idle"
	case StatusWorkStopped:
		return "work stopped"
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	default:
		return string(s)
	}
}

// Submittable reports whether s may be chosen as the target of a status change.
func (s Status) Submittable() bool {
	switch s {
	case StatusInProgress, StatusIdle, StatusWorkStopped:
		return true
	default:
		return false
	}
}

// Label is the upper-case chip text used by list and detail views.
func (s Status) Label() string {
	return strings.ToUpper(string(s))
}

// ParseSubmittableStatus normalizes user input and rejects targets that
// cannot be submitted. Blank input is rejected rather than defaulted.
func ParseSubmittableStatus(input string) (Status, error) {
	if statusKey(input) == "" {
		return "", fmt.Errorf("status is required")
	}
	s, known := LookupStatus(input)
	if !known {
		return "", fmt.Errorf("unknown status %q", input)
	}
	if !s.Submittable() {
		return "", fmt.Errorf("%s: %w", s, ErrStatusNotSubmittable)
	}
	return s, nil
}
