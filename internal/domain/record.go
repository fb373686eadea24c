package domain

import "time"

// Record is one DPR work item as seen by the client after boundary coercion.
// Optional backend fields are pointers; nil means the backend did not send a
// usable value.
type Record struct {
	ID           string
	ProjectID    string
	ProjectCode  string
	ProjectName  string
	ActivityID   string
	ActivityName string
	Category     string

	// PercentComplete is 0..100 as reported by the backend, nil when unknown.
	PercentComplete *float64

	// RawStatus is current_status.status exactly as received.
	RawStatus       string
	StatusUpdatedAt *time.Time

	History []ProgressEntry

	CreatedAt *time.Time
	CreatedBy string
	UpdatedAt *time.Time

	PlannedStart  *time.Time
	PlannedFinish *time.Time

	CommentCount    int
	AttachmentCount int
}

// Status returns the canonical status of the record.
func (r *Record) Status() Status {
	return NormalizeStatus(r.RawStatus)
}

// Creation returns the creation metadata for the activity feed, or nil when
// the record carries neither a creation time nor an author.
func (r *Record) Creation() *Creation {
	if r.CreatedAt == nil && r.CreatedBy == "" {
		return nil
	}
	c := &Creation{ActorName: r.CreatedBy}
	if r.CreatedAt != nil {
		c.At = *r.CreatedAt
	}
	return c
}

// DisplayTitle returns the activity name, or a placeholder when missing.
func (r *Record) DisplayTitle() string {
	return CoalesceStr(r.ActivityName, "Activity name not available")
}

// Creation is the "who created this and when" metadata of a record.
type Creation struct {
	At        time.Time
	ActorName string
}
