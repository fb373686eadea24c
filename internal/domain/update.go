package domain

import "time"

// StatusChangeSubmission is the draft held by the status editor while the
// user is editing.
type StatusChangeSubmission struct {
	NextStatus  Status
	Note        string
	RawQuantity string
}

// StatusUpdate is the outgoing status change for one record. One update is
// one call to the backend, which appends one history entry.
type StatusUpdate struct {
	ProjectID      string
	ActivityID     string
	TodaysProgress float64
	Date           time.Time
	Remarks        string
	Status         Status
}
