package domain

import "time"

// ActivityKind classifies an entry of the activity feed.
type ActivityKind string

const (
	ActivitySystem       ActivityKind = "system"
	ActivityStatusChange ActivityKind = "status"
	ActivityComment      ActivityKind = "comment"
)

// ActivityEvent is a display-ready entry of a record's activity feed.
// Feeds are rebuilt from the record on every read.
type ActivityEvent struct {
	ID      string
	Kind    ActivityKind
	At      time.Time
	Label   string
	Message string

	// Author is set for comments.
	Author string

	// From and To are set for status changes.
	From Status
	To   Status
}
