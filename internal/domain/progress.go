package domain

import "time"

// ProgressEntry is one entry of a record's status history. Entries are
// append-only on the backend; the client never mutates them.
type ProgressEntry struct {
	ID string
	// Quantity is the "today's progress" figure logged with the entry.
	// Missing or malformed values are coerced to 0 at the boundary.
	Quantity float64
	// At is the zero time when the backend timestamp could not be parsed.
	At      time.Time
	Remarks string
	// RawStatus is the status recorded with the entry, as received.
	RawStatus string
}

// SortTime is the time used to order history. Unparseable timestamps sort
// as the Unix epoch.
func (e ProgressEntry) SortTime() time.Time {
	if e.At.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return e.At
}

// AggregatedProgress is derived from a record's history and percent
// complete. It is never persisted.
type AggregatedProgress struct {
	Completed float64
	Today     float64
	// Total and Pending are nil when no positive percent complete is known.
	// Pending may be negative when the history overstates the percent.
	Total   *float64
	Pending *float64
}

// HasTotal reports whether total and pending quantities could be derived.
func (p AggregatedProgress) HasTotal() bool {
	return p.Total != nil
}
