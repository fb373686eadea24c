package domain

import "strings"

// DueBucket groups work items by where their planned window sits relative
// to today, as on the "My tasks" screen.
type DueBucket string

const (
	DueToday     DueBucket = "today"
	DueOverdue   DueBucket = "overdue"
	DueUpcoming  DueBucket = "upcoming"
	DueCompleted DueBucket = "completed"
)

// DueBuckets lists every bucket in display order.
func DueBuckets() []DueBucket {
	return []DueBucket{DueToday, DueOverdue, DueUpcoming, DueCompleted}
}

// LookupDueBucket matches a backend count key against the bucket names.
func LookupDueBucket(raw string) (DueBucket, bool) {
	key := DueBucket(strings.ToLower(strings.TrimSpace(raw)))
	for _, b := range DueBuckets() {
		if key == b {
			return b, true
		}
	}
	return "", false
}

// Label is the title-case heading for the bucket.
func (b DueBucket) Label() string {
	if b == "" {
		return ""
	}
	return strings.ToUpper(string(b[:1])) + string(b[1:])
}
