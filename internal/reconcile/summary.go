package reconcile

import (
	"strings"
	"time"

	"github.com/sitemaster/dpr/internal/domain"
)

// CountByStatus tallies records per canonical status. Every status is present
// in the result, with zero counts where nothing matched.
func CountByStatus(records []*domain.Record) map[domain.Status]int {
	counts := make(map[domain.Status]int, len(domain.AllStatuses()))
	for _, s := range domain.AllStatuses() {
		counts[s] = 0
	}
	for _, r := range records {
		counts[r.Status()]++
	}
	return counts
}

// CountRawStatuses folds backend-reported counts keyed by raw status strings
// into canonical buckets. A blank key counts as idle; keys that name no status
// ("total", due buckets such as "today") are skipped. ok is false when no key
// named a status other than completed, which is how the due-bucket shape of
// the status endpoint looks.
func CountRawStatuses(raw map[string]int) (counts map[domain.Status]int, ok bool) {
	counts = make(map[domain.Status]int, len(domain.AllStatuses()))
	for _, s := range domain.AllStatuses() {
		counts[s] = 0
	}
	for k, n := range raw {
		s, known := domain.LookupStatus(k)
		if strings.TrimSpace(k) == "" {
			s, known = domain.StatusIdle, true
		}
		if !known {
			continue
		}
		counts[s] += n
		if s != domain.StatusCompleted {
			ok = true
		}
	}
	return counts, ok
}

// CountRawDueBuckets picks the today/overdue/upcoming/completed counts out of
// a status endpoint body. ok is false unless at least one of today, overdue
// or upcoming is present.
func CountRawDueBuckets(raw map[string]int) (counts map[domain.DueBucket]int, ok bool) {
	counts = make(map[domain.DueBucket]int, len(domain.DueBuckets()))
	for _, b := range domain.DueBuckets() {
		counts[b] = 0
	}
	for k, n := range raw {
		b, known := domain.LookupDueBucket(k)
		if !known {
			continue
		}
		counts[b] += n
		if b != domain.DueCompleted {
			ok = true
		}
	}
	return counts, ok
}

// DueBucketOf places a record relative to today's calendar date. Completed
// records are DueCompleted; otherwise a planned finish before today is
// overdue, a planned start after today is upcoming, and a window covering
// today is due today. Records without planned dates have no bucket.
func DueBucketOf(rec *domain.Record, today time.Time) (domain.DueBucket, bool) {
	if rec.Status() == domain.StatusCompleted {
		return domain.DueCompleted, true
	}
	day := calendarDay(today, today)
	switch {
	case rec.PlannedFinish != nil && calendarDay(*rec.PlannedFinish, today).Before(day):
		return domain.DueOverdue, true
	case rec.PlannedStart != nil && calendarDay(*rec.PlannedStart, today).After(day):
		return domain.DueUpcoming, true
	case rec.PlannedStart != nil || rec.PlannedFinish != nil:
		return domain.DueToday, true
	}
	return "", false
}

// CountDueBuckets tallies records per due bucket as of today.
func CountDueBuckets(records []*domain.Record, today time.Time) map[domain.DueBucket]int {
	counts := make(map[domain.DueBucket]int, len(domain.DueBuckets()))
	for _, b := range domain.DueBuckets() {
		counts[b] = 0
	}
	for _, r := range records {
		if b, ok := DueBucketOf(r, today); ok {
			counts[b]++
		}
	}
	return counts
}

func calendarDay(t, today time.Time) time.Time {
	y, m, d := t.In(today.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, today.Location())
}

// FilterByStatus keeps records whose canonical status is s. An empty s keeps
// everything.
func FilterByStatus(records []*domain.Record, s domain.Status) []*domain.Record {
	if s == "" {
		return records
	}
	var out []*domain.Record
	for _, r := range records {
		if r.Status() == s {
			out = append(out, r)
		}
	}
	return out
}
