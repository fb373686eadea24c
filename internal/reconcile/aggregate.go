// Package reconcile derives display state for DPR records: completion
// quantities, quantity caps, activity feeds and status summaries. Everything
// here is pure; callers pass the current time in.
package reconcile

import (
	"math"
	"time"

	"github.com/sitemaster/dpr/internal/domain"
)

// Aggregate derives completed, today, total and pending quantities from a
// record's history.
//
// Total is completed / (percent/100) and is only derived when percentComplete
// is finite and positive. Pending is total - completed and is not clamped.
func Aggregate(history []domain.ProgressEntry, percentComplete *float64, today time.Time) domain.AggregatedProgress {
	var p domain.AggregatedProgress
	for _, e := range history {
		q := countable(e.Quantity)
		if q == 0 {
			continue
		}
		p.Completed += q
		if !e.At.IsZero() && sameDay(e.At, today) {
			p.Today += q
		}
	}

	if percentComplete == nil {
		return p
	}
	pct := *percentComplete
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct <= 0 {
		return p
	}
	total := p.Completed / (pct / 100)
	pending := total - p.Completed
	p.Total = &total
	p.Pending = &pending
	return p
}

// countable returns q when it is a finite positive number, else 0.
func countable(q float64) float64 {
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return 0
	}
	return q
}

// sameDay compares calendar dates in today's location.
func sameDay(t, today time.Time) bool {
	y1, m1, d1 := t.In(today.Location()).Date()
	y2, m2, d2 := today.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DisplayPercent rounds and clamps a backend percent to 0..100 for cards and
// progress bars. Unknown percent renders as 0.
func DisplayPercent(percentComplete *float64) int {
	if percentComplete == nil {
		return 0
	}
	pct := *percentComplete
	if math.IsNaN(pct) {
		return 0
	}
	return int(math.Min(math.Max(math.Round(pct), 0), 100))
}

// WithLogged returns p with q more logged today. Total stays fixed, so
// pending shrinks by the same amount.
func WithLogged(p domain.AggregatedProgress, q float64) domain.AggregatedProgress {
	q = countable(q)
	if q == 0 {
		return p
	}
	p.Completed += q
	p.Today += q
	if p.Total != nil {
		total := *p.Total
		pending := total - p.Completed
		p.Total = &total
		p.Pending = &pending
	}
	return p
}
