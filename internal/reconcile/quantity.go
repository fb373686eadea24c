package reconcile

import (
	"math"
	"strconv"
	"strings"
)

// CapQuantity limits a proposed "today's progress" value to the pending
// quantity. With no pending quantity there is nothing to cap against. A
// negative pending quantity caps at 0.
//
// The status editor calls this on every keystroke and again when building the
// outgoing update.
func CapQuantity(proposed float64, pending *float64) float64 {
	if pending == nil {
		return proposed
	}
	limit := math.Max(*pending, 0)
	if proposed > limit {
		return limit
	}
	return proposed
}

// ParseQuantity reads a user-typed quantity. Anything that is not a finite,
// non-negative number reads as 0.
func ParseQuantity(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// CoerceQuantityInput returns the text the quantity field should show after
// the user typed raw. Unparseable input is cleared, values above the cap are
// replaced by the cap, and anything else is left as typed so partial input
// such as "12." survives.
func CoerceQuantityInput(raw string, pending *float64) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return ""
	}
	capped := CapQuantity(v, pending)
	if capped != v {
		// Round down so the echoed value never exceeds the cap.
		return FormatQuantity(math.Floor(capped*100+1e-9) / 100)
	}
	return s
}

// FormatQuantity renders a quantity with at most two decimals and no
// trailing zeros.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(math.Round(q*100)/100, 'f', -1, 64)
}
