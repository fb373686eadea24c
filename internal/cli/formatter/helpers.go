package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)

	if title == "" {
		return box.Render(content)
	}
	return box.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
}

// TimeAgo labels t relative to now: "Just now", "5 min ago", "3 hr ago",
// "2 days ago". Times in the future or unknown times fall back to the date.
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return ShortDate(t)
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d min ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hr ago", int(diff.Hours()))
	case diff < 48*time.Hour:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	}
}

// ShortDate formats a planned date as "05 Mar".
func ShortDate(t time.Time) string {
	return t.Format("02 Jan")
}

// PlannedRange renders "05 Mar → 20 Mar", with "--" for a missing end.
func PlannedRange(start, finish *time.Time) string {
	if start == nil && finish == nil {
		return Dim("--")
	}
	from, to := "--", "--"
	if start != nil {
		from = ShortDate(*start)
	}
	if finish != nil {
		to = ShortDate(*finish)
	}
	return from + " → " + to
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// Truncate shortens s to max visible runes, ending in "…".
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 1 || len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
