package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/sitemaster/dpr/internal/domain"
	"github.com/sitemaster/dpr/internal/reconcile"
	"github.com/sitemaster/dpr/internal/service"
)

const (
	listBarWidth   = 10
	detailBarWidth = 24
	titleMaxWidth  = 36
)

// FormatRecordList renders the card list as a table.
func FormatRecordList(views []*service.RecordView) string {
	if len(views) == 0 {
		return Dim("No work items match.") + "\n"
	}

	headers := []string{"ID", "ACTIVITY", "PROJECT", "STATUS", "PROGRESS", "PLANNED", "NOTES"}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		r := v.Record
		rows = append(rows, []string{
			TruncID(r.ID),
			Truncate(r.DisplayTitle(), titleMaxWidth),
			domain.CoalesceStr(r.ProjectCode, r.ProjectName, "--"),
			StatusPill(v.Status),
			RenderProgress(v.Percent, listBarWidth),
			PlannedRange(r.PlannedStart, r.PlannedFinish),
			Dim(fmt.Sprintf("💬 %d  📎 %d", r.CommentCount, r.AttachmentCount)),
		})
	}
	return RenderTable(headers, rows)
}

// FormatRecordDetail renders one record with its quantities and feed.
func FormatRecordDetail(v *service.RecordView, now time.Time) string {
	r := v.Record
	var b strings.Builder

	b.WriteString(Bold(r.DisplayTitle()) + "  " + StatusPill(v.Status) + "\n")
	project := domain.CoalesceStr(strings.TrimSpace(r.ProjectCode+" "+r.ProjectName), "--")
	fmt.Fprintf(&b, "%s %s\n", Dim("Project: "), project)
	if r.Category != "" {
		fmt.Fprintf(&b, "%s %s\n", Dim("Category:"), r.Category)
	}
	fmt.Fprintf(&b, "%s %s\n", Dim("Planned: "), PlannedRange(r.PlannedStart, r.PlannedFinish))
	if r.StatusUpdatedAt != nil {
		fmt.Fprintf(&b, "%s %s\n", Dim("Updated: "), TimeAgo(*r.StatusUpdatedAt, now))
	}
	b.WriteString("\n" + RenderProgress(v.Percent, detailBarWidth) + "\n\n")
	b.WriteString(FormatProgress(v.Progress))

	out := RenderBox(TruncID(r.ID), b.String()) + "\n\n"
	out += Header("Activity") + "\n" + FormatFeed(v.Feed, now)
	return out
}

// FormatProgress renders the four derived quantities. Total and pending
// show "--" when no percent complete is known.
func FormatProgress(p domain.AggregatedProgress) string {
	total, pending := Dim("--"), Dim("--")
	if p.Total != nil {
		total = reconcile.FormatQuantity(*p.Total)
	}
	if p.Pending != nil {
		pending = reconcile.FormatQuantity(*p.Pending)
		if *p.Pending < 0 {
			pending = StyleRed.Render(pending)
		}
	}
	return RenderTable(
		[]string{"COMPLETED", "TODAY", "TOTAL", "PENDING"},
		[][]string{{reconcile.FormatQuantity(p.Completed), reconcile.FormatQuantity(p.Today), total, pending}},
	)
}

// FormatFeed renders activity events oldest first.
func FormatFeed(feed []domain.ActivityEvent, now time.Time) string {
	var b strings.Builder
	for _, ev := range feed {
		b.WriteString(formatEvent(ev, now))
		b.WriteString("\n")
	}
	return b.String()
}

func formatEvent(ev domain.ActivityEvent, now time.Time) string {
	when := ev.Label
	if when == "" {
		when = "-"
	}
	if !ev.At.IsZero() && when != "Just now" {
		when += " · " + TimeAgo(ev.At, now)
	}
	when = Dim(when)

	switch ev.Kind {
	case domain.ActivityStatusChange:
		change := StatusStyle(ev.From).Render(ev.From.Label()) + Dim(" → ") + StatusStyle(ev.To).Render(ev.To.Label())
		return fmt.Sprintf("  %s %s  %s\n    %s", StyleBlue.Render("◆"), change, when, ev.Message)
	case domain.ActivityComment:
		return fmt.Sprintf("  %s %s  %s\n    %s", StylePurple.Render("✎"), Bold(ev.Author), when, ev.Message)
	default:
		return fmt.Sprintf("  %s %s  %s", Dim("•"), ev.Message, when)
	}
}

// FormatSummary renders the due buckets ("my tasks") and per-status counts
// with their share of the total.
func FormatSummary(s *service.StatusSummary) string {
	var out string
	if s.Due != nil {
		rows := make([][]string, 0, len(domain.DueBuckets()))
		for _, b := range domain.DueBuckets() {
			rows = append(rows, []string{b.Label(), fmt.Sprintf("%d", s.Due[b])})
		}
		out += Header("My tasks") + "\n" + RenderTable([]string{"DUE", "COUNT"}, rows)
		out += fmt.Sprintf("\n%s %d\n", Bold("My tasks:"), s.DueTotal)
		if s.DueDerived {
			out += Dim("Bucketed from planned dates of listed records.") + "\n"
		}
		out += "\n"
	}

	if s.Counts == nil {
		return out + Dim("Status counts unavailable.") + "\n"
	}
	rows := make([][]string, 0, len(domain.AllStatuses()))
	for _, status := range domain.AllStatuses() {
		n := s.Counts[status]
		pct := 0
		if s.Total > 0 {
			pct = n * 100 / s.Total
		}
		rows = append(rows, []string{StatusPill(status), fmt.Sprintf("%d", n), RenderProgress(pct, listBarWidth)})
	}
	out += Header("Status summary") + "\n" + RenderTable([]string{"STATUS", "COUNT", "SHARE"}, rows)
	out += fmt.Sprintf("\n%s %d\n", Bold("Total:"), s.Total)
	if s.Derived {
		out += Dim("Counted from listed records; the status endpoint did not report them.") + "\n"
	}
	return out
}

// FormatNotice renders a non-fatal warning line.
func FormatNotice(err error) string {
	return StyleYellow.Render("⚠ "+err.Error()) + "\n"
}
