package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/sitemaster/dpr/internal/domain"
)

const (
	// PlaceholderEventID identifies the informational event shown when a
	// record has no creation metadata and no history.
	PlaceholderEventID = "placeholder"

	defaultStatusMessage = "Status changed"
	placeholderMessage   = "No activity recorded yet"
	eventLabelLayout     = "Monday, 3:04 PM"
	justNowLabel         = "Just now"
)

// BuildFeed converts creation metadata and raw history into an ordered
// activity feed. History is sorted ascending by timestamp; each entry becomes
// a status change whose From is the status carried forward from the previous
// entry, starting at Idle. The result is never empty.
func BuildFeed(creation *domain.Creation, history []domain.ProgressEntry) []domain.ActivityEvent {
	feed := make([]domain.ActivityEvent, 0, len(history)+1)

	if creation != nil && !creation.At.IsZero() && creation.ActorName != "" {
		feed = append(feed, domain.ActivityEvent{
			ID:      "created",
			Kind:    domain.ActivitySystem,
			At:      creation.At,
			Label:   EventLabel(creation.At),
			Message: fmt.Sprintf("%s created this task", creation.ActorName),
		})
	}

	sorted := make([]domain.ProgressEntry, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortTime().Before(sorted[j].SortTime())
	})

	from := domain.StatusIdle
	for i, e := range sorted {
		to := domain.NormalizeStatus(e.RawStatus)
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("history-%d", i)
		}
		feed = append(feed, domain.ActivityEvent{
			ID:      id,
			Kind:    domain.ActivityStatusChange,
			At:      e.At,
			Label:   EventLabel(e.At),
			Message: domain.CoalesceStr(e.Remarks, defaultStatusMessage),
			From:    from,
			To:      to,
		})
		from = to
	}

	if len(feed) == 0 {
		feed = append(feed, domain.ActivityEvent{
			ID:      PlaceholderEventID,
			Kind:    domain.ActivitySystem,
			Message: placeholderMessage,
		})
	}
	return feed
}

// NewCommentEvent builds a comment posted from the editor.
func NewCommentEvent(id, author, message string, at time.Time) domain.ActivityEvent {
	return domain.ActivityEvent{
		ID:      id,
		Kind:    domain.ActivityComment,
		At:      at,
		Label:   justNowLabel,
		Message: message,
		Author:  author,
	}
}

// NewStatusChangeEvent builds a status change made from the editor.
func NewStatusChangeEvent(id string, from, to domain.Status, remarks string, at time.Time) domain.ActivityEvent {
	return domain.ActivityEvent{
		ID:      id,
		Kind:    domain.ActivityStatusChange,
		At:      at,
		Label:   justNowLabel,
		Message: domain.CoalesceStr(remarks, defaultStatusMessage),
		From:    from,
		To:      to,
	}
}

// AppendEvent adds an interactively created event at the end of feed without
// re-sorting. A lone placeholder is dropped once a real event exists. The
// input slice is not modified.
func AppendEvent(feed []domain.ActivityEvent, ev domain.ActivityEvent) []domain.ActivityEvent {
	out := make([]domain.ActivityEvent, 0, len(feed)+1)
	if !(len(feed) == 1 && feed[0].ID == PlaceholderEventID) {
		out = append(out, feed...)
	}
	return append(out, ev)
}

// EventLabel formats an event time such as "Thursday, 8:20 PM". Unknown
// times render as "-".
func EventLabel(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(eventLabelLayout)
}
