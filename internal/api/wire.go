package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/sitemaster/dpr/internal/domain"
)

// The backend payloads are loosely typed: numbers arrive as strings, ids
// arrive either bare or populated, and fields go missing. The types below
// absorb that at decode time so nothing past this package sees it. None of
// their UnmarshalJSON methods fail; a malformed value decodes as invalid.

// flexNumber accepts a JSON number or a numeric string.
type flexNumber struct {
	Value float64
	Valid bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	*n = flexNumber{}
	if isNull(b) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.Value, n.Valid = f, true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			n.Value, n.Valid = f, true
		}
	}
	return nil
}

// Ptr returns the value as a pointer, nil when invalid.
func (n flexNumber) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// flexTime accepts the timestamp spellings the backend uses, or epoch millis.
type flexTime struct {
	Time  time.Time
	Valid bool
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	*t = flexTime{}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		s = strings.TrimSpace(s)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time, t.Valid = parsed, true
				return nil
			}
		}
		return nil
	}
	var ms float64
	if err := json.Unmarshal(b, &ms); err == nil && ms > 0 {
		t.Time, t.Valid = time.UnixMilli(int64(ms)).UTC(), true
	}
	return nil
}

// Ptr returns the time as a pointer, nil when invalid.
func (t flexTime) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// flexString accepts a string, number or bool; anything else is empty.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	*s = ""
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && (trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9') || trimmed[0] == 't' || trimmed[0] == 'f') {
		*s = flexString(trimmed)
	}
	return nil
}

// ref is a reference the backend sends either as a bare id or as a
// populated object.
type ref struct {
	ID   string
	Name string
	Code string
}

func (r *ref) UnmarshalJSON(b []byte) error {
	*r = ref{}
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		r.ID = id
		return nil
	}
	var obj struct {
		ID    flexString `json:"_id"`
		AltID flexString `json:"id"`
		Name  flexString `json:"name"`
		Code  flexString `json:"code"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		r.ID = domain.CoalesceStr(string(obj.ID), string(obj.AltID))
		r.Name = string(obj.Name)
		r.Code = string(obj.Code)
	}
	return nil
}

// lenientList decodes a JSON array element by element, dropping elements
// that do not decode. A non-array decodes as empty.
type lenientList[T any] []T

func (l *lenientList[T]) UnmarshalJSON(b []byte) error {
	*l = nil
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err == nil {
			out = append(out, v)
		}
	}
	*l = out
	return nil
}

type rawWorkCompletion struct {
	Value flexNumber `json:"value"`
	Unit  flexString `json:"unit"`
}

type rawCurrentStatus struct {
	Status    flexString `json:"status"`
	Remarks   flexString `json:"remarks"`
	UpdatedAt flexTime   `json:"updated_at"`
}

type rawHistoryEntry struct {
	ID             flexString `json:"_id"`
	TodaysProgress flexNumber `json:"todays_progress"`
	Date           flexTime   `json:"date"`
	CreatedAt      flexTime   `json:"createdAt"`
	Status         flexString `json:"status"`
	Remarks        flexString `json:"remarks"`
}

type rawRecord struct {
	ID              flexString                   `json:"_id"`
	AltID           flexString                   `json:"id"`
	Activity        ref                          `json:"activity_id"`
	Project         ref                          `json:"project_id"`
	Category        flexString                   `json:"category"`
	PercentComplete flexNumber                   `json:"percent_complete"`
	WorkCompletion  *rawWorkCompletion           `json:"work_completion"`
	CurrentStatus   *rawCurrentStatus            `json:"current_status"`
	StatusHistory   lenientList[rawHistoryEntry] `json:"status_history"`
	CreatedAt       flexTime                     `json:"createdAt"`
	UpdatedAt       flexTime                     `json:"updatedAt"`
	CreatedBy       ref                          `json:"createdBy"`
	PlannedStart    flexTime                     `json:"planned_start"`
	PlannedFinish   flexTime                     `json:"planned_finish"`
	Comments        lenientList[json.RawMessage] `json:"comments"`
	Attachments     lenientList[json.RawMessage] `json:"attachments"`
}

// updateRequest is the body of PATCH dpr/{id}/updateStatus.
type updateRequest struct {
	ProjectID      string  `json:"projectId"`
	ActivityID     string  `json:"activityId"`
	TodaysProgress float64 `json:"todays_progress"`
	Date           string  `json:"date"`
	Remarks        string  `json:"remarks"`
	Status         string  `json:"status"`
}

// errorEnvelope covers the error bodies the backend is known to send:
// {"message": "..."}, {"error": "..."} and {"error": {"message": "..."}}.
type errorEnvelope struct {
	Message flexString      `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func (e errorEnvelope) text() string {
	if e.Message != "" {
		return string(e.Message)
	}
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Message flexString `json:"message"`
	}
	if err := json.Unmarshal(e.Error, &obj); err == nil {
		return string(obj.Message)
	}
	return ""
}

func isNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}
