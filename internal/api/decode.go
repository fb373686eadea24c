package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sitemaster/dpr/internal/domain"
)

// toRecord coerces a raw backend record into a domain.Record.
func toRecord(raw rawRecord) *domain.Record {
	r := &domain.Record{
		ID:              domain.CoalesceStr(string(raw.ID), string(raw.AltID)),
		ProjectID:       raw.Project.ID,
		ProjectCode:     raw.Project.Code,
		ProjectName:     raw.Project.Name,
		ActivityID:      raw.Activity.ID,
		ActivityName:    raw.Activity.Name,
		Category:        string(raw.Category),
		PercentComplete: percentComplete(raw),
		CreatedAt:       raw.CreatedAt.Ptr(),
		CreatedBy:       raw.CreatedBy.Name,
		UpdatedAt:       raw.UpdatedAt.Ptr(),
		PlannedStart:    raw.PlannedStart.Ptr(),
		PlannedFinish:   raw.PlannedFinish.Ptr(),
		CommentCount:    len(raw.Comments),
		AttachmentCount: len(raw.Attachments),
	}
	if raw.CurrentStatus != nil {
		r.RawStatus = string(raw.CurrentStatus.Status)
		r.StatusUpdatedAt = raw.CurrentStatus.UpdatedAt.Ptr()
	}

	r.History = make([]domain.ProgressEntry, 0, len(raw.StatusHistory))
	for _, h := range raw.StatusHistory {
		e := domain.ProgressEntry{
			ID:        string(h.ID),
			Remarks:   strings.TrimSpace(string(h.Remarks)),
			RawStatus: string(h.Status),
		}
		if h.TodaysProgress.Valid {
			e.Quantity = h.TodaysProgress.Value
		}
		switch {
		case h.Date.Valid:
			e.At = h.Date.Time
		case h.CreatedAt.Valid:
			e.At = h.CreatedAt.Time
		}
		r.History = append(r.History, e)
	}
	return r
}

// percentComplete prefers percent_complete and falls back to
// work_completion.value when its unit is a percentage (or unspecified).
func percentComplete(raw rawRecord) *float64 {
	if p := raw.PercentComplete.Ptr(); p != nil {
		return p
	}
	wc := raw.WorkCompletion
	if wc == nil || !wc.Value.Valid {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(string(wc.Unit))) {
	case "", "percentage", "percent", "%":
		return wc.Value.Ptr()
	default:
		return nil
	}
}

// decodeRecord accepts a bare record or one wrapped in {"data": {...}}.
func decodeRecord(body []byte) (*domain.Record, error) {
	var wrapped struct {
		Data *rawRecord `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data != nil {
		return toRecord(*wrapped.Data), nil
	}
	var raw rawRecord
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return toRecord(raw), nil
}

// decodeRecordPage accepts {"data": [...]}, {"items": [...]} and a bare array.
func decodeRecordPage(body []byte) (*RecordPage, error) {
	var bare []rawRecord
	if err := json.Unmarshal(body, &bare); err == nil {
		return newRecordPage(bare, nil, nil, nil), nil
	}

	var env struct {
		Data  json.RawMessage `json:"data"`
		Items json.RawMessage `json:"items"`
		Total flexNumber      `json:"total"`
		Page  flexNumber      `json:"page"`
		Limit flexNumber      `json:"limit"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	var raws []rawRecord
	for _, candidate := range []json.RawMessage{env.Data, env.Items} {
		if len(candidate) == 0 {
			continue
		}
		if err := json.Unmarshal(candidate, &raws); err == nil {
			break
		}
		raws = nil
	}
	return newRecordPage(raws, env.Total.Ptr(), env.Page.Ptr(), env.Limit.Ptr()), nil
}

func newRecordPage(raws []rawRecord, total, page, limit *float64) *RecordPage {
	p := &RecordPage{Records: make([]*domain.Record, 0, len(raws))}
	for _, raw := range raws {
		p.Records = append(p.Records, toRecord(raw))
	}
	p.Total = len(p.Records)
	if total != nil {
		p.Total = int(*total)
	}
	if page != nil {
		p.Page = int(*page)
	}
	if limit != nil {
		p.Limit = int(*limit)
	}
	return p
}

// decodeStatusCounts accepts a flat {"status": n} map, optionally wrapped in
// "data", or a list of {"status"|"_id": s, "count": n} rows.
func decodeStatusCounts(body []byte) (map[string]int, error) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 {
		body = env.Data
	}

	var rows []struct {
		Status flexString `json:"status"`
		ID     flexString `json:"_id"`
		Count  flexNumber `json:"count"`
	}
	if err := json.Unmarshal(body, &rows); err == nil {
		counts := make(map[string]int, len(rows))
		for _, row := range rows {
			counts[domain.CoalesceStr(string(row.Status), string(row.ID))] += int(row.Count.Value)
		}
		return counts, nil
	}

	var flat map[string]flexNumber
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	counts := make(map[string]int, len(flat))
	for k, v := range flat {
		if v.Valid {
			counts[k] = int(v.Value)
		}
	}
	return counts, nil
}
