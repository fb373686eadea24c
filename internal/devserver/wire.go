package devserver

import (
	"time"

	"github.com/sitemaster/dpr/internal/domain"
	"github.com/sitemaster/dpr/internal/repository"
)

// The JSON shapes below follow the production DPR API, including its mixed
// snake_case and camelCase field names.

type refJSON struct {
	ID   string `json:"_id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

type userJSON struct {
	Name string `json:"name"`
}

type workCompletionJSON struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type currentStatusJSON struct {
	Status    string     `json:"status"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type historyJSON struct {
	ID             string    `json:"_id"`
	TodaysProgress float64   `json:"todays_progress"`
	Date           time.Time `json:"date"`
	Status         string    `json:"status"`
	Remarks        string    `json:"remarks"`
}

type recordJSON struct {
	ID              string              `json:"_id"`
	Project         refJSON             `json:"project_id"`
	Activity        refJSON             `json:"activity_id"`
	Category        string              `json:"category,omitempty"`
	PercentComplete *float64            `json:"percent_complete,omitempty"`
	WorkCompletion  *workCompletionJSON `json:"work_completion,omitempty"`
	CurrentStatus   currentStatusJSON   `json:"current_status"`
	StatusHistory   []historyJSON       `json:"status_history"`
	CreatedAt       *time.Time          `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time          `json:"updatedAt,omitempty"`
	CreatedBy       *userJSON           `json:"createdBy,omitempty"`
	PlannedStart    *time.Time          `json:"planned_start,omitempty"`
	PlannedFinish   *time.Time          `json:"planned_finish,omitempty"`
	Comments        []struct{}          `json:"comments"`
	Attachments     []struct{}          `json:"attachments"`
}

func toRecordJSON(rec *repository.StoredRecord, history []domain.ProgressEntry) recordJSON {
	out := recordJSON{
		ID:              rec.ID,
		Project:         refJSON{ID: rec.ProjectID, Code: rec.ProjectCode, Name: rec.ProjectName},
		Activity:        refJSON{ID: rec.ActivityID, Name: rec.ActivityName},
		Category:        rec.Category,
		PercentComplete: rec.PercentComplete,
		CurrentStatus:   currentStatusJSON{Status: rec.RawStatus, UpdatedAt: rec.StatusUpdatedAt},
		StatusHistory:   make([]historyJSON, 0, len(history)),
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
		PlannedStart:    rec.PlannedStart,
		PlannedFinish:   rec.PlannedFinish,
		Comments:        make([]struct{}, rec.CommentCount),
		Attachments:     make([]struct{}, rec.AttachmentCount),
	}
	if rec.WorkCompletionValue != nil {
		out.WorkCompletion = &workCompletionJSON{Value: *rec.WorkCompletionValue, Unit: rec.WorkCompletionUnit}
	}
	if rec.CreatedBy != "" {
		out.CreatedBy = &userJSON{Name: rec.CreatedBy}
	}
	for _, e := range history {
		out.StatusHistory = append(out.StatusHistory, historyJSON{
			ID:             e.ID,
			TodaysProgress: e.Quantity,
			Date:           e.At,
			Status:         e.RawStatus,
			Remarks:        e.Remarks,
		})
	}
	return out
}

// updateStatusBody is the PATCH dpr/:id/updateStatus request.
type updateStatusBody struct {
	ProjectID      string   `json:"projectId"`
	ActivityID     string   `json:"activityId"`
	TodaysProgress *float64 `json:"todays_progress"`
	Date           string   `json:"date"`
	Remarks        string   `json:"remarks"`
	Status         string   `json:"status"`
}
