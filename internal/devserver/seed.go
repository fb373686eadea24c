package devserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sitemaster/dpr/internal/db"
	"github.com/sitemaster/dpr/internal/domain"
	"github.com/sitemaster/dpr/internal/repository"
)

// SeedFile is the YAML layout of a dprd seed file.
type SeedFile struct {
	Records []SeedRecord `yaml:"records"`
}

type SeedRef struct {
	ID   string `yaml:"id"`
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type SeedWorkCompletion struct {
	Value float64 `yaml:"value"`
	Unit  string  `yaml:"unit"`
}

type SeedRecord struct {
	ID              string              `yaml:"id"`
	Project         SeedRef             `yaml:"project"`
	Activity        SeedRef             `yaml:"activity"`
	Category        string              `yaml:"category"`
	PercentComplete *float64            `yaml:"percent_complete"`
	WorkCompletion  *SeedWorkCompletion `yaml:"work_completion"`
	Status          string              `yaml:"status"`
	CreatedBy       string              `yaml:"created_by"`
	CreatedAt       *time.Time          `yaml:"created_at"`
	PlannedStart    *time.Time          `yaml:"planned_start"`
	PlannedFinish   *time.Time          `yaml:"planned_finish"`
	Comments        int                 `yaml:"comments"`
	Attachments     int                 `yaml:"attachments"`
	History         []SeedEntry         `yaml:"history"`
}

type SeedEntry struct {
	ID             string    `yaml:"id"`
	TodaysProgress float64   `yaml:"todays_progress"`
	Date           time.Time `yaml:"date"`
	Status         string    `yaml:"status"`
	Remarks        string    `yaml:"remarks"`
}

// LoadSeedFile reads and parses a seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed %s: %w", path, err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed %s: %w", path, err)
	}
	return &seed, nil
}

// Seed inserts every record that does not exist yet, with its history, in
// one transaction. It returns the number of records inserted.
func Seed(ctx context.Context, uow db.UnitOfWork, seed *SeedFile) (int, error) {
	inserted := 0
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		records := repository.NewSQLiteRecordRepo(tx)
		history := repository.NewSQLiteHistoryRepo(tx)

		for i, sr := range seed.Records {
			if sr.ID == "" {
				return fmt.Errorf("seed record %d: id is required", i)
			}
			_, err := records.GetByID(ctx, sr.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}

			if err := records.Create(ctx, sr.toStored()); err != nil {
				return fmt.Errorf("seed record %s: %w", sr.ID, err)
			}
			for _, se := range sr.History {
				entry := domain.ProgressEntry{
					ID:        domain.CoalesceStr(se.ID, uuid.New().String()),
					Quantity:  se.TodaysProgress,
					At:        se.Date,
					Remarks:   se.Remarks,
					RawStatus: se.Status,
				}
				if err := history.Append(ctx, sr.ID, entry); err != nil {
					return fmt.Errorf("seed record %s history: %w", sr.ID, err)
				}
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (sr SeedRecord) toStored() *repository.StoredRecord {
	rec := &repository.StoredRecord{
		Record: domain.Record{
			ID:              sr.ID,
			ProjectID:       sr.Project.ID,
			ProjectCode:     sr.Project.Code,
			ProjectName:     sr.Project.Name,
			ActivityID:      domain.CoalesceStr(sr.Activity.ID, sr.ID),
			ActivityName:    sr.Activity.Name,
			Category:        sr.Category,
			PercentComplete: sr.PercentComplete,
			RawStatus:       sr.Status,
			CreatedBy:       sr.CreatedBy,
			CreatedAt:       sr.CreatedAt,
			PlannedStart:    sr.PlannedStart,
			PlannedFinish:   sr.PlannedFinish,
			CommentCount:    sr.Comments,
			AttachmentCount: sr.Attachments,
		},
	}
	if sr.WorkCompletion != nil {
		rec.WorkCompletionValue = domain.Float64Ptr(sr.WorkCompletion.Value)
		rec.WorkCompletionUnit = sr.WorkCompletion.Unit
	}
	return rec
}
