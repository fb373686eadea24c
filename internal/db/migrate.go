package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies every schema statement. Statements are idempotent, so it is
// safe to run on every start.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS dpr_records (
		id                    TEXT PRIMARY KEY,
		project_id            TEXT NOT NULL DEFAULT '',
		project_code          TEXT NOT NULL DEFAULT '',
		project_name          TEXT NOT NULL DEFAULT '',
		activity_id           TEXT NOT NULL DEFAULT '',
		activity_name         TEXT NOT NULL DEFAULT '',
		category              TEXT NOT NULL DEFAULT '',
		percent_complete      REAL,
		work_completion_value REAL,
		work_completion_unit  TEXT NOT NULL DEFAULT '',
		current_status        TEXT NOT NULL DEFAULT 'pending'
		                      CHECK(current_status IN ('pending','idle','work stopped','completed','in progress')),
		status_updated_at     TEXT,
		planned_start         TEXT,
		planned_finish        TEXT,
		created_by            TEXT NOT NULL DEFAULT '',
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS status_history (
		id              TEXT PRIMARY KEY,
		record_id       TEXT NOT NULL REFERENCES dpr_records(id) ON DELETE CASCADE,
		todays_progress REAL NOT NULL DEFAULT 0 CHECK(todays_progress >= 0),
		status          TEXT NOT NULL,
		remarks         TEXT NOT NULL DEFAULT '',
		date            TEXT NOT NULL,
		created_at      TEXT NOT NULL
	)`,

	`ALTER TABLE dpr_records ADD COLUMN comment_count INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE dpr_records ADD COLUMN attachment_count INTEGER NOT NULL DEFAULT 0`,

	`CREATE INDEX IF NOT EXISTS idx_dpr_records_project ON dpr_records(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dpr_records_status ON dpr_records(current_status)`,
	`CREATE INDEX IF NOT EXISTS idx_status_history_record ON status_history(record_id, date)`,
}
