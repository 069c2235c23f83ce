package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS tasks (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL,
			subject          TEXT NOT NULL DEFAULT '',
			start_at         TEXT,
			duration_minutes INTEGER NOT NULL DEFAULT 30 CHECK(duration_minutes >= 0),
			completed        INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
			created_at       TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_start ON tasks(start_at);
		CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tasks table: %w", err)
	}

	return nil
}
