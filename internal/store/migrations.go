package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Finished race game runs
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			score INTEGER NOT NULL CHECK(score >= 0),
			distance REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			dodges INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Keyboard controller sessions
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			camera_id INTEGER NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			dropped INTEGER NOT NULL DEFAULT 0,
			presses INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// How many frames each rule fired during a session
		`CREATE TABLE IF NOT EXISTS session_rules (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			rule TEXT NOT NULL,
			frames INTEGER NOT NULL,
			PRIMARY KEY (session_id, rule)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_score ON runs(score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
