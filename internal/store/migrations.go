package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per tracking run
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			port TEXT NOT NULL,
			baud INTEGER NOT NULL,
			frame_width INTEGER NOT NULL,
			frame_height INTEGER NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME
		)`,

		// Detections table - sampled per-frame selection results
		`CREATE TABLE IF NOT EXISTS detections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			frame INTEGER NOT NULL,
			cx REAL NOT NULL,
			cy REAL NOT NULL,
			blob_count INTEGER NOT NULL,
			tier TEXT NOT NULL CHECK(tier IN ('none', 'accepted', 'relaxed', 'fallback')),
			tx_ok INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_detections_session_id ON detections(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_session_tier ON detections(session_id, tier)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
