// Package storage provides SQLite-based persistence for run sessions and
// input recordings. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// SessionRecord summarises one run of the platform loop.
type SessionRecord struct {
	ID         int64
	ModuleID   string
	Presenter  string
	Frames     int
	Missed     int
	AudioSkips int
	Resyncs    int
	AvgMs      float64
	WorstMs    float64
	StartedAt  time.Time
	EndedAt    time.Time
}

// RecordingRecord describes a finished input recording on disk.
type RecordingRecord struct {
	ID          int64
	Path        string
	ModuleID    string
	Frames      int
	MemoryBytes int
	CreatedAt   time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			module_id TEXT NOT NULL,
			presenter TEXT NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			missed INTEGER NOT NULL DEFAULT 0,
			audio_skips INTEGER NOT NULL DEFAULT 0,
			resyncs INTEGER NOT NULL DEFAULT 0,
			avg_ms REAL NOT NULL DEFAULT 0,
			worst_ms REAL NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_module_id ON sessions(module_id);

		CREATE TABLE IF NOT EXISTS recordings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			module_id TEXT NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			memory_bytes INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_recordings_path ON recordings(path);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSession records a finished run.
// Returns the ID of the inserted record.
func (s *Store) SaveSession(rec SessionRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO sessions
		 (module_id, presenter, frames, missed, audio_skips, resyncs, avg_ms, worst_ms, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ModuleID,
		rec.Presenter,
		rec.Frames,
		rec.Missed,
		rec.AudioSkips,
		rec.Resyncs,
		rec.AvgMs,
		rec.WorstMs,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.EndedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentSessions retrieves the most recent sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, module_id, presenter, frames, missed, audio_skips, resyncs,
		        avg_ms, worst_ms, started_at, ended_at
		 FROM sessions
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var r SessionRecord
		var startedAt, endedAt any
		if err := rows.Scan(
			&r.ID,
			&r.ModuleID,
			&r.Presenter,
			&r.Frames,
			&r.Missed,
			&r.AudioSkips,
			&r.Resyncs,
			&r.AvgMs,
			&r.WorstMs,
			&startedAt,
			&endedAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.StartedAt = parseTime(startedAt)
		r.EndedAt = parseTime(endedAt)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// ModuleStats contains aggregated statistics for a module.
type ModuleStats struct {
	ModuleID    string
	Sessions    int
	TotalFrames int64
	TotalMissed int64
	AvgMs       float64
	WorstMs     float64
	LastPlayed  time.Time
}

// GetAllModuleStats retrieves statistics for every module that has run.
func (s *Store) GetAllModuleStats() (map[string]*ModuleStats, error) {
	rows, err := s.db.Query(
		`SELECT module_id, COUNT(*), SUM(frames), SUM(missed), AVG(avg_ms), MAX(worst_ms), MAX(started_at)
		 FROM sessions
		 GROUP BY module_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get module stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ModuleStats)
	for rows.Next() {
		var st ModuleStats
		var lastPlayed any
		if err := rows.Scan(&st.ModuleID, &st.Sessions, &st.TotalFrames, &st.TotalMissed, &st.AvgMs, &st.WorstMs, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.ModuleID] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// SaveRecording records a finished input recording.
func (s *Store) SaveRecording(rec RecordingRecord) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO recordings (path, module_id, frames, memory_bytes) VALUES (?, ?, ?, ?)",
		rec.Path, rec.ModuleID, rec.Frames, rec.MemoryBytes,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save recording: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// LatestRecording returns the most recent entry for path, or nil when the
// path was never recorded.
func (s *Store) LatestRecording(path string) (*RecordingRecord, error) {
	var r RecordingRecord
	var createdAt any

	err := s.db.QueryRow(
		`SELECT id, path, module_id, frames, memory_bytes, created_at
		 FROM recordings
		 WHERE path = ?
		 ORDER BY id DESC
		 LIMIT 1`,
		path,
	).Scan(&r.ID, &r.Path, &r.ModuleID, &r.Frames, &r.MemoryBytes, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query recording: %w", err)
	}

	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

// Recordings lists recordings, newest first.
func (s *Store) Recordings(limit int) ([]RecordingRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, path, module_id, frames, memory_bytes, created_at
		 FROM recordings
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query recordings: %w", err)
	}
	defer rows.Close()

	var records []RecordingRecord
	for rows.Next() {
		var r RecordingRecord
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Path, &r.ModuleID, &r.Frames, &r.MemoryBytes, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

const timeLayout = "2006-01-02 15:04:05"

// parseTime handles both time.Time and string datetime columns.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
