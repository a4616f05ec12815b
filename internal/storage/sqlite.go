// Package storage provides SQLite-based persistence for the move journal.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("storage: session not found")

// Store manages the SQLite database connection for the journal.
type Store struct {
	db *sql.DB
}

// Session is one recorded game.
type Session struct {
	ID         string
	Preset     string
	Seed       int64
	Size       int
	Colors     int
	StartedAt  time.Time
	EndedAt    time.Time // Zero while the game is running or was abandoned
	FinalScore int
	GameOver   bool
	MoveCount  int
}

// Finished reports whether FinishSession was called.
func (s Session) Finished() bool {
	return !s.EndedAt.IsZero()
}

// MoveEntry is one swap attempt within a session.
type MoveEntry struct {
	SessionID  string
	Seq        int
	ARow, ACol int
	BRow, BCol int
	Kind       string // "reverted" or "resolved"
	Cascades   int
	ScoreDelta int
	Score      int
}

// Stats contains aggregated statistics over all sessions.
type Stats struct {
	Sessions   int
	Finished   int
	TotalMoves int
	HighScore  int
	AvgScore   float64
	LastPlayed time.Time
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
			id TEXT PRIMARY KEY,
			preset TEXT NOT NULL,
			seed INTEGER NOT NULL,
			size INTEGER NOT NULL,
			colors INTEGER NOT NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			final_score INTEGER NOT NULL DEFAULT 0,
			game_over INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);

		CREATE TABLE IF NOT EXISTS moves (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			a_row INTEGER NOT NULL,
			a_col INTEGER NOT NULL,
			b_row INTEGER NOT NULL,
			b_col INTEGER NOT NULL,
			kind TEXT NOT NULL,
			cascades INTEGER NOT NULL DEFAULT 0,
			score_delta INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (session_id, seq)
		);
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

// CreateSession starts a new journal session with a fresh UUID.
func (s *Store) CreateSession(preset string, seed int64, size, colors int) (Session, error) {
	sess := Session{
		ID:        uuid.NewString(),
		Preset:    preset,
		Seed:      seed,
		Size:      size,
		Colors:    colors,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, preset, seed, size, colors, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Preset, sess.Seed, sess.Size, sess.Colors, sess.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return Session{}, fmt.Errorf("storage: cannot create session: %w", err)
	}
	return sess, nil
}

// AppendMove records one swap attempt.
func (s *Store) AppendMove(m MoveEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO moves
		 (session_id, seq, a_row, a_col, b_row, b_col, kind, cascades, score_delta, score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.SessionID, m.Seq, m.ARow, m.ACol, m.BRow, m.BCol, m.Kind, m.Cascades, m.ScoreDelta, m.Score,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot append move %d: %w", m.Seq, err)
	}
	return nil
}

// FinishSession stores the final score and marks the session ended.
func (s *Store) FinishSession(id string, finalScore int, gameOver bool) error {
	res, err := s.db.Exec(
		`UPDATE sessions SET ended_at = ?, final_score = ?, game_over = ? WHERE id = ?`,
		time.Now().UTC().Format(timeLayout), finalScore, gameOver, id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot finish session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot finish session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

const sessionColumns = `s.id, s.preset, s.seed, s.size, s.colors, s.started_at, s.ended_at,
	s.final_score, s.game_over, (SELECT COUNT(*) FROM moves m WHERE m.session_id = s.id)`

// Session retrieves a session by ID.
func (s *Store) Session(id string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions s WHERE s.id = ?`,
		id,
	)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session: %w", err)
	}
	return sess, nil
}

// RecentSessions returns the most recently started sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+sessionColumns+`
		 FROM sessions s
		 ORDER BY s.started_at DESC, s.rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sessions = append(sessions, *sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return sessions, nil
}

// Moves returns all moves of a session in order.
func (s *Store) Moves(sessionID string) ([]MoveEntry, error) {
	rows, err := s.db.Query(
		`SELECT session_id, seq, a_row, a_col, b_row, b_col, kind, cascades, score_delta, score
		 FROM moves
		 WHERE session_id = ?
		 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query moves: %w", err)
	}
	defer rows.Close()

	var moves []MoveEntry
	for rows.Next() {
		var m MoveEntry
		if err := rows.Scan(&m.SessionID, &m.Seq, &m.ARow, &m.ACol, &m.BRow, &m.BCol,
			&m.Kind, &m.Cascades, &m.ScoreDelta, &m.Score); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		moves = append(moves, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return moves, nil
}

// DeleteSession removes a session and its moves.
func (s *Store) DeleteSession(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec("DELETE FROM moves WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete moves: %w", err)
	}
	res, err := tx.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tx.Commit()
}

// GetStats retrieves aggregated statistics over all sessions.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN ended_at IS NOT NULL THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(final_score), 0),
		        COALESCE(AVG(final_score), 0),
		        MAX(started_at)
		 FROM sessions`,
	).Scan(&stats.Sessions, &stats.Finished, &stats.HighScore, &stats.AvgScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	if err := s.db.QueryRow("SELECT COUNT(*) FROM moves").Scan(&stats.TotalMoves); err != nil {
		return nil, fmt.Errorf("storage: cannot count moves: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var sess Session
	var startedAt, endedAt any
	if err := row.Scan(&sess.ID, &sess.Preset, &sess.Seed, &sess.Size, &sess.Colors,
		&startedAt, &endedAt, &sess.FinalScore, &sess.GameOver, &sess.MoveCount); err != nil {
		return nil, err
	}
	sess.StartedAt = parseTime(startedAt)
	sess.EndedAt = parseTime(endedAt)
	return &sess, nil
}

const timeLayout = "2006-01-02 15:04:05.000"

// parseTime handles both time.Time and string datetimes; NULL yields zero.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{timeLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
