package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
)

// Entry is a cached search outcome for one puzzle state
type Entry struct {
	Key        string             `json:"key"`
	Found      bool               `json:"found"`
	Path       []engine.Direction `json:"path,omitempty"`
	MaxSteps   int                `json:"max_steps"`
	Expanded   int                `json:"expanded"`
	RecordedAt time.Time          `json:"recorded_at"`
}

// SQLiteIndex stores shortest solutions keyed by puzzle state
type SQLiteIndex struct {
	db *sql.DB
}

// OpenSQLite opens or creates the solution index at path. ":memory:" opens
// a private in-memory index.
func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db, path); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB, path string) error {
	pragmas := []string{"PRAGMA synchronous=NORMAL;"}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL;")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS solutions (
	state_key   TEXT PRIMARY KEY,
	grid_rows   INTEGER NOT NULL,
	grid_cols   INTEGER NOT NULL,
	found       INTEGER NOT NULL,
	steps       TEXT NOT NULL,
	max_steps   INTEGER NOT NULL,
	expanded    INTEGER NOT NULL,
	recorded_at TEXT NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("sqlite schema: %w", err)
	}
	return nil
}

// StateKey hashes the canonical encoding of a puzzle state
func StateKey(state *engine.PuzzleState) string {
	sum := sha256.Sum256([]byte(state.Key()))
	return hex.EncodeToString(sum[:])
}

// Lookup returns a cached answer for a search bounded by maxSteps. A stored
// solution is shortest, so it answers every bound: found when it fits,
// not found otherwise. A stored failure answers only bounds it covers.
func (s *SQLiteIndex) Lookup(ctx context.Context, state *engine.PuzzleState, maxSteps int) (Entry, bool, error) {
	key := StateKey(state)

	var (
		found      int
		steps      string
		entry      = Entry{Key: key}
		recordedAt string
	)
	row := s.db.QueryRowContext(ctx, `SELECT found, steps, max_steps, expanded, recorded_at FROM solutions WHERE state_key = ?`, key)
	if err := row.Scan(&found, &steps, &entry.MaxSteps, &entry.Expanded, &recordedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("lookup solution: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
		entry.RecordedAt = t
	}

	if found == 0 {
		if maxSteps > entry.MaxSteps {
			return Entry{}, false, nil
		}
		return entry, true, nil
	}

	path, err := engine.ParseDirections(steps)
	if err != nil {
		return Entry{}, false, fmt.Errorf("stored solution for %s: %w", key, err)
	}
	if len(path) > maxSteps {
		entry.MaxSteps = maxSteps
		return entry, true, nil
	}
	entry.Found = true
	entry.Path = path
	return entry, true, nil
}

// Record stores a search outcome. A solution replaces any stored failure; a
// failure only widens a previously stored failure bound.
func (s *SQLiteIndex) Record(ctx context.Context, state *engine.PuzzleState, maxSteps int, path []engine.Direction, found bool, expanded int) error {
	key := StateKey(state)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var err error
	if found {
		_, err = s.db.ExecContext(ctx, `
INSERT INTO solutions (state_key, grid_rows, grid_cols, found, steps, max_steps, expanded, recorded_at)
VALUES (?, ?, ?, 1, ?, ?, ?, ?)
ON CONFLICT(state_key) DO UPDATE SET
	found = 1, steps = excluded.steps, max_steps = excluded.max_steps,
	expanded = excluded.expanded, recorded_at = excluded.recorded_at`,
			key, state.Map.Rows(), state.Map.Cols(), engine.FormatDirections(path), maxSteps, expanded, now)
	} else {
		_, err = s.db.ExecContext(ctx, `
INSERT INTO solutions (state_key, grid_rows, grid_cols, found, steps, max_steps, expanded, recorded_at)
VALUES (?, ?, ?, 0, '', ?, ?, ?)
ON CONFLICT(state_key) DO UPDATE SET
	max_steps = excluded.max_steps, expanded = excluded.expanded, recorded_at = excluded.recorded_at
WHERE solutions.found = 0 AND solutions.max_steps < excluded.max_steps`,
			key, state.Map.Rows(), state.Map.Cols(), maxSteps, expanded, now)
	}
	if err != nil {
		return fmt.Errorf("record solution: %w", err)
	}
	return nil
}

// Stats summarises the index contents
type Stats struct {
	Entries  int `json:"entries"`
	Solved   int `json:"solved"`
	Unsolved int `json:"unsolved"`
}

// Stats counts stored entries
func (s *SQLiteIndex) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(found), 0) FROM solutions`)
	if err := row.Scan(&st.Entries, &st.Solved); err != nil {
		return Stats{}, fmt.Errorf("index stats: %w", err)
	}
	st.Unsolved = st.Entries - st.Solved
	return st, nil
}

// Close releases the database
func (s *SQLiteIndex) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
