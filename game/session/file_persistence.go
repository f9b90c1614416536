package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/slidegame/game/config"
	"github.com/wricardo/mcp-training/slidegame/game/engine"
	"github.com/wricardo/mcp-training/slidegame/game/service"
)

// FilePersistence implements SessionPersistence using one file per session
type FilePersistence struct {
	sessionsDir   string
	configManager service.ConfigManager
	compress      bool
}

// FileOption configures FilePersistence
type FileOption func(*FilePersistence)

// WithCompression stores snapshots as zstd-compressed .json.zst files
func WithCompression(enabled bool) FileOption {
	return func(fp *FilePersistence) {
		fp.compress = enabled
	}
}

// NewFilePersistence creates a new file-based session persistence layer
func NewFilePersistence(sessionsDir string, configManager service.ConfigManager, opts ...FileOption) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	fp := &FilePersistence{
		sessionsDir:   sessionsDir,
		configManager: configManager,
	}
	for _, opt := range opts {
		opt(fp)
	}
	return fp, nil
}

// Save persists a session snapshot
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := PersistedSessionData{
		ID:             session.ID,
		ConfigName:     session.ConfigID,
		Puzzle:         session.Config,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
	}

	if err := config.WritePuzzleFile(fp.getFilePath(session.ID, fp.compress), data); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	// Only one encoding of a session may exist
	stale := fp.getFilePath(session.ID, !fp.compress)
	if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale session file: %w", err)
	}
	return nil
}

// Load retrieves a session snapshot
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	filePath, ok := fp.find(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	raw, err := config.ReadPuzzleFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.GameState == nil || data.GameState.Puzzle == nil {
		return nil, fmt.Errorf("session %s has no game state", id)
	}

	puzzle := data.Puzzle
	if puzzle == nil {
		if fp.configManager == nil {
			return nil, fmt.Errorf("session %s references config '%s' but no config manager is set", id, data.ConfigName)
		}
		if puzzle, err = fp.configManager.LoadConfig(data.ConfigName); err != nil {
			return nil, fmt.Errorf("failed to load config '%s': %w", data.ConfigName, err)
		}
	}

	gameEngine, err := engine.NewEngine(puzzle)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}
	if err := gameEngine.SetState(data.GameState); err != nil {
		return nil, fmt.Errorf("failed to set game state: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		ConfigID:       data.ConfigName,
		Engine:         gameEngine,
		Config:         puzzle,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// Delete removes every stored encoding of a session
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrSessionNotFound
	}

	var errs []error
	for _, compressed := range []bool{false, true} {
		if err := os.Remove(fp.getFilePath(id, compressed)); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ListAll returns all persisted session IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	seen := make(map[string]bool)
	var sessionIDs []string
	for _, entry := range entries {
		if entry.IsDir() || !config.IsPuzzleFile(entry.Name()) {
			continue
		}
		id := config.ConfigID(entry.Name())
		if !seen[id] {
			seen[id] = true
			sessionIDs = append(sessionIDs, id)
		}
	}

	return sessionIDs, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	_, ok := fp.find(id)
	return ok
}

// find locates a session file, preferring the configured encoding
func (fp *FilePersistence) find(id string) (string, bool) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", false
	}
	for _, compressed := range []bool{fp.compress, !fp.compress} {
		p := fp.getFilePath(id, compressed)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// getFilePath returns the full file path for a session ID
func (fp *FilePersistence) getFilePath(id string, compressed bool) string {
	ext := config.JSONExt
	if compressed {
		ext = config.CompressedExt
	}
	return filepath.Join(fp.sessionsDir, id+ext)
}
