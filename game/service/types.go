package service

import (
	"time"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
)

// Stop reason codes reported by bulk moves
const (
	StopBlocked       = "blocked"
	StopSolved        = "solved"
	StopAlreadySolved = "already_solved"
)

// Event types
const (
	EventReset   = "reset"
	EventMove    = "move"
	EventBlocked = "blocked"
	EventDecay   = "decay"
	EventSolved  = "solved"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string               `json:"id"`
	ConfigName     string               `json:"config_name"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	GameState      *engine.GameState    `json:"game_state"`
	GameConfig     *engine.PuzzleConfig `json:"game_config"`
	Generated      *GeneratedInfo       `json:"generated,omitempty"`
}

// GenerateRequest describes a puzzle to generate. Zero values fall back to
// the preset.
type GenerateRequest struct {
	Preset   string `json:"preset,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Blocks   string `json:"blocks,omitempty"`
	Seed     int64  `json:"seed,omitempty"`
	MinSteps int    `json:"min_steps,omitempty"`
	MaxSteps int    `json:"max_steps,omitempty"`

	// SaveAs stores the puzzle in the library under this config ID
	SaveAs string `json:"save_as,omitempty"`
}

// GeneratedInfo reports how a generated puzzle was found
type GeneratedInfo struct {
	Preset   string   `json:"preset"`
	Seed     int64    `json:"seed"`
	Attempts int      `json:"attempts"`
	Shortest int      `json:"shortest"`
	Solution []string `json:"solution,omitempty"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	Step      *StepInfo         `json:"step,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked|solved|already_solved
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos engine.Position `json:"start_pos"`
	EndPos   engine.Position `json:"end_pos"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	Solved        bool     `json:"solved"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for one executed move
type StepInfo struct {
	Idx      int               `json:"idx"`
	Dir      string            `json:"dir"`
	From     engine.Position   `json:"from"`
	To       engine.Position   `json:"to"`
	Distance int               `json:"distance"`
	Success  bool              `json:"success"`
	Solved   bool              `json:"solved,omitempty"`
	Decayed  []engine.Position `json:"decayed,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // reset|move|blocked|decay|solved
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position"`
}

// SolveResult reports a shortest solution from a session's current state
type SolveResult struct {
	SessionID string   `json:"session_id"`
	Found     bool     `json:"found"`
	Path      []string `json:"path"`
	Steps     string   `json:"steps"`
	Length    int      `json:"length"`
	MaxSteps  int      `json:"max_steps"`
	Expanded  int      `json:"expanded"`
	Visited   int      `json:"visited,omitempty"`
	Cached    bool     `json:"cached"`
	Elapsed   string   `json:"elapsed"`
	Message   string   `json:"message"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a puzzle in the library
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	MaxSteps    int    `json:"max_steps"`
	Compressed  bool   `json:"compressed,omitempty"`
}
