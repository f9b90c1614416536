package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
	"github.com/wricardo/mcp-training/slidegame/game/generator"
	"github.com/wricardo/mcp-training/slidegame/game/solver"
)

// Option configures the game service
type Option func(*gameServiceImpl)

// WithSolutionIndex caches Solve results in idx
func WithSolutionIndex(idx SolutionIndex) Option {
	return func(s *gameServiceImpl) {
		s.index = idx
	}
}

// WithPresets replaces the built-in generation presets
func WithPresets(presets generator.Presets) Option {
	return func(s *gameServiceImpl) {
		s.presets = presets
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	index    SolutionIndex
	presets  generator.Presets
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		presets:  generator.BuiltinPresets(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	configID := sess.ConfigID
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Clone(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session from a library puzzle
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.PuzzleConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	session, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(session), nil
}

// GenerateSession generates a solvable puzzle and opens a session on it
func (s *gameServiceImpl) GenerateSession(ctx context.Context, req GenerateRequest) (*SessionInfo, error) {
	preset, err := s.presets.Get(req.Preset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	opts := preset.Options(req.Seed)
	if req.Width > 0 {
		opts.Width = req.Width
	}
	if req.Height > 0 {
		opts.Height = req.Height
	}
	if req.MinSteps > 0 {
		opts.MinSteps = req.MinSteps
	}
	if req.MaxSteps > 0 {
		opts.MaxSteps = req.MaxSteps
	}
	if req.Blocks != "" {
		if opts.Tiles, err = generator.ParseTileChances(req.Blocks); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	// Generation runs without the service lock; it only touches its own state
	puzzle, err := generator.GenerateSolvable(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate puzzle: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	config := &engine.PuzzleConfig{
		Name:        fmt.Sprintf("%s-%d", preset.Name, puzzle.Seed),
		Description: fmt.Sprintf("Generated %s puzzle (%dx%d)", preset.Name, opts.Width, opts.Height),
		MaxSteps:    opts.MaxSteps,
		Seed:        puzzle.Seed,
		PuzzleState: *puzzle.State,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	configID := config.Name
	if req.SaveAs != "" {
		if err := s.configs.SaveConfig(req.SaveAs, config); err != nil {
			return nil, fmt.Errorf("failed to save generated puzzle: %w", err)
		}
		configID = req.SaveAs
	}

	session, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if s.index != nil && puzzle.Solved {
		if err := s.index.Record(ctx, puzzle.State, opts.MaxSteps, puzzle.Solution, true, 0); err != nil {
			log.Printf("Warning: failed to index generated puzzle %d: %v", puzzle.Seed, err)
		}
	}

	info := s.sessionInfo(session)
	info.Generated = &GeneratedInfo{
		Preset:   preset.Name,
		Seed:     puzzle.Seed,
		Attempts: puzzle.Attempts,
		Shortest: len(puzzle.Solution),
		Solution: engine.DirectionNames(puzzle.Solution),
	}
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	// Write lock: the access time is updated
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// ParseMoves accepts direction names ("up") and key strings ("w", "wdsa")
func ParseMoves(tokens []string) ([]engine.Direction, error) {
	var dirs []engine.Direction
	for i, token := range tokens {
		if dir, err := engine.ParseDirectionToken(token); err == nil {
			dirs = append(dirs, dir)
			continue
		}
		keys, err := engine.ParseDirections(token)
		if err != nil || len(keys) == 0 {
			if err == nil {
				err = &engine.InvalidInputError{Token: token}
			}
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		dirs = append(dirs, keys...)
	}
	return dirs, nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	dir, err := engine.ParseDirectionToken(direction)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, GameEvent{
			Type:      EventReset,
			Message:   engine.MsgReset,
			Timestamp: time.Now(),
			Position:  sess.Engine.GetPlayerPosition(),
		})
	}

	step := executeStep(sess.Engine, dir, 1)
	state := sess.Engine.GetState().Clone()

	result := &MoveResult{
		Success:   step.Success,
		GameState: state,
		Message:   state.Message,
		Events:    append(events, stepEvents(step, state.Message)...),
		Step:      &step,
	}

	// Auto-save session after move
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after move: %v", sessionID, err)
	}

	return result, nil
}

// executeStep runs one move and describes what changed
func executeStep(eng *engine.GameEngine, dir engine.Direction, idx int) StepInfo {
	before := eng.GetState().Puzzle.Clone()
	success := eng.Move(dir)
	after := eng.GetState().Puzzle

	return StepInfo{
		Idx:      idx,
		Dir:      dir.String(),
		From:     before.Player,
		To:       after.Player,
		Distance: engine.ManhattanDistance(before.Player, after.Player),
		Success:  success,
		Solved:   eng.IsSolved(),
		Decayed:  changedCells(before.Map, after.Map),
	}
}

// changedCells lists positions whose tile differs between two grids of the same shape
func changedCells(before, after engine.Grid) []engine.Position {
	var changed []engine.Position
	for r := range before {
		for c := range before[r] {
			if before[r][c] != after[r][c] {
				changed = append(changed, engine.Position{Row: r, Col: c})
			}
		}
	}
	return changed
}

func stepEvents(step StepInfo, message string) []GameEvent {
	now := time.Now()
	if !step.Success {
		return []GameEvent{{Type: EventBlocked, Message: message, Timestamp: now, Position: step.From}}
	}

	events := []GameEvent{{
		Type:      EventMove,
		Message:   fmt.Sprintf(engine.MsgMoved, step.Dir, step.To),
		Timestamp: now,
		Position:  step.To,
	}}
	for _, pos := range step.Decayed {
		events = append(events, GameEvent{
			Type:      EventDecay,
			Message:   fmt.Sprintf("Tile at %s changed", pos),
			Timestamp: now,
			Position:  pos,
		})
	}
	if step.Solved {
		events = append(events, GameEvent{Type: EventSolved, Message: message, Timestamp: now, Position: step.To})
	}
	return events
}

// BulkMove executes multiple moves in sequence. It stops at the first blocked
// move or once the puzzle is solved.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	dirs, err := ParseMoves(moves)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(dirs),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, GameEvent{
			Type:      EventReset,
			Message:   engine.MsgReset,
			Timestamp: time.Now(),
			Position:  sess.Engine.GetPlayerPosition(),
		})
	}
	result.StartPos = sess.Engine.GetPlayerPosition()

	// Limit moves to prevent abuse
	if len(dirs) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		dirs = dirs[:engine.MaxBulkMoves]
	}

	for i, dir := range dirs {
		if sess.Engine.IsSolved() {
			if result.MovesExecuted == 0 {
				result.Success = false
				result.StopReasonCode = StopAlreadySolved
				result.StoppedReason = engine.MsgAlreadySolved
				result.StoppedOnMove = i + 1
			}
			break
		}

		step := executeStep(sess.Engine, dir, i+1)
		message := sess.Engine.GetState().Message
		result.Events = append(result.Events, stepEvents(step, message)...)

		if !step.Success {
			result.Success = false
			result.StopReasonCode = StopBlocked
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, dir)
			result.StoppedOnMove = i + 1
			break
		}

		result.MovesExecuted++
		result.Steps = append(result.Steps, step)

		if step.Solved {
			result.StopReasonCode = StopSolved
			if i+1 < len(dirs) {
				result.StoppedReason = fmt.Sprintf("solved on move %d", i+1)
				result.StoppedOnMove = i + 1
			}
			break
		}
	}

	endState := sess.Engine.GetState().Clone()
	result.GameState = endState
	result.EndPos = endState.Puzzle.Player
	result.Solved = endState.Solved
	result.Message = endState.Message
	result.PossibleMoves = endState.PossibleMoves

	// Auto-save session after bulk moves
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after bulk moves: %v", sessionID, err)
	}

	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset().Clone()

	// Auto-save session after reset
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after reset: %v", sessionID, err)
	}

	return state, nil
}

// Solve searches for a shortest solution from the session's current state.
// maxSteps <= 0 uses the puzzle's step limit. Results are served from and
// recorded in the solution index when one is configured.
func (s *gameServiceImpl) Solve(ctx context.Context, sessionID string, maxSteps int) (*SolveResult, error) {
	s.mu.RLock()
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		s.mu.RUnlock()
		return nil, fmt.Errorf("session not found: %w", err)
	}
	start := sess.Engine.GetState().Puzzle.Clone()
	if maxSteps <= 0 {
		maxSteps = sess.Config.StepLimit()
	}
	s.mu.RUnlock()

	result := &SolveResult{SessionID: sess.ID, MaxSteps: maxSteps}

	if s.index != nil {
		entry, ok, err := s.index.Lookup(ctx, start, maxSteps)
		if err != nil {
			log.Printf("Warning: solution index lookup failed: %v", err)
		} else if ok {
			result.Cached = true
			result.Expanded = entry.Expanded
			result.Elapsed = "0s"
			fillSolution(result, entry.Path, entry.Found)
			return result, nil
		}
	}

	res, err := solver.New().SolveContext(ctx, start, maxSteps)
	if err != nil {
		return nil, fmt.Errorf("search aborted after %d states: %w", res.Expanded, err)
	}
	result.Expanded = res.Expanded
	result.Visited = res.Visited
	result.Elapsed = res.Elapsed.String()
	fillSolution(result, res.Path, res.Found)

	if s.index != nil {
		if err := s.index.Record(ctx, start, maxSteps, res.Path, res.Found, res.Expanded); err != nil {
			log.Printf("Warning: failed to record solution for session %s: %v", sess.ID, err)
		}
	}
	return result, nil
}

func fillSolution(result *SolveResult, path []engine.Direction, found bool) {
	result.Found = found
	if !found {
		result.Path = []string{}
		result.Message = "No solution!"
		return
	}
	result.Path = engine.DirectionNames(path)
	result.Steps = engine.FormatDirections(path)
	result.Length = len(path)
	result.Message = fmt.Sprintf("A possible solution: [%s]", strings.Join(result.Path, ", "))
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	// Write lock: the access time is updated
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState().Clone(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append([]engine.MoveHistoryEntry(nil), history[start:end]...)
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns the puzzle library
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific puzzle
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a puzzle to the library
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	return s.configs.SaveConfig(configName, config)
}
