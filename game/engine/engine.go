package engine

import (
	"fmt"
	"time"
)

// Messages reported in GameState.Message
const (
	MsgWelcome       = "Reach the END tile. Each move slides until something stops you."
	MsgMoved         = "Slid %s to %s"
	MsgBlocked       = "Can't move %s: blocked"
	MsgSolved        = "Solved in %d steps!"
	MsgAlreadySolved = "Puzzle already solved. Reset to play again."
	MsgReset         = "Puzzle reset"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsSolved() bool
	GetPlayerPosition() Position

	// Movement operations
	Move(dir Direction) bool
	BulkMove(moves []Direction) []bool
	CanMove(dir Direction) bool
	GetPossibleMoves() []Direction

	// Configuration
	GetConfig() *PuzzleConfig
	SetConfig(config *PuzzleConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface on top of Simulate
type GameEngine struct {
	state  *GameState
	config *PuzzleConfig
}

// NewEngine creates a new game engine for the given puzzle
func NewEngine(config *PuzzleConfig) (*GameEngine, error) {
	if err := ValidatePuzzleConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{config: config}
	engine.state = newGameState(config)
	return engine, nil
}

func newGameState(config *PuzzleConfig) *GameState {
	state := &GameState{
		Puzzle:       config.PuzzleState.Clone(),
		ConfigName:   config.Name,
		Message:      MsgWelcome,
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
	state.Solved = state.Puzzle.IsSolved()
	refreshDerived(state)
	return state
}

// refreshDerived recomputes the fields that are a pure function of the puzzle
func refreshDerived(state *GameState) {
	state.PossibleMoves = nil
	if !state.Solved {
		for _, dir := range Directions {
			if CanSlide(state.Puzzle, dir) {
				state.PossibleMoves = append(state.PossibleMoves, dir.String())
			}
		}
	}
	state.Board = state.Puzzle.Layout()
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if err := ValidatePuzzle(state.Puzzle); err != nil {
		return err
	}
	if e.config != nil && !sameShape(e.config.Map, state.Puzzle.Map) {
		return fmt.Errorf("%w: state grid does not match config %q", ErrInvalidPuzzle, e.config.Name)
	}
	state.Solved = state.Puzzle.IsSolved()
	refreshDerived(state)
	e.state = state
	return nil
}

func sameShape(a, b Grid) bool {
	return a.Rows() == b.Rows() && a.Cols() == b.Cols()
}

// Reset restores the initial puzzle
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = newGameState(e.config)

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.Message = MsgReset

	return e.state
}

// IsSolved reports whether the player stands on the target
func (e *GameEngine) IsSolved() bool {
	return e.state.Solved
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() Position {
	return e.state.Puzzle.Player
}

// Move slides the player in dir. Moves after the puzzle is solved are rejected.
func (e *GameEngine) Move(dir Direction) bool {
	if e.state.Solved {
		e.state.Message = MsgAlreadySolved
		return false
	}

	from := e.state.Puzzle.Player
	success := Simulate(e.state.Puzzle, dir)
	if success {
		e.state.Steps++
		e.state.Solved = e.state.Puzzle.IsSolved()
	}

	switch {
	case e.state.Solved:
		e.state.Message = fmt.Sprintf(MsgSolved, e.state.Steps)
	case success:
		e.state.Message = fmt.Sprintf(MsgMoved, dir, e.state.Puzzle.Player)
	default:
		e.state.Message = fmt.Sprintf(MsgBlocked, dir)
	}

	e.addMoveToHistory(dir, from, success)
	refreshDerived(e.state)
	return success
}

func (e *GameEngine) addMoveToHistory(dir Direction, from Position, success bool) {
	e.state.TotalMoves++
	e.state.CurrentMovesCount++
	entry := MoveHistoryEntry{
		Action:       dir.String(),
		FromPosition: from,
		ToPosition:   e.state.Puzzle.Player,
		Timestamp:    time.Now().Unix(),
		Success:      success,
		Solved:       e.state.Solved,
		MoveNumber:   e.state.TotalMoves,
	}
	e.state.MoveHistory = append(e.state.MoveHistory, entry)
	e.state.CurrentMoves = append(e.state.CurrentMoves, entry)
}

// BulkMove executes moves in sequence, stopping once the puzzle is solved.
// It returns the outcome of each executed move.
func (e *GameEngine) BulkMove(moves []Direction) []bool {
	results := make([]bool, 0, len(moves))
	for _, dir := range moves {
		if e.IsSolved() {
			break
		}
		results = append(results, e.Move(dir))
	}
	return results
}

// CanMove reports whether a move in dir would be legal
func (e *GameEngine) CanMove(dir Direction) bool {
	return !e.state.Solved && CanSlide(e.state.Puzzle, dir)
}

// GetPossibleMoves returns the legal directions in enumeration order
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// GetConfig returns the puzzle the engine was created from
func (e *GameEngine) GetConfig() *PuzzleConfig {
	return e.config
}

// SetConfig replaces the puzzle and resets the game
func (e *GameEngine) SetConfig(config *PuzzleConfig) error {
	if err := ValidatePuzzleConfig(config); err != nil {
		return err
	}
	e.config = config
	e.state = newGameState(config)
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}
