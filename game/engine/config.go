package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidPuzzle is returned when a puzzle violates the grid preconditions
var ErrInvalidPuzzle = errors.New("invalid puzzle")

// ValidatePuzzle checks the preconditions Simulate and search rely on: a
// rectangular grid of at least MinGridSize in each dimension, and player and
// target on enterable in-bounds cells.
func ValidatePuzzle(state *PuzzleState) error {
	if state == nil {
		return fmt.Errorf("%w: puzzle is nil", ErrInvalidPuzzle)
	}

	rows, cols := state.Map.Rows(), state.Map.Cols()
	if rows < MinGridSize || rows > MaxGridSize {
		return fmt.Errorf("%w: rows must be between %d and %d, got %d", ErrInvalidPuzzle, MinGridSize, MaxGridSize, rows)
	}
	if cols < MinGridSize || cols > MaxGridSize {
		return fmt.Errorf("%w: columns must be between %d and %d, got %d", ErrInvalidPuzzle, MinGridSize, MaxGridSize, cols)
	}
	for i, row := range state.Map {
		if len(row) != cols {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidPuzzle, i, len(row), cols)
		}
		for j, tile := range row {
			if tile > Sticky {
				return fmt.Errorf("%w: unknown tile %d at (%d,%d)", ErrInvalidPuzzle, tile, i, j)
			}
		}
	}

	if !state.Map.InBounds(state.Player) {
		return fmt.Errorf("%w: player %s is out of bounds", ErrInvalidPuzzle, state.Player)
	}
	if !state.Map.InBounds(state.Target) {
		return fmt.Errorf("%w: target %s is out of bounds", ErrInvalidPuzzle, state.Target)
	}
	if tile := state.Map.At(state.Player); tile.IsHardObstacle() {
		return fmt.Errorf("%w: player %s stands on a %s tile", ErrInvalidPuzzle, state.Player, tile)
	}
	if tile := state.Map.At(state.Target); tile.IsHardObstacle() {
		return fmt.Errorf("%w: target %s is a %s tile", ErrInvalidPuzzle, state.Target, tile)
	}

	return nil
}

// IsBordered reports whether every edge cell is a wall. Slides on bordered
// grids can never leave the grid.
func IsBordered(grid Grid) bool {
	rows, cols := grid.Rows(), grid.Cols()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			edge := r == 0 || r == rows-1 || c == 0 || c == cols-1
			if edge && grid[r][c] != Wall {
				return false
			}
		}
	}
	return true
}

// ValidatePuzzleConfig validates a puzzle library entry
func ValidatePuzzleConfig(config *PuzzleConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.MaxSteps < 0 {
		return fmt.Errorf("config validation: max_steps must not be negative, got %d", config.MaxSteps)
	}
	if err := ValidatePuzzle(&config.PuzzleState); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}
