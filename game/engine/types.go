package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tile represents the marker occupying a grid cell. The zero value is an empty cell.
type Tile uint8

const (
	TileNone Tile = iota
	Wall
	Trap
	Loose
	Sticky

	// Validation constants
	MinGridSize     = 3
	MaxGridSize     = 64
	DefaultMaxSteps = 255
	MaxBulkMoves    = 100
)

var tileNames = map[Tile]string{
	Wall:   "wall",
	Trap:   "trap",
	Loose:  "loose",
	Sticky: "sticky",
}

// Tiles lists every non-empty tile kind.
var Tiles = []Tile{Wall, Trap, Loose, Sticky}

// String returns the lowercase tile name, or "empty" for TileNone.
func (t Tile) String() string {
	if name, ok := tileNames[t]; ok {
		return name
	}
	return "empty"
}

// IsHardObstacle reports whether the tile blocks entry outright.
func (t Tile) IsHardObstacle() bool {
	return t == Wall || t == Loose
}

// ParseTile converts a tile name to a Tile. "empty" and "" yield TileNone.
// The legacy names piston, sand and cobweb are accepted for trap, loose and sticky.
func ParseTile(name string) (Tile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "empty", "none":
		return TileNone, nil
	case "wall":
		return Wall, nil
	case "trap", "piston":
		return Trap, nil
	case "loose", "sand":
		return Loose, nil
	case "sticky", "cobweb":
		return Sticky, nil
	}
	return TileNone, fmt.Errorf("unknown tile %q", name)
}

// MarshalJSON encodes empty cells as null and tiles by name.
func (t Tile) MarshalJSON() ([]byte, error) {
	if t == TileNone {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts null or a tile name.
func (t *Tile) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = TileNone
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseTile(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Grid is a rectangular array of cells indexed by [row][col]
type Grid [][]Tile

// NewGrid creates an empty grid of the given size
func NewGrid(rows, cols int) Grid {
	grid := make(Grid, rows)
	for i := range grid {
		grid[i] = make([]Tile, cols)
	}
	return grid
}

// Rows returns the number of rows
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the number of columns
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// At returns the tile at pos
func (g Grid) At(pos Position) Tile {
	return g[pos.Row][pos.Col]
}

// Set places a tile at pos
func (g Grid) Set(pos Position, tile Tile) {
	g[pos.Row][pos.Col] = tile
}

// InBounds reports whether pos addresses a cell of the grid
func (g Grid) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < g.Rows() && pos.Col >= 0 && pos.Col < len(g[pos.Row])
}

// Clone returns a deep copy of the grid
func (g Grid) Clone() Grid {
	clone := make(Grid, len(g))
	for i, row := range g {
		clone[i] = append([]Tile(nil), row...)
	}
	return clone
}

// Equal reports whether both grids have identical shape and contents
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if len(g[i]) != len(other[i]) {
			return false
		}
		for j := range g[i] {
			if g[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Count returns how many cells hold the given tile
func (g Grid) Count(tile Tile) int {
	count := 0
	for _, row := range g {
		for _, cell := range row {
			if cell == tile {
				count++
			}
		}
	}
	return count
}

// Position represents row,col coordinates. It is encoded in JSON as [row, col].
type Position struct {
	Row int
	Col int
}

// String formats the position as (row,col)
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Add returns p shifted by the direction's delta
func (p Position) Add(dir Direction) Position {
	d := dir.Delta()
	return Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
}

// MarshalJSON encodes the position as a two-element array
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.Row, p.Col})
}

// UnmarshalJSON decodes a two-element array
func (p *Position) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("position must have 2 coordinates, got %d", len(pair))
	}
	p.Row, p.Col = pair[0], pair[1]
	return nil
}

// PuzzleState is the full searchable configuration: grid contents plus the
// player and target positions. Two states are equal only if all three match.
type PuzzleState struct {
	Map    Grid     `json:"map"`
	Player Position `json:"player"`
	Target Position `json:"target"`
}

// Clone returns a deep copy so the copy can be mutated independently
func (s *PuzzleState) Clone() *PuzzleState {
	return &PuzzleState{
		Map:    s.Map.Clone(),
		Player: s.Player,
		Target: s.Target,
	}
}

// Equal compares grid contents and both positions
func (s *PuzzleState) Equal(other *PuzzleState) bool {
	if other == nil {
		return false
	}
	return s.Player == other.Player && s.Target == other.Target && s.Map.Equal(other.Map)
}

// Key returns the canonical encoding of the state: dimensions, the row-major
// tile sequence and both positions. Equal states always have equal keys.
func (s *PuzzleState) Key() string {
	rows, cols := s.Map.Rows(), s.Map.Cols()
	var b strings.Builder
	b.Grow(rows*cols + 32)
	fmt.Fprintf(&b, "%dx%d|", rows, cols)
	for _, row := range s.Map {
		for _, cell := range row {
			b.WriteByte('0' + byte(cell))
		}
	}
	fmt.Fprintf(&b, "|%d,%d|%d,%d", s.Player.Row, s.Player.Col, s.Target.Row, s.Target.Col)
	return b.String()
}

// IsSolved reports whether the player stands on the target
func (s *PuzzleState) IsSolved() bool {
	return s.Player == s.Target
}

// PuzzleConfig is a named puzzle as stored in the puzzle library. Library
// files may omit the name; it then defaults to the file's base name.
type PuzzleConfig struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MaxSteps    int    `json:"max_steps,omitempty"`
	Seed        int64  `json:"seed,omitempty"`
	PuzzleState
}

// StepLimit returns the configured step bound or DefaultMaxSteps
func (c *PuzzleConfig) StepLimit() int {
	if c.MaxSteps > 0 {
		return c.MaxSteps
	}
	return DefaultMaxSteps
}

// GameState represents the session-facing game state
type GameState struct {
	Puzzle      *PuzzleState       `json:"puzzle"`
	Solved      bool               `json:"solved"`
	Message     string             `json:"message"`
	ConfigName  string             `json:"config_name"`
	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// Steps counts legal slides since the last reset
	Steps int `json:"steps"`

	// CurrentMoves tracks only the moves since the last reset, while MoveHistory
	// stays cumulative across resets.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	PossibleMoves []string `json:"possible_moves,omitempty"`
	Board         []string `json:"board,omitempty"`
}

// Clone returns a deep copy that shares no memory with s
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	c := *s
	if s.Puzzle != nil {
		c.Puzzle = s.Puzzle.Clone()
	}
	c.MoveHistory = cloneSlice(s.MoveHistory)
	c.CurrentMoves = cloneSlice(s.CurrentMoves)
	c.PossibleMoves = cloneSlice(s.PossibleMoves)
	c.Board = cloneSlice(s.Board)
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action       string   `json:"action"`
	FromPosition Position `json:"from_position"`
	ToPosition   Position `json:"to_position"`
	Timestamp    int64    `json:"timestamp"`
	Success      bool     `json:"success"`
	Solved       bool     `json:"solved,omitempty"`
	MoveNumber   int      `json:"move_number"`
}
