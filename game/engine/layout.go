package engine

import (
	"fmt"
	"strings"
)

// Layout characters used by text puzzle layouts
const (
	LayoutEmpty  = '.'
	LayoutWall   = '#'
	LayoutTrap   = '*'
	LayoutLoose  = ':'
	LayoutSticky = '%'
	LayoutPlayer = 'P'
	LayoutTarget = 'T'
)

var layoutTiles = map[rune]Tile{
	LayoutEmpty:  TileNone,
	' ':          TileNone,
	LayoutWall:   Wall,
	LayoutTrap:   Trap,
	LayoutLoose:  Loose,
	LayoutSticky: Sticky,
}

// ParseLayout builds a puzzle from rows of layout characters:
// '#' wall, '*' trap, ':' loose, '%' sticky, '.' empty, 'P' player, 'T' target.
func ParseLayout(rows []string) (*PuzzleState, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: layout is empty", ErrInvalidPuzzle)
	}

	width := len([]rune(rows[0]))
	grid := make(Grid, len(rows))
	var player, target *Position

	for r, line := range rows {
		runes := []rune(line)
		if len(runes) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidPuzzle, r, len(runes), width)
		}
		grid[r] = make([]Tile, width)
		for c, ch := range runes {
			pos := Position{Row: r, Col: c}
			switch ch {
			case LayoutPlayer:
				if player != nil {
					return nil, fmt.Errorf("%w: more than one player at %s", ErrInvalidPuzzle, pos)
				}
				player = &pos
			case LayoutTarget:
				if target != nil {
					return nil, fmt.Errorf("%w: more than one target at %s", ErrInvalidPuzzle, pos)
				}
				target = &pos
			default:
				tile, ok := layoutTiles[ch]
				if !ok {
					return nil, fmt.Errorf("%w: invalid character '%c' at row %d, col %d", ErrInvalidPuzzle, ch, r, c)
				}
				grid[r][c] = tile
			}
		}
	}

	if player == nil {
		return nil, fmt.Errorf("%w: layout has no player (P)", ErrInvalidPuzzle)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: layout has no target (T)", ErrInvalidPuzzle)
	}

	return &PuzzleState{Map: grid, Player: *player, Target: *target}, nil
}

// MustParseLayout is ParseLayout for fixtures known to be valid
func MustParseLayout(rows ...string) *PuzzleState {
	state, err := ParseLayout(rows)
	if err != nil {
		panic(err)
	}
	return state
}

// Layout renders the puzzle back into layout rows. When player and target
// share a cell, the player wins.
func (s *PuzzleState) Layout() []string {
	rows := make([]string, len(s.Map))
	for r, row := range s.Map {
		var b strings.Builder
		for c, tile := range row {
			pos := Position{Row: r, Col: c}
			switch {
			case pos == s.Player:
				b.WriteRune(LayoutPlayer)
			case pos == s.Target:
				b.WriteRune(LayoutTarget)
			default:
				b.WriteRune(tileChar(tile))
			}
		}
		rows[r] = b.String()
	}
	return rows
}

func tileChar(tile Tile) rune {
	switch tile {
	case Wall:
		return LayoutWall
	case Trap:
		return LayoutTrap
	case Loose:
		return LayoutLoose
	case Sticky:
		return LayoutSticky
	}
	return LayoutEmpty
}
