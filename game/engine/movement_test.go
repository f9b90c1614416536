package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateScenarios(t *testing.T) {
	tests := []struct {
		name       string
		layout     []string
		dir        Direction
		wantMoved  bool
		wantPlayer Position
		wantTiles  map[Position]Tile
	}{
		{
			name:       "direct slide onto target",
			layout:     []string{"####", "#PT#", "####"},
			dir:        Right,
			wantMoved:  true,
			wantPlayer: Position{1, 2},
		},
		{
			name:       "trap decays after being crossed",
			layout:     []string{"#####", "#P*T#", "#####"},
			dir:        Right,
			wantMoved:  true,
			wantPlayer: Position{1, 3},
			wantTiles:  map[Position]Tile{{1, 2}: Wall},
		},
		{
			name:       "sticky tile halts the slide",
			layout:     []string{"######", "#P%.T#", "######"},
			dir:        Right,
			wantMoved:  true,
			wantPlayer: Position{1, 2},
			wantTiles:  map[Position]Tile{{1, 2}: Sticky},
		},
		{
			name:       "slide stops in front of a wall",
			layout:     []string{"######", "#P..#T", "######"},
			dir:        Right,
			wantMoved:  true,
			wantPlayer: Position{1, 3},
		},
		{
			name:       "wall blocks the first step",
			layout:     []string{"####", "#P##", "#.T#", "####"},
			dir:        Right,
			wantMoved:  false,
			wantPlayer: Position{1, 1},
		},
		{
			name:       "loose tile blocks the first step",
			layout:     []string{"#####", "#P:T#", "#####"},
			dir:        Right,
			wantMoved:  false,
			wantPlayer: Position{1, 1},
			wantTiles:  map[Position]Tile{{1, 2}: Loose},
		},
		{
			name:       "loose tile ahead erodes before it can block",
			layout:     []string{"######", "#P.:T#", "######"},
			dir:        Right,
			wantMoved:  true,
			wantPlayer: Position{1, 4},
			wantTiles:  map[Position]Tile{{1, 3}: TileNone},
		},
		{
			name:       "loose tiles beside the path erode",
			layout:     []string{"######", "#P..T#", "#.:..#", "######"},
			dir:        Right,
			wantMoved:  true,
			wantPlayer: Position{1, 4},
			wantTiles:  map[Position]Tile{{2, 2}: TileNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := MustParseLayout(tt.layout...)
			before := state.Clone()

			moved := Simulate(state, tt.dir)

			assert.Equal(t, tt.wantMoved, moved)
			assert.Equal(t, tt.wantPlayer, state.Player)
			for pos, tile := range tt.wantTiles {
				assert.Equal(t, tile, state.Map.At(pos), "tile at %s", pos)
			}
			if !moved {
				assert.True(t, before.Equal(state), "illegal move must leave the state untouched")
			}
		})
	}
}

func TestSimulateTrapUnderPlayer(t *testing.T) {
	state := MustParseLayout(
		"#####",
		"#P..#",
		"#...#",
		"#..T#",
		"#####",
	)
	state.Map.Set(Position{1, 1}, Trap)

	require.True(t, Simulate(state, Right))
	assert.Equal(t, Position{1, 3}, state.Player)
	assert.Equal(t, Wall, state.Map.At(Position{1, 1}))
}

func TestSimulateStartingOnTarget(t *testing.T) {
	state := MustParseLayout(
		"#####",
		"#P.T#",
		"#####",
	)
	state.Target = state.Player

	require.True(t, Simulate(state, Right))
	assert.Equal(t, Position{1, 3}, state.Player, "a legal move always changes the position")
}

func TestSimulateGridEdge(t *testing.T) {
	state := MustParseLayout(
		"P..",
		"...",
		"..T",
	)

	assert.False(t, Simulate(state, Up))
	assert.False(t, Simulate(state, Left))
	require.True(t, Simulate(state, Right))
	assert.Equal(t, Position{0, 2}, state.Player)
}

func TestSimulateDeterminism(t *testing.T) {
	layout := []string{
		"########",
		"#P..*..#",
		"#.:..%.#",
		"#..*...#",
		"#.%..:T#",
		"########",
	}

	for _, dir := range Directions {
		a := MustParseLayout(layout...)
		b := MustParseLayout(layout...)
		movedA := Simulate(a, dir)
		movedB := Simulate(b, dir)
		assert.Equal(t, movedA, movedB, dir.String())
		assert.True(t, a.Equal(b), dir.String())
		assert.Equal(t, a.Key(), b.Key(), dir.String())
	}
}

func TestSimulateInvariantsOnRandomWalks(t *testing.T) {
	layout := []string{
		"#########",
		"#P.*.:..#",
		"#.%..*.:#",
		"#:..*...#",
		"#..%..:.#",
		"#.*...%T#",
		"#########",
	}
	rng := rand.New(rand.NewSource(7))

	for walk := 0; walk < 50; walk++ {
		state := MustParseLayout(layout...)
		for step := 0; step < 40 && !state.IsSolved(); step++ {
			dir := Directions[rng.Intn(len(Directions))]
			before := state.Clone()
			moved := Simulate(state, dir)

			if !moved {
				require.True(t, before.Equal(state))
				continue
			}
			require.NotEqual(t, before.Player, state.Player)

			arrived := state.Map.At(state.Player)
			require.NotEqual(t, Wall, arrived, "player ended on a wall")
			require.NotEqual(t, Loose, arrived, "player ended on a loose tile")

			for r := range state.Map {
				for c := range state.Map[r] {
					was, now := before.Map[r][c], state.Map[r][c]
					switch was {
					case Wall:
						require.Equal(t, Wall, now, "walls never revert")
					case TileNone:
						require.Equal(t, TileNone, now, "empty cells never gain tiles")
					case Loose:
						require.Contains(t, []Tile{Loose, TileNone}, now)
					case Trap:
						require.Contains(t, []Tile{Trap, Wall}, now)
					case Sticky:
						require.Equal(t, Sticky, now)
					}
				}
			}
		}
	}
}

func TestCanSlideDoesNotMutate(t *testing.T) {
	state := MustParseLayout("#####", "#P*T#", "#####")
	before := state.Clone()

	assert.True(t, CanSlide(state, Right))
	assert.False(t, CanSlide(state, Up))
	assert.True(t, before.Equal(state))
}

func TestReplay(t *testing.T) {
	state := MustParseLayout(
		"#####",
		"#P..#",
		"#.#.#",
		"#..T#",
		"#####",
	)

	legal := Replay(state, []Direction{Up, Right, Left, Right, Down})

	assert.Equal(t, 4, legal)
	assert.True(t, state.IsSolved())
}
