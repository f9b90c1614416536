package generator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
	"github.com/wricardo/mcp-training/slidegame/game/solver"
)

func TestGenerateIsDeterministic(t *testing.T) {
	preset, err := BuiltinPresets().Get("normal")
	require.NoError(t, err)

	a, seedA, err := Generate(preset.Options(42))
	require.NoError(t, err)
	b, seedB, err := Generate(preset.Options(42))
	require.NoError(t, err)

	assert.Equal(t, int64(42), seedA)
	assert.Equal(t, seedA, seedB)
	assert.True(t, a.Equal(b))
}

func TestGenerateProducesValidPuzzles(t *testing.T) {
	for _, name := range BuiltinPresets().Names() {
		preset, err := BuiltinPresets().Get(name)
		require.NoError(t, err)

		for seed := int64(1); seed <= 25; seed++ {
			state, _, err := Generate(preset.Options(seed))
			require.NoError(t, err)

			assert.Equal(t, preset.Height, state.Map.Rows())
			assert.Equal(t, preset.Width, state.Map.Cols())
			assert.True(t, engine.IsBordered(state.Map), "%s seed %d", name, seed)
			assert.NoError(t, engine.ValidatePuzzle(state), "%s seed %d", name, seed)
			assert.NotEqual(t, state.Player, state.Target)
			assert.Equal(t, engine.TileNone, state.Map.At(state.Player))
			assert.Equal(t, engine.TileNone, state.Map.At(state.Target))
		}
	}
}

func TestGenerateRandomSeed(t *testing.T) {
	_, seed, err := Generate(Options{Width: 5, Height: 4})
	require.NoError(t, err)
	assert.NotZero(t, seed)
}

func TestGenerateFullyTiledInterior(t *testing.T) {
	// Every interior cell becomes a wall, so player and target must be
	// carved out of it.
	opts := Options{
		Width:  4,
		Height: 3,
		Tiles:  []TileChance{{Tile: engine.Wall, Probability: 1}},
		Seed:   9,
	}

	state, _, err := Generate(opts)
	require.NoError(t, err)

	assert.NotEqual(t, state.Player, state.Target)
	assert.Equal(t, engine.TileNone, state.Map.At(state.Player))
	assert.Equal(t, engine.TileNone, state.Map.At(state.Target))
	assert.Equal(t, 4*3, state.Map.Count(engine.Wall)+2)
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{
			name: "probabilities above one",
			opts: Options{Width: 8, Height: 6, Tiles: []TileChance{
				{Tile: engine.Wall, Probability: 0.7},
				{Tile: engine.Trap, Probability: 0.4},
			}},
			wantErr: ErrProbabilityOverflow,
		},
		{
			name:    "too narrow",
			opts:    Options{Width: 3, Height: 6},
			wantErr: ErrInvalidOptions,
		},
		{
			name:    "too short",
			opts:    Options{Width: 8, Height: 2},
			wantErr: ErrInvalidOptions,
		},
		{
			name:    "min above max",
			opts:    Options{Width: 8, Height: 6, MinSteps: 5, MaxSteps: 2},
			wantErr: ErrInvalidOptions,
		},
		{
			name: "negative probability",
			opts: Options{Width: 8, Height: 6, Tiles: []TileChance{
				{Tile: engine.Wall, Probability: -0.1},
			}},
			wantErr: ErrInvalidOptions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Generate(tt.opts)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGenerateSolvable(t *testing.T) {
	preset, err := BuiltinPresets().Get("easy")
	require.NoError(t, err)

	puzzle, err := GenerateSolvable(preset.Options(1))
	require.NoError(t, err)

	require.True(t, puzzle.Solved)
	assert.GreaterOrEqual(t, len(puzzle.Solution), preset.MinSteps)
	assert.LessOrEqual(t, len(puzzle.Solution), preset.MaxSteps)
	assert.True(t, solver.Verify(puzzle.State, puzzle.Solution))
	assert.GreaterOrEqual(t, puzzle.Attempts, 1)

	// The accepted puzzle is reproducible from its own seed
	again, _, err := Generate(preset.Options(puzzle.Seed))
	require.NoError(t, err)
	assert.True(t, puzzle.State.Equal(again))
}

func TestGenerateSolvableGivesUp(t *testing.T) {
	opts := Options{
		Width:       4,
		Height:      3,
		Seed:        3,
		MinSteps:    50,
		MaxSteps:    60,
		MaxAttempts: 5,
	}

	_, err := GenerateSolvable(opts)
	assert.ErrorIs(t, err, ErrNoPuzzleFound)
}

func TestParseTileChances(t *testing.T) {
	chances, err := ParseTileChances(`[['wall', 0.25], ["sand", 0.1]]`)
	require.NoError(t, err)
	assert.Equal(t, []TileChance{
		{Tile: engine.Wall, Probability: 0.25},
		{Tile: engine.Loose, Probability: 0.1},
	}, chances)

	_, err = ParseTileChances(`{"wall": 0.1}`)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = ParseTileChances(`[["lava", 0.1]]`)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = ParseTileChances(`[[null, 0.1]]`)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestPresets(t *testing.T) {
	presets := BuiltinPresets()
	assert.Equal(t, []string{"easy", "normal"}, presets.Names())

	easy, err := presets.Get("")
	require.NoError(t, err)
	assert.Equal(t, "easy", easy.Name)
	assert.Equal(t, 8, easy.Width)
	assert.Equal(t, 6, easy.Height)

	normal, err := presets.Get("NORMAL")
	require.NoError(t, err)
	assert.Len(t, normal.Tiles, 4)

	_, err = presets.Get("impossible")
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestLoadPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	raw := `presets:
  - name: tiny
    width: 5
    height: 4
    min_steps: 1
    max_steps: 6
    tiles:
      - tile: sticky
        probability: 0.2
  - name: Easy
    width: 10
    height: 7
    min_steps: 3
    max_steps: 9
    tiles:
      - tile: wall
        probability: 0.15
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	presets, err := LoadPresets(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"easy", "normal", "tiny"}, presets.Names())
	tiny, err := presets.Get("tiny")
	require.NoError(t, err)
	assert.Equal(t, []TileChance{{Tile: engine.Sticky, Probability: 0.2}}, tiny.Tiles)

	easy, err := presets.Get("easy")
	require.NoError(t, err)
	assert.Equal(t, 10, easy.Width)

	builtin, err := LoadPresets("")
	require.NoError(t, err)
	assert.Len(t, builtin, 2)
}

func TestParsePresetsRejectsBadEntries(t *testing.T) {
	_, err := ParsePresets([]byte("presets:\n  - name: bad\n    width: 2\n    height: 5\n"))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = ParsePresets([]byte("presets:\n  - name: bad\n    width: 6\n    height: 5\n    tiles:\n      - tile: lava\n        probability: 0.1\n"))
	assert.Error(t, err)

	_, err = ParsePresets([]byte("presets: [\n"))
	assert.Error(t, err)
}
