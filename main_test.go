package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/slidegame/game/config"
	"github.com/wricardo/mcp-training/slidegame/game/engine"
)

func corridor() *engine.PuzzleState {
	return engine.MustParseLayout("#####", "#P..#", "#.#.#", "#..T#", "#####")
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "Slide Puzzle Server", AppName)
}

func TestCommandTree(t *testing.T) {
	app := newApp()

	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"serve", "mcp", "generate", "search", "simulate", "play", "schema"}, names)

	var flags []string
	for _, f := range app.Flags {
		flags = append(flags, f.Names()[0])
	}
	for _, name := range []string{"debug", "port", "host", "config-dir", "presets", "sessions-dir", "solutions-db"} {
		assert.Contains(t, flags, name)
	}
}

func TestEncodePuzzleRoundTrip(t *testing.T) {
	doc, err := encodePuzzle(corridor(), 99)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(doc), "//seed: 99\n{"))

	decoded, err := config.DecodePuzzle(doc)
	require.NoError(t, err)
	assert.Equal(t, int64(99), decoded.Seed)
	assert.True(t, corridor().Equal(&decoded.PuzzleState))
}

func TestSolutionMessage(t *testing.T) {
	assert.Equal(t, "No solution!", solutionMessage(nil, false))
	assert.Equal(t, "A possible solution: [down, right]",
		solutionMessage([]engine.Direction{engine.Down, engine.Right}, true))
	assert.Equal(t, "A possible solution: []", solutionMessage([]engine.Direction{}, true))
}

func TestSimulate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, simulate(&out, corridor(), "sd", false))
	assert.Contains(t, out.String(), "2/2 steps applied")
	assert.Contains(t, out.String(), "Solved!")
	assert.NotContains(t, out.String(), "\x1b[")

	out.Reset()
	require.NoError(t, simulate(&out, corridor(), "ws", false))
	assert.Contains(t, out.String(), "1/2 steps applied")
	assert.NotContains(t, out.String(), "Solved!")

	out.Reset()
	require.NoError(t, simulate(&out, corridor(), "s", true))
	assert.Contains(t, out.String(), "\x1b[")

	assert.ErrorIs(t, simulate(&out, corridor(), "sx", false), engine.ErrInvalidInput)
}

func TestParsePlayLine(t *testing.T) {
	tests := []struct {
		line string
		want []engine.Direction
	}{
		{"wasd", []engine.Direction{engine.Up, engine.Left, engine.Down, engine.Right}},
		{"down right", []engine.Direction{engine.Down, engine.Right}},
		{"s d", []engine.Direction{engine.Down, engine.Right}},
		{"up", []engine.Direction{engine.Up}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parsePlayLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parsePlayLine("jump")
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
}

func newCorridorEngine(t *testing.T) *engine.GameEngine {
	t.Helper()
	eng, err := engine.NewEngine(&engine.PuzzleConfig{Name: "corridor", PuzzleState: *corridor()})
	require.NoError(t, err)
	return eng
}

func TestPlayLoop(t *testing.T) {
	t.Run("solved", func(t *testing.T) {
		eng := newCorridorEngine(t)
		var out bytes.Buffer

		solved, err := playLoop(strings.NewReader("x\n\nsd\n"), &out, eng, false)
		require.NoError(t, err)
		assert.True(t, solved)
		assert.Equal(t, 2, eng.GetState().Steps)
		assert.Contains(t, out.String(), "direction cannot be")
	})

	t.Run("blocked move reported", func(t *testing.T) {
		eng := newCorridorEngine(t)
		var out bytes.Buffer

		solved, err := playLoop(strings.NewReader("w\n"), &out, eng, false)
		require.NoError(t, err)
		assert.False(t, solved)
		assert.Contains(t, out.String(), "up is blocked")
		assert.Equal(t, 0, eng.GetState().Steps)
	})
}

func TestSearchCommand(t *testing.T) {
	doc, err := encodePuzzle(corridor(), 1)
	require.NoError(t, err)

	err = newApp().Run(context.Background(), []string{"slidegame", "search", "--json", string(doc), "--max-steps", "5"})
	assert.NoError(t, err)

	err = newApp().Run(context.Background(), []string{"slidegame", "simulate", "--json", string(doc)})
	assert.Error(t, err)

	err = newApp().Run(context.Background(), []string{"slidegame", "search", "--json", "{"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestSchemaCommand(t *testing.T) {
	assert.NoError(t, newApp().Run(context.Background(), []string{"slidegame", "schema"}))
}
