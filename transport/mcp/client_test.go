package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/slidegame/api"
	"github.com/wricardo/mcp-training/slidegame/game/config"
	"github.com/wricardo/mcp-training/slidegame/game/engine"
	"github.com/wricardo/mcp-training/slidegame/game/service"
	"github.com/wricardo/mcp-training/slidegame/game/session"
)

// newAPIServer serves the REST API over a library holding one corridor puzzle
func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	corridor := &engine.PuzzleConfig{
		Name:        "corridor",
		Description: "Two slides",
		PuzzleState: *engine.MustParseLayout("#####", "#P..#", "#.#.#", "#..T#", "#####"),
	}
	require.NoError(t, config.WritePuzzleFile(filepath.Join(dir, "corridor.json"), corridor))

	configs, err := config.NewManager(dir)
	require.NoError(t, err)

	gameService := service.NewGameService(session.NewManager(), configs)
	ts := httptest.NewServer(api.NewServer(gameService, nil))
	t.Cleanup(ts.Close)
	return ts
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (string, bool) {
	t.Helper()

	var req mcp.CallToolRequest
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text, result.IsError
}

func createSession(t *testing.T, client *Client) string {
	t.Helper()

	var info service.SessionInfo
	require.NoError(t, client.apiCall(context.Background(), "POST", "/api/sessions", map[string]string{"config_id": "corridor"}, &info))
	require.NotEmpty(t, info.ID)
	return info.ID
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.GetMCPServer())
}

func TestToolsRegistered(t *testing.T) {
	client := NewClient("http://localhost:8080")

	raw := client.GetMCPServer().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(raw)
	require.NoError(t, err)

	for _, name := range []string{
		"create_session", "generate_puzzle", "list_sessions", "get_session",
		"game_state", "move", "bulk_move", "reset_game", "solve",
		"move_history", "list_configs", "game_instructions", "describe_cell",
	} {
		assert.Contains(t, string(data), `"name":"`+name+`"`)
	}
}

func TestAPICallErrors(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1")
		assert.Error(t, client.apiCall(context.Background(), "GET", "/api/health", nil, nil))
	})

	t.Run("error body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"session not found","code":404}`))
		}))
		defer ts.Close()

		err := NewClient(ts.URL).apiCall(context.Background(), "GET", "/x", nil, nil)
		assert.EqualError(t, err, "session not found")
	})

	t.Run("plain body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer ts.Close()

		err := NewClient(ts.URL).apiCall(context.Background(), "GET", "/x", nil, nil)
		assert.EqualError(t, err, "API error: 500")
	})
}

func TestPlayThroughTools(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)

	text, isErr := callTool(t, client.handleCreateSession, map[string]interface{}{"config_id": "corridor"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Config: corridor")
	assert.Contains(t, text, "#P..#")

	sessionID := createSession(t, client)

	text, isErr = callTool(t, client.handleSolve, map[string]interface{}{"session_id": sessionID})
	require.False(t, isErr, text)
	assert.Contains(t, text, "A possible solution: [down, right]")

	text, isErr = callTool(t, client.handleMove, map[string]interface{}{
		"session_id": sessionID,
		"direction":  "down",
		"intent":     "reach the bottom corridor",
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "✓ Move successful")
	assert.Contains(t, text, "(1,1)→(3,1)")

	text, isErr = callTool(t, client.handleBulkMove, map[string]interface{}{
		"session_id": sessionID,
		"moves":      []interface{}{"d"},
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Executed 1/1 moves")
	assert.Contains(t, text, "SOLVED")

	text, isErr = callTool(t, client.handleMoveHistory, map[string]interface{}{"session_id": sessionID, "limit": float64(10)})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Total: 2 moves")

	text, isErr = callTool(t, client.handleReset, map[string]interface{}{"session_id": sessionID})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Game reset successfully")

	text, isErr = callTool(t, client.handleDescribeCell, map[string]interface{}{"session_id": sessionID, "row": float64(0), "col": float64(0)})
	require.False(t, isErr, text)
	assert.Contains(t, text, "wall")
	assert.Contains(t, text, "Blocks entry")

	text, isErr = callTool(t, client.handleListConfigs, nil)
	require.False(t, isErr, text)
	assert.Contains(t, text, "corridor")

	text, isErr = callTool(t, client.handleListSessions, nil)
	require.False(t, isErr, text)
	assert.Contains(t, text, sessionID)
}

func TestToolErrors(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)

	text, isErr := callTool(t, client.handleGameState, map[string]interface{}{})
	assert.True(t, isErr)
	assert.Contains(t, text, "session_id is required")

	text, isErr = callTool(t, client.handleGameState, map[string]interface{}{"session_id": "nobody"})
	assert.True(t, isErr)
	assert.Contains(t, text, "session not found")

	sessionID := createSession(t, client)
	text, isErr = callTool(t, client.handleMove, map[string]interface{}{"session_id": sessionID, "direction": "jump"})
	assert.True(t, isErr)
	assert.Contains(t, text, "jump")

	_, isErr = callTool(t, client.handleBulkMove, map[string]interface{}{"session_id": sessionID})
	assert.True(t, isErr)
}

func TestFormatGameState(t *testing.T) {
	assert.Equal(t, "No game state available", formatGameState(nil))

	puzzle := engine.MustParseLayout("#####", "#P.T#", "#####")
	state := &engine.GameState{
		Puzzle:        puzzle,
		PossibleMoves: []string{"right"},
		Message:       "Go",
	}
	text := formatGameState(state)
	assert.Contains(t, text, "#P.T#")
	assert.Contains(t, text, "Possible moves: right")
	assert.Contains(t, text, "Message: Go")
	assert.True(t, strings.HasPrefix(text, "Player: (1,1) | Target: (1,3)"))
}

func TestFormatSolveResult(t *testing.T) {
	found := formatSolveResult(&service.SolveResult{
		Found: true, Length: 2, Steps: "sd", MaxSteps: 255, Expanded: 7,
		Message: "A possible solution: [down, right]", Elapsed: "1ms",
	})
	assert.Contains(t, found, "Keys: sd")
	assert.Contains(t, found, "searched in 1ms")

	cached := formatSolveResult(&service.SolveResult{Message: "No solution!", Cached: true, MaxSteps: 3})
	assert.Contains(t, cached, "No solution!")
	assert.Contains(t, cached, "cached")
	assert.NotContains(t, cached, "Keys")
}
