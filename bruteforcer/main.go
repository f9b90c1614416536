// Command bruteforcer plays a puzzle against a running server through the
// REST API and checks that the server agrees the puzzle is solved.
//
// The server strategy asks the server for a shortest solution and replays it
// with bulk moves. The systematic strategy plans on the client with its own
// search and plays one slide at a time, replanning whenever the server
// reports a state the client did not expect.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
	"github.com/wricardo/mcp-training/slidegame/game/service"
)

const (
	strategyServer     = "server"
	strategySystematic = "systematic"
)

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do sends a JSON request and decodes the JSON response into out. Error
// responses carry an "error" field.
func (c *Client) do(method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s response: %w", path, err)
		}
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) CreateSession(configID string) (*service.SessionInfo, error) {
	var req any
	if configID != "" {
		req = map[string]string{"config_id": configID}
	}

	var session service.SessionInfo
	if err := c.do(http.MethodPost, "/api/sessions", req, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = session.ID
	return &session, nil
}

func (c *Client) GetSession() (*service.SessionInfo, error) {
	var session service.SessionInfo
	if err := c.do(http.MethodGet, c.sessionPath(""), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) Move(direction string) (*service.MoveResult, error) {
	var result service.MoveResult
	if err := c.do(http.MethodPost, c.sessionPath("/move"), map[string]string{"direction": direction}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) BulkMove(moves []string) (*service.BulkMoveResult, error) {
	var result service.BulkMoveResult
	if err := c.do(http.MethodPost, c.sessionPath("/bulk-move"), map[string][]string{"moves": moves}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type ResetResponse struct {
	Message string            `json:"message"`
	State   *engine.GameState `json:"state"`
}

func (c *Client) Reset() (*engine.GameState, error) {
	var resp ResetResponse
	if err := c.do(http.MethodPost, c.sessionPath("/reset"), nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.State, nil
}

func (c *Client) Solve(maxSteps int) (*service.SolveResult, error) {
	var result service.SolveResult
	if err := c.do(http.MethodPost, c.sessionPath("/solve"), map[string]int{"max_steps": maxSteps}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Options control one bruteforcer run
type Options struct {
	Strategy string
	MaxSteps int
	Delay    time.Duration
	Verbose  bool
}

// play resets the session and drives it to the target with the chosen
// strategy. It returns the final state reported by the server.
func play(c *Client, opts Options) (*engine.GameState, error) {
	log.Printf("🔄 Resetting game state...")
	state, err := c.Reset()
	if err != nil {
		return nil, err
	}
	log.Printf("Game reset - Player: %s, Target: %s", state.Puzzle.Player, state.Puzzle.Target)

	switch opts.Strategy {
	case strategyServer:
		return playServerSolution(c, opts)
	case strategySystematic:
		return playSystematic(c, state, opts)
	}
	return nil, fmt.Errorf("unknown strategy %q (use %s or %s)", opts.Strategy, strategyServer, strategySystematic)
}

func playServerSolution(c *Client, opts Options) (*engine.GameState, error) {
	solution, err := c.Solve(opts.MaxSteps)
	if err != nil {
		return nil, err
	}
	log.Printf("Server search: %s (expanded %d, cached %t)", solution.Message, solution.Expanded, solution.Cached)
	if !solution.Found {
		return nil, errors.New("server found no solution")
	}

	var last *service.BulkMoveResult
	for start := 0; start < len(solution.Path); start += engine.MaxBulkMoves {
		end := min(start+engine.MaxBulkMoves, len(solution.Path))
		last, err = c.BulkMove(solution.Path[start:end])
		if err != nil {
			return nil, err
		}
		if opts.Verbose {
			log.Printf("Bulk %d-%d: executed %d, stop=%s, end=%s",
				start+1, end, last.MovesExecuted, last.StopReasonCode, last.EndPos)
		}
		if last.StopReasonCode == service.StopBlocked {
			return last.GameState, fmt.Errorf("server solution blocked on move %d: %s", start+last.StoppedOnMove, last.StoppedReason)
		}
	}

	if last == nil {
		// Already solved: nothing to replay
		session, err := c.GetSession()
		if err != nil {
			return nil, err
		}
		return session.GameState, nil
	}
	return last.GameState, nil
}

func playSystematic(c *Client, state *engine.GameState, opts Options) (*engine.GameState, error) {
	strategy := NewSystematicStrategy(opts.MaxSteps)

	for moves := 0; !state.Solved; moves++ {
		if moves >= opts.MaxSteps {
			return state, fmt.Errorf("no solution after %d moves", moves)
		}

		dir, ok := strategy.NextMove(state.Puzzle)
		if !ok {
			return state, errors.New("no solution within the step bound")
		}

		result, err := c.Move(dir.String())
		if err != nil {
			return state, err
		}
		if opts.Verbose && result.Step != nil {
			log.Printf("%s %s->%s success=%t", dir, result.Step.From, result.Step.To, result.Success)
		}
		state = result.GameState

		if opts.Delay > 0 {
			time.Sleep(opts.Delay)
		}
	}

	log.Printf("Systematic search: %d plans, %d nodes expanded", strategy.Replans, strategy.Expanded)
	return state, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configID := flag.String("config", "", "Puzzle config id (default puzzle when empty)")
	continueSession := flag.String("continue", "", "Resume playing an existing session by ID")
	strategy := flag.String("strategy", strategyServer, "Strategy: server or systematic")
	maxSteps := flag.Int("max-steps", engine.DefaultMaxSteps, "Search depth bound")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between moves in milliseconds (0 = no delay)")
	flag.Parse()

	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	// Check for saved session ID
	sessionFile := ".session"
	savedSessionID := *continueSession
	if savedSessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		log.Printf("🔄 Resuming session: %s", client.sessionID)
		if _, err := client.GetSession(); err != nil {
			log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
			savedSessionID = ""
		}
	}

	if savedSessionID == "" {
		session, err := client.CreateSession(*configID)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("✨ Session created: %s (%s)", client.sessionID, session.ConfigName)
		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}

	state, err := play(client, Options{
		Strategy: *strategy,
		MaxSteps: *maxSteps,
		Delay:    time.Duration(*delayMs) * time.Millisecond,
		Verbose:  *verbose,
	})
	if err != nil {
		log.Printf("❌ %v", err)
		log.Printf("Session: %s", client.sessionID)
		os.Exit(1)
	}
	if !state.Solved {
		log.Printf("❌ Server does not report the puzzle as solved")
		os.Exit(1)
	}

	log.Printf("🎉 SOLVED in %d steps!", state.Steps)
	log.Printf("Session: %s", client.sessionID)
}
