package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
	"github.com/wricardo/mcp-training/slidegame/game/service"
)

// Formatting helpers

const boardLegend = "Legend: P player, T target, # wall, * trap, : loose, % sticky, . empty"

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func boardRows(state *engine.GameState) []string {
	if len(state.Board) > 0 {
		return state.Board
	}
	if state.Puzzle != nil {
		return state.Puzzle.Layout()
	}
	return nil
}

func formatGameState(state *engine.GameState) string {
	if state == nil || state.Puzzle == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Player: %s | Target: %s | Steps: %d | Moves: %d\n\n",
		state.Puzzle.Player, state.Puzzle.Target, state.Steps, state.TotalMoves)

	for _, row := range boardRows(state) {
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString(boardLegend)
	b.WriteString("\n")

	if state.Solved {
		b.WriteString("\n🎉 SOLVED!")
	} else if len(state.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s", strings.Join(state.PossibleMoves, ","))
	} else {
		b.WriteString("\nNo legal moves, reset to continue")
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}
	return b.String()
}

func formatStep(s *service.StepInfo) string {
	status := "✗"
	if s.Success {
		status = "✓"
	}
	line := fmt.Sprintf("Step: %s %s→%s distance=%d %s", s.Dir, s.From, s.To, s.Distance, status)
	if len(s.Decayed) > 0 {
		cells := make([]string, len(s.Decayed))
		for i, p := range s.Decayed {
			cells[i] = p.String()
		}
		line += " decayed=" + strings.Join(cells, ",")
	}
	return line + "\n"
}

func formatEvents(b *strings.Builder, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	b.WriteString("Events:\n")
	for _, event := range events {
		fmt.Fprintf(b, "- %s: %s\n", event.Type, event.Message)
	}
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move failed\n")
	}
	if result.Step != nil {
		b.WriteString(formatStep(result.Step))
	}
	formatEvents(&b, result.Events)

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	configName := ""
	rows, cols := 0, 0
	if result.GameState != nil {
		configName = result.GameState.ConfigName
		if result.GameState.Puzzle != nil {
			rows, cols = result.GameState.Puzzle.Map.Rows(), result.GameState.Puzzle.Map.Cols()
		}
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s • Grid: %dx%d\n", sessionID, configName, rows, cols)

	fmt.Fprintf(&b, "Executed %d/%d moves (%s → %s)\n", result.MovesExecuted, result.RequestedMoves, result.StartPos, result.EndPos)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s\n", result.StoppedReason)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for i := range result.Steps {
			b.WriteString(formatStep(&result.Steps[i]))
		}
	}
	if len(result.Events) > 0 {
		b.WriteString("\n")
		formatEvents(&b, result.Events)
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatSolveResult(result *service.SolveResult) string {
	var b strings.Builder
	b.WriteString(result.Message)
	b.WriteString("\n")
	if result.Found {
		fmt.Fprintf(&b, "Length: %d • Keys: %s\n", result.Length, result.Steps)
	}
	source := "searched"
	if result.Cached {
		source = "cached"
	}
	fmt.Fprintf(&b, "Bound: %d • Expanded: %d • %s", result.MaxSteps, result.Expanded, source)
	if result.Elapsed != "" {
		fmt.Fprintf(&b, " in %s", result.Elapsed)
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, Total: %d moves):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		fmt.Fprintf(&b, "%d. %s %s → %s %s\n",
			move.MoveNumber, move.Action, move.FromPosition, move.ToPosition, status)
	}
	if history.HasNext {
		b.WriteString("\nMore moves on the next page")
	}
	return b.String()
}

func describeCell(state *engine.GameState, pos engine.Position) string {
	if state.Puzzle == nil || !state.Puzzle.Map.InBounds(pos) {
		return fmt.Sprintf("Cell %s is outside the board", pos)
	}

	tile := state.Puzzle.Map.At(pos)
	var b strings.Builder
	fmt.Fprintf(&b, "Cell %s: %s", pos, tile)
	switch {
	case pos == state.Puzzle.Player:
		b.WriteString(" (player)")
	case pos == state.Puzzle.Target:
		b.WriteString(" (target)")
	}
	b.WriteString("\n")

	if tile.IsHardObstacle() {
		b.WriteString("Blocks entry: a slide stops in front of it")
	} else {
		b.WriteString("Passable")
	}
	switch tile {
	case engine.Trap:
		b.WriteString("; turns into a wall once the player leaves it")
	case engine.Loose:
		b.WriteString("; crumbles when the player is next to it")
	case engine.Sticky:
		b.WriteString("; ends any slide that enters it")
	}
	return b.String()
}
