// Package mcp exposes the slide puzzle to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, so agents and browsers share the same sessions.
//
// MCP Tools:
//   - create_session, generate_puzzle: start a game on a library or fresh puzzle
//   - game_state, describe_cell: inspect the board
//   - move, bulk_move, reset_game: play
//   - solve: shortest solution from the current position
//   - move_history, list_sessions, get_session, list_configs
//   - game_instructions: the rules
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.Run(); err != nil {
//		log.Fatal(err)
//	}
package mcp
