// Package api provides the HTTP REST API for the slide puzzle server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session from a library puzzle
//   - GET /api/sessions - List sessions (sort, order, limit)
//   - GET /api/sessions/unified - Several sessions in one response
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - GET /api/sessions/{id}/board - Text rendering of the board
//   - POST /api/sessions/{id}/move - {"direction": "up", "reset": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["up", "dd"], "reset": false}
//   - POST /api/sessions/{id}/reset - Restore the starting position
//   - GET /api/sessions/{id}/history - Paginated move history
//   - POST /api/sessions/{id}/solve - Shortest solution from the current position
//
// Puzzles:
//   - POST /api/generate - Generate a solvable puzzle and open a session on it
//   - GET /api/configs - List the puzzle library
//   - GET /api/configs/{name} - Load one puzzle
//   - POST /api/configs - Save a puzzle to the library
//   - GET /api/schema - JSON Schema of the puzzle format
//
// Errors are returned as {"error": "...", "code": N}. Unknown sessions and
// puzzles map to 404, malformed input to 400.
//
// WebSocket clients connect to /ws?session={id}, receive state_update events
// and may send commands such as {"action": "move", "direction": "left"}.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
