// Package websocket pushes live puzzle state to browsers and other watchers.
//
// A Hub groups connections by session ID. Every state change made through the
// API is broadcast to the session's clients as
//
//	{"session_id": "...", "event": "state_update", "game_state": {...}}
//
// Clients may also send commands, which the hub hands to the installed
// CommandHandler:
//
//	{"action": "move", "direction": "up"}
//	{"action": "bulk_move", "moves": ["wdsa"]}
//	{"action": "reset"}
//
// Failed commands are answered with an "error" event to the sender only.
package websocket
