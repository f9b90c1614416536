// Package service provides the business logic layer for the slide puzzle
// server.
//
// GameService is the one entry point used by every transport (REST,
// WebSocket and MCP). It owns:
//   - session lifecycle, on library puzzles or freshly generated ones
//   - move processing, with per-step traces and tile decay events
//   - shortest-solution search from a session's current position
//   - access to the puzzle library
//
// Core Interfaces:
//
// SessionManager stores sessions, ConfigManager serves the puzzle library and
// SolutionIndex caches search outcomes. Implementations live in the session,
// config and store packages.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := gameService.Move(ctx, info.ID, "down", false)
//
// Moves accept direction names ("up") and keys ("w"); bulk moves also accept
// key strings such as "wdsa". Unrecognised tokens fail with ErrInvalidInput
// before any move is applied.
package service
