// Package session keeps the live puzzle sessions.
//
// Manager maps session IDs to a service.Session holding its own
// engine.GameEngine. IDs are the first eight hex characters of a random
// UUID and are matched case-insensitively. Sessions idle for longer than a
// configured age are evicted by RunCleanup.
//
// With a SessionPersistence attached, every create and every move is written
// through, and sessions missing from memory are loaded on first access.
// FilePersistence writes one JSON document per session, optionally zstd
// compressed. Each snapshot embeds the starting puzzle, so sessions on
// generated puzzles survive a restart.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configMgr)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	sess, err := manager.Create("", "classic", configMgr.GetDefault())
package session
