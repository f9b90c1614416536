// Package store persists solver results in SQLite.
//
// Entries are keyed by a SHA-256 of the canonical puzzle state, so a state
// reached through different move sequences shares one entry. Because the
// solver always returns a shortest path, a stored solution answers searches
// with any step bound, while a stored failure only answers searches whose
// bound it covers.
package store
