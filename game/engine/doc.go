// Package engine implements the sliding-block puzzle.
//
// A PuzzleState is a grid of tiles plus the player and target positions.
// Each move slides the player in one direction until something stops it:
//   - Wall and Loose tiles block entry outright
//   - a Trap turns into a Wall once the player leaves it
//   - Loose tiles next to the player crumble away
//   - a Sticky tile ends the slide on it
//   - reaching the target ends the slide
//
// Simulate applies one slide in place. It is deterministic and performs no
// validation beyond the legality of the first step; ValidatePuzzle checks the
// grid preconditions for callers that accept puzzles from outside.
//
// GameEngine wraps a puzzle for interactive play, recording move history and
// supporting reset to the initial configuration.
//
// Usage:
//
//	state := engine.MustParseLayout(
//		"#####",
//		"#P*T#",
//		"#####",
//	)
//	moved := engine.Simulate(state, engine.Right)
//	fmt.Println(moved, state.IsSolved()) // true true
package engine
