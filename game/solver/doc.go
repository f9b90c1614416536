// Package solver finds shortest solutions to slide puzzles.
//
// Tiles change as the player moves, so the search space is the set of whole
// puzzle states rather than player positions. Solve runs a breadth-first
// search keyed by engine.PuzzleState.Key, so every distinct state is expanded
// at most once and the first solution found is a shortest one. Ties between
// equally short solutions are broken by the engine.Directions order.
//
//	path, ok := solver.Search(puzzle, engine.DefaultMaxSteps)
//	if ok {
//		fmt.Println(engine.FormatDirections(path))
//	}
package solver
