package main

import (
	"github.com/wricardo/mcp-training/slidegame/game/engine"
)

// SystematicStrategy plans on the client side with an iterative deepening
// depth-first search, independent of the server's breadth-first solver.
// It keeps the state it expects the server to report after each move and
// replans whenever the observed state differs.
type SystematicStrategy struct {
	maxDepth int

	plan   []engine.Direction
	expect *engine.PuzzleState

	// Expanded counts search nodes across all plans
	Expanded int
	// Replans counts how many times a plan was computed
	Replans int
}

// NewSystematicStrategy creates a strategy that searches up to maxDepth slides
func NewSystematicStrategy(maxDepth int) *SystematicStrategy {
	if maxDepth <= 0 {
		maxDepth = engine.DefaultMaxSteps
	}
	return &SystematicStrategy{maxDepth: maxDepth}
}

// NextMove returns the next slide to play from state. It reports false when
// state is already solved or no solution exists within the depth bound.
func (s *SystematicStrategy) NextMove(state *engine.PuzzleState) (engine.Direction, bool) {
	if state.IsSolved() {
		return 0, false
	}

	if len(s.plan) == 0 || s.expect == nil || !s.expect.Equal(state) {
		plan, ok := s.Plan(state)
		if !ok || len(plan) == 0 {
			s.plan = nil
			return 0, false
		}
		s.plan = plan
		s.Replans++
	}

	dir := s.plan[0]
	s.plan = s.plan[1:]
	s.expect = state.Clone()
	engine.Simulate(s.expect, dir)
	return dir, true
}

// Plan finds a shortest solution from start. Depth limits grow one slide at
// a time, so the first path found is minimal.
func (s *SystematicStrategy) Plan(start *engine.PuzzleState) ([]engine.Direction, bool) {
	if start.IsSolved() {
		return []engine.Direction{}, true
	}

	for limit := 1; limit <= s.maxDepth; limit++ {
		// Shallowest depth each state was reached at in this iteration
		seen := map[string]int{start.Key(): 0}
		path := make([]engine.Direction, 0, limit)
		if found, exhausted := s.dfs(start, 0, limit, seen, &path); found {
			return path, true
		} else if exhausted {
			// No state reached the depth limit: deeper searches add nothing
			return nil, false
		}
	}
	return nil, false
}

// dfs reports whether a solution was found, and whether the subtree was
// exhausted before reaching limit.
func (s *SystematicStrategy) dfs(state *engine.PuzzleState, depth, limit int, seen map[string]int, path *[]engine.Direction) (found, exhausted bool) {
	s.Expanded++
	if depth == limit {
		return false, false
	}

	exhausted = true
	for _, dir := range engine.Directions {
		next := state.Clone()
		if !engine.Simulate(next, dir) {
			continue
		}

		*path = append(*path, dir)
		if next.IsSolved() {
			return true, false
		}

		key := next.Key()
		if prev, ok := seen[key]; !ok || prev > depth+1 {
			seen[key] = depth + 1
			subFound, subExhausted := s.dfs(next, depth+1, limit, seen, path)
			if subFound {
				return true, false
			}
			exhausted = exhausted && subExhausted
		}
		*path = (*path)[:len(*path)-1]
	}
	return false, exhausted
}

// Reset drops the current plan
func (s *SystematicStrategy) Reset() {
	s.plan = nil
	s.expect = nil
}
