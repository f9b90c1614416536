package solver

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
)

// ErrNoSolution is returned by callers that treat a missing solution as a failure
var ErrNoSolution = errors.New("no solution within step limit")

// Progress is a snapshot of a running search
type Progress struct {
	Depth    int           `json:"depth"`
	Expanded int           `json:"expanded"`
	Visited  int           `json:"visited"`
	Elapsed  time.Duration `json:"elapsed"`
}

// ProgressFunc receives a snapshot each time the search reaches a new depth
type ProgressFunc func(Progress)

// Option configures a Solver
type Option func(*Solver)

// WithProgress reports search progress to fn
func WithProgress(fn ProgressFunc) Option {
	return func(s *Solver) {
		s.progress = fn
	}
}

// Result describes a finished search
type Result struct {
	Path     []engine.Direction `json:"path"`
	Found    bool               `json:"found"`
	Expanded int                `json:"expanded"`
	Visited  int                `json:"visited"`
	MaxDepth int                `json:"max_depth"`
	Elapsed  time.Duration      `json:"elapsed"`
}

// Steps returns the solution in key form, e.g. "wdsa"
func (r Result) Steps() string {
	return engine.FormatDirections(r.Path)
}

// Solver runs breadth-first searches over puzzle states
type Solver struct {
	progress ProgressFunc
}

// New creates a Solver
func New(opts ...Option) *Solver {
	s := &Solver{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// node is a frontier entry. Paths are rebuilt from parent links once the
// target is reached.
type node struct {
	state  *engine.PuzzleState
	parent *node
	dir    engine.Direction
	depth  int
}

func (n *node) path(last engine.Direction) []engine.Direction {
	path := make([]engine.Direction, n.depth+1)
	path[n.depth] = last
	for cur := n; cur.parent != nil; cur = cur.parent {
		path[cur.depth-1] = cur.dir
	}
	return path
}

// cancelCheckInterval is how many expansions run between context checks
const cancelCheckInterval = 1024

// Solve finds a shortest sequence of at most maxSteps slides that moves the
// player onto the target. Successors are generated in engine.Directions
// order, so the returned path is deterministic. start is not modified.
func (s *Solver) Solve(start *engine.PuzzleState, maxSteps int) Result {
	result, _ := s.SolveContext(context.Background(), start, maxSteps)
	return result
}

// SolveContext is Solve with cancellation. On cancellation it returns the
// partial statistics and ctx.Err().
func (s *Solver) SolveContext(ctx context.Context, start *engine.PuzzleState, maxSteps int) (Result, error) {
	began := time.Now()
	result := Result{}

	if start.IsSolved() {
		result.Path = []engine.Direction{}
		result.Found = true
		return result, nil
	}

	visited := map[string]struct{}{start.Key(): {}}
	queue := []*node{{state: start.Clone()}}

	for len(queue) > 0 {
		current := queue[0]
		queue[0] = nil
		queue = queue[1:]
		result.Expanded++

		if result.Expanded%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				result.Visited = len(visited)
				result.Elapsed = time.Since(began)
				return result, err
			}
		}

		if current.depth > result.MaxDepth {
			result.MaxDepth = current.depth
			s.report(result, len(visited), began)
		}

		// Successors would exceed the bound
		if current.depth >= maxSteps {
			continue
		}

		for _, dir := range engine.Directions {
			next := current.state.Clone()
			if !engine.Simulate(next, dir) {
				continue
			}
			if next.IsSolved() {
				result.Path = current.path(dir)
				result.Found = true
				result.MaxDepth = len(result.Path)
				result.Visited = len(visited)
				result.Elapsed = time.Since(began)
				s.report(result, len(visited), began)
				return result, nil
			}
			key := next.Key()
			if _, seen := visited[key]; seen {
				continue
			}
			visited[key] = struct{}{}
			queue = append(queue, &node{state: next, parent: current, dir: dir, depth: current.depth + 1})
		}
	}

	result.Visited = len(visited)
	result.Elapsed = time.Since(began)
	return result, nil
}

func (s *Solver) report(result Result, visited int, began time.Time) {
	if s.progress == nil {
		return
	}
	s.progress(Progress{
		Depth:    result.MaxDepth,
		Expanded: result.Expanded,
		Visited:  visited,
		Elapsed:  time.Since(began),
	})
}

// Search returns a shortest solution of at most maxSteps slides, or false
// when none exists within the bound.
func Search(start *engine.PuzzleState, maxSteps int, opts ...Option) ([]engine.Direction, bool) {
	result := New(opts...).Solve(start, maxSteps)
	return result.Path, result.Found
}

// Verify replays path from start and reports whether every slide is legal
// and the final state is solved. start is not modified.
func Verify(start *engine.PuzzleState, path []engine.Direction) bool {
	state := start.Clone()
	for _, dir := range path {
		if !engine.Simulate(state, dir) {
			return false
		}
	}
	return state.IsSolved()
}
