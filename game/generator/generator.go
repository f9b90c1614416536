package generator

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
	"github.com/wricardo/mcp-training/slidegame/game/solver"
)

// Size limits for generated puzzles
const (
	MinWidth           = 4
	MinHeight          = engine.MinGridSize
	DefaultMaxAttempts = 10000
)

var (
	// ErrProbabilityOverflow is returned when tile probabilities sum above 1
	ErrProbabilityOverflow = errors.New("the sum of probabilities cannot be greater than 1")

	// ErrInvalidOptions is returned for out-of-range sizes or step limits
	ErrInvalidOptions = errors.New("invalid generator options")

	// ErrNoPuzzleFound is returned when no attempt met the step constraints
	ErrNoPuzzleFound = errors.New("no puzzle met the step constraints")
)

// TileChance is the probability that an interior cell receives Tile
type TileChance struct {
	Tile        engine.Tile `json:"tile" yaml:"tile"`
	Probability float64     `json:"probability" yaml:"probability"`
}

// Options controls puzzle generation. Width counts columns and Height rows.
type Options struct {
	Width  int
	Height int
	Tiles  []TileChance

	// Seed 0 picks a random seed
	Seed int64

	MinSteps    int
	MaxSteps    int
	MaxAttempts int
}

// Validate checks sizes, step limits and probabilities
func (o Options) Validate() error {
	if o.Width < MinWidth || o.Width > engine.MaxGridSize {
		return fmt.Errorf("%w: width must be between %d and %d, got %d", ErrInvalidOptions, MinWidth, engine.MaxGridSize, o.Width)
	}
	if o.Height < MinHeight || o.Height > engine.MaxGridSize {
		return fmt.Errorf("%w: height must be between %d and %d, got %d", ErrInvalidOptions, MinHeight, engine.MaxGridSize, o.Height)
	}
	if o.MinSteps < 0 || o.MaxSteps < 0 {
		return fmt.Errorf("%w: step limits must not be negative", ErrInvalidOptions)
	}
	if o.MaxSteps > 0 && o.MinSteps > o.MaxSteps {
		return fmt.Errorf("%w: min steps %d exceeds max steps %d", ErrInvalidOptions, o.MinSteps, o.MaxSteps)
	}
	sum := 0.0
	for _, chance := range o.Tiles {
		if chance.Probability < 0 {
			return fmt.Errorf("%w: negative probability for %s", ErrInvalidOptions, chance.Tile)
		}
		if chance.Tile == engine.TileNone {
			return fmt.Errorf("%w: empty tile cannot be placed", ErrInvalidOptions)
		}
		sum += chance.Probability
	}
	if sum > 1 {
		return ErrProbabilityOverflow
	}
	return nil
}

// NewSeed returns a random non-zero seed
func NewSeed() int64 {
	for {
		if seed := rand.New(rand.NewSource(time.Now().UnixNano())).Int63(); seed != 0 {
			return seed
		}
	}
}

// Generate builds a walled puzzle of the requested size. Interior cells are
// filled by cumulative probability over opts.Tiles; the player and the target
// are then placed on distinct empty interior cells. When no empty cells are
// left, random interior cells are cleared instead. The result is fully
// determined by the returned seed.
func Generate(opts Options) (*engine.PuzzleState, int64, error) {
	if err := opts.Validate(); err != nil {
		return nil, 0, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = NewSeed()
	}
	rng := rand.New(rand.NewSource(seed))

	grid := engine.NewGrid(opts.Height, opts.Width)
	var empty []engine.Position

	for r := 0; r < opts.Height; r++ {
		for c := 0; c < opts.Width; c++ {
			pos := engine.Position{Row: r, Col: c}
			if !engine.Interior(grid, pos) {
				grid.Set(pos, engine.Wall)
				continue
			}
			if tile := pick(rng, opts.Tiles); tile != engine.TileNone {
				grid.Set(pos, tile)
				continue
			}
			empty = append(empty, pos)
		}
	}

	allocated := make(map[engine.Position]bool, 2)
	allocate := func() engine.Position {
		if len(empty) > 0 {
			i := rng.Intn(len(empty))
			pos := empty[i]
			empty = append(empty[:i], empty[i+1:]...)
			allocated[pos] = true
			return pos
		}
		for {
			pos := engine.Position{
				Row: 1 + rng.Intn(opts.Height-2),
				Col: 1 + rng.Intn(opts.Width-2),
			}
			if allocated[pos] {
				continue
			}
			grid.Set(pos, engine.TileNone)
			allocated[pos] = true
			return pos
		}
	}

	player := allocate()
	target := allocate()

	return &engine.PuzzleState{Map: grid, Player: player, Target: target}, seed, nil
}

func pick(rng *rand.Rand, chances []TileChance) engine.Tile {
	threshold := rng.Float64()
	for _, chance := range chances {
		if threshold < chance.Probability {
			return chance.Tile
		}
		threshold -= chance.Probability
	}
	return engine.TileNone
}

// Puzzle is a generated puzzle together with its shortest solution
type Puzzle struct {
	State    *engine.PuzzleState
	Seed     int64
	Solution []engine.Direction
	Solved   bool
	Attempts int
}

// GenerateSolvable generates puzzles until one has a shortest solution of
// between MinSteps and MaxSteps slides. A random seed advances by one per
// attempt, so the accepted puzzle is reproducible from its own seed.
// With MinSteps 0 an unsolvable puzzle is accepted as well.
func GenerateSolvable(opts Options) (*Puzzle, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	maxSteps := opts.MaxSteps
	if maxSteps == 0 {
		maxSteps = engine.DefaultMaxSteps
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	seed := opts.Seed
	if seed == 0 {
		seed = NewSeed()
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		try := opts
		try.Seed = seed
		state, used, err := Generate(try)
		if err != nil {
			return nil, err
		}

		path, found := solver.Search(state, maxSteps)
		if len(path) >= opts.MinSteps && (found || opts.MinSteps == 0) {
			return &Puzzle{
				State:    state,
				Seed:     used,
				Solution: path,
				Solved:   found,
				Attempts: attempt,
			}, nil
		}

		seed++
		if seed == 0 {
			seed++
		}
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrNoPuzzleFound, attempts)
}
