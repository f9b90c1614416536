package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/slidegame/game/config"
	"github.com/wricardo/mcp-training/slidegame/game/engine"
	"github.com/wricardo/mcp-training/slidegame/game/generator"
	"github.com/wricardo/mcp-training/slidegame/game/solver"
)

// puzzleInputFlags select where a command reads its puzzle from. With
// neither flag set the document is read from stdin.
func puzzleInputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "json",
			Aliases: []string{"j"},
			Usage:   "Puzzle document given inline",
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Puzzle file (.json or .json.zst)",
		},
	}
}

func readPuzzle(cmd *cli.Command, stdin io.Reader) (*engine.PuzzleConfig, error) {
	if doc := cmd.String("json"); doc != "" {
		return config.DecodePuzzle([]byte(doc))
	}
	if path := cmd.String("file"); path != "" {
		return config.LoadPuzzleFile(path)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("no puzzle given: use --json, --file or pipe a document")
	}
	return config.DecodePuzzle(data)
}

// encodePuzzle renders the generate output: a seed comment and compact JSON
func encodePuzzle(state *engine.PuzzleState, seed int64) ([]byte, error) {
	body, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("//seed: %d\n%s\n", seed, body)), nil
}

// logProgress prints one line per search depth
func logProgress(p solver.Progress) {
	log.Printf("depth: %d \ttotal: %d \telapsed: %s", p.Depth, p.Expanded, p.Elapsed.Round(time.Millisecond))
}

func solutionMessage(path []engine.Direction, found bool) string {
	if !found {
		return "No solution!"
	}
	return fmt.Sprintf("A possible solution: [%s]", strings.Join(engine.DirectionNames(path), ", "))
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a solvable puzzle",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Value: generator.DefaultPreset, Usage: "Generator preset"},
			&cli.IntFlag{Name: "width", Usage: "Board width including the border (preset default)"},
			&cli.IntFlag{Name: "height", Usage: "Board height including the border (preset default)"},
			&cli.StringFlag{Name: "blocks", Aliases: []string{"b"}, Usage: `Tile probabilities, e.g. [["wall",0.1],["trap",0.05]]`},
			&cli.IntFlag{Name: "min", Usage: "Minimum shortest-solution length (preset default)"},
			&cli.IntFlag{Name: "max", Usage: "Maximum shortest-solution length (preset default)"},
			&cli.IntFlag{Name: "seed", Aliases: []string{"s"}, Usage: "Seed (random when 0)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the puzzle to a file instead of stdout"},
			&cli.BoolFlag{Name: "search", Usage: "Print the shortest solution after generating"},
			&cli.StringFlag{Name: "simulate", Usage: "Apply these steps to the generated puzzle and print the board"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			presets, err := generator.LoadPresets(cmd.String("presets"))
			if err != nil {
				return err
			}
			preset, err := presets.Get(cmd.String("preset"))
			if err != nil {
				return err
			}

			opts := preset.Options(int64(cmd.Int("seed")))
			if v := int(cmd.Int("width")); v > 0 {
				opts.Width = v
			}
			if v := int(cmd.Int("height")); v > 0 {
				opts.Height = v
			}
			if v := int(cmd.Int("min")); v > 0 {
				opts.MinSteps = v
			}
			if v := int(cmd.Int("max")); v > 0 {
				opts.MaxSteps = v
			}
			if raw := cmd.String("blocks"); raw != "" {
				if opts.Tiles, err = generator.ParseTileChances(raw); err != nil {
					return err
				}
			}

			puzzle, err := generator.GenerateSolvable(opts)
			if err != nil {
				return err
			}
			log.Printf("Generated %s puzzle with seed %d after %d attempts", preset.Name, puzzle.Seed, puzzle.Attempts)

			if path := cmd.String("out"); path != "" {
				cfg := &engine.PuzzleConfig{
					Name:        fmt.Sprintf("%s-%d", preset.Name, puzzle.Seed),
					MaxSteps:    opts.MaxSteps,
					Seed:        puzzle.Seed,
					PuzzleState: *puzzle.State,
				}
				if err := config.WritePuzzleFile(path, cfg); err != nil {
					return err
				}
				fmt.Printf("Wrote %s\n", path)
			} else {
				doc, err := encodePuzzle(puzzle.State, puzzle.Seed)
				if err != nil {
					return err
				}
				os.Stdout.Write(doc)
			}

			if cmd.Bool("search") {
				fmt.Println(solutionMessage(puzzle.Solution, puzzle.Solved))
			}
			if steps := cmd.String("simulate"); steps != "" {
				return simulate(os.Stdout, puzzle.State, steps, engine.ColorEnabled(os.Stdout))
			}
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Find a shortest solution",
		Flags: append(puzzleInputFlags(),
			&cli.IntFlag{Name: "max-steps", Aliases: []string{"m"}, Value: engine.DefaultMaxSteps, Usage: "Search depth bound"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			puzzle, err := readPuzzle(cmd, os.Stdin)
			if err != nil {
				return err
			}

			s := solver.New(solver.WithProgress(logProgress))
			result, err := s.SolveContext(ctx, &puzzle.PuzzleState, int(cmd.Int("max-steps")))
			if err != nil {
				return err
			}
			fmt.Println(solutionMessage(result.Path, result.Found))
			return nil
		},
	}
}

// simulate applies steps to a copy of state and prints the resulting board
func simulate(out io.Writer, state *engine.PuzzleState, steps string, colored bool) error {
	dirs, err := engine.ParseDirections(steps)
	if err != nil {
		return err
	}

	current := state.Clone()
	legal := engine.Replay(current, dirs)

	fmt.Fprintln(out, engine.Render(current, colored))
	fmt.Fprintf(out, "%d/%d steps applied\n", legal, len(dirs))
	if current.IsSolved() {
		fmt.Fprintln(out, "Solved!")
	}
	return nil
}

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:      "simulate",
		Usage:     "Apply steps to a puzzle and print the board",
		ArgsUsage: "STEPS",
		Flags:     puzzleInputFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("expected one STEPS argument such as \"wdsa\"")
			}
			puzzle, err := readPuzzle(cmd, os.Stdin)
			if err != nil {
				return err
			}
			return simulate(os.Stdout, &puzzle.PuzzleState, cmd.Args().First(), engine.ColorEnabled(os.Stdout))
		},
	}
}

// playLoop reads lines of steps from in until the puzzle is solved or in is
// exhausted. Blank lines redraw the board.
func playLoop(in io.Reader, out io.Writer, eng *engine.GameEngine, colored bool) (bool, error) {
	scanner := bufio.NewScanner(in)
	for {
		state := eng.GetState()
		fmt.Fprintln(out, engine.Render(state.Puzzle, colored))
		if state.Solved {
			return true, nil
		}
		fmt.Fprint(out, "steps> ")

		if !scanner.Scan() {
			return false, scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		dirs, err := parsePlayLine(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		for _, dir := range dirs {
			if !eng.Move(dir) {
				fmt.Fprintf(out, "%s is blocked\n", dir)
			}
			if eng.IsSolved() {
				break
			}
		}
	}
}

// parsePlayLine accepts key strings ("wdsa") or space separated names
func parsePlayLine(line string) ([]engine.Direction, error) {
	fields := strings.Fields(line)
	if len(fields) == 1 {
		if dirs, err := engine.ParseDirections(fields[0]); err == nil {
			return dirs, nil
		}
	}
	dirs := make([]engine.Direction, 0, len(fields))
	for _, field := range fields {
		dir, err := engine.ParseDirectionToken(field)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a puzzle in the terminal",
		Flags: append(puzzleInputFlags(),
			&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Value: generator.DefaultPreset, Usage: "Preset used when no puzzle is given"},
			&cli.IntFlag{Name: "seed", Aliases: []string{"s"}, Usage: "Seed used when no puzzle is given"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var puzzle *engine.PuzzleConfig
			if cmd.String("json") != "" || cmd.String("file") != "" {
				var err error
				if puzzle, err = readPuzzle(cmd, os.Stdin); err != nil {
					return err
				}
			} else {
				presets, err := generator.LoadPresets(cmd.String("presets"))
				if err != nil {
					return err
				}
				preset, err := presets.Get(cmd.String("preset"))
				if err != nil {
					return err
				}
				generated, err := generator.GenerateSolvable(preset.Options(int64(cmd.Int("seed"))))
				if err != nil {
					return err
				}
				puzzle = &engine.PuzzleConfig{
					Name:        fmt.Sprintf("%s-%d", preset.Name, generated.Seed),
					MaxSteps:    preset.MaxSteps,
					Seed:        generated.Seed,
					PuzzleState: *generated.State,
				}
				fmt.Printf("//seed: %d\n", generated.Seed)
			}

			best, found := solver.Search(&puzzle.PuzzleState, puzzle.StepLimit())
			if !found {
				return fmt.Errorf("%s: %w", puzzle.Name, solver.ErrNoSolution)
			}

			eng, err := engine.NewEngine(puzzle)
			if err != nil {
				return err
			}

			fmt.Println("Enter steps as keys (w a s d) or names (up down left right).")
			began := time.Now()
			solved, err := playLoop(os.Stdin, os.Stdout, eng, engine.ColorEnabled(os.Stdout))
			if err != nil {
				return err
			}
			if !solved {
				return errors.New("game abandoned")
			}
			fmt.Printf("Solved in %s with %d/%d steps!\n",
				time.Since(began).Round(time.Second), eng.GetState().Steps, len(best))
			return nil
		},
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON Schema of puzzle documents",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := config.SchemaJSON()
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}
