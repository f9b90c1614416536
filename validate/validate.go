// Command validate provides a small CLI that validates the puzzle files in
// the ../configs directory. It checks:
//   - the document against the puzzle JSON Schema
//   - grid consistency, player and target placement
//   - library requirements such as a name and a non-negative step bound
//   - solvability: a solution exists within the puzzle's step bound
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/slidegame/game/config"
	"github.com/wricardo/mcp-training/slidegame/game/engine"
	"github.com/wricardo/mcp-training/slidegame/game/solver"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single puzzle file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := config.ReadPuzzleFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	puzzle, err := config.DecodePuzzle(data)
	if err != nil {
		result.fail("Invalid puzzle: %v", err)
		return result
	}

	if err := engine.ValidatePuzzleConfig(puzzle); err != nil {
		result.fail("%v", err)
		return result
	}

	solvable := validateSolvable(puzzle)
	result.Errors = append(result.Errors, solvable.Errors...)
	if !solvable.Valid {
		result.Valid = false
		return result
	}

	state := &puzzle.PuzzleState
	result.info("Name: %s", puzzle.Name)
	result.info("Grid: %dx%d", state.Map.Rows(), state.Map.Cols())
	result.info("Player: %s Target: %s", state.Player, state.Target)
	for _, tile := range engine.Tiles {
		if n := state.Map.Count(tile); n > 0 {
			result.info("%s tiles: %d", tile, n)
		}
	}
	if !engine.IsBordered(state.Map) {
		result.info("Open border: slides stop at the grid edge")
	}

	return result
}

// validateSolvable searches for a shortest solution within the puzzle's
// step bound.
func validateSolvable(puzzle *engine.PuzzleConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	limit := puzzle.StepLimit()
	found := solver.New().Solve(&puzzle.PuzzleState, limit)
	if !found.Found {
		result.fail("Unsolvable: no solution within %d steps (%d states searched)", limit, found.Visited)
		return result
	}
	if !solver.Verify(&puzzle.PuzzleState, found.Path) {
		result.fail("Solver returned a path that does not reach the target: %s", found.Steps())
		return result
	}

	result.info("Solvable in %d/%d steps: %s", len(found.Path), limit, found.Steps())
	return result
}

// puzzleFiles lists the library files in dir in name order
func puzzleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && config.IsPuzzleFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// main scans ../configs (or the directory given as the first argument) and
// validates each puzzle, printing a concise report and exiting with non-zero
// status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}
	files, err := puzzleFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding puzzle files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All puzzles are valid!")
	} else {
		fmt.Println("❌ Some puzzles have errors")
		os.Exit(1)
	}
}
