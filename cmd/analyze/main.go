// Command analyze prints quick, human-readable heuristics about the puzzle
// files in a library directory. It summarizes dimensions, tile counts and the
// shortest solution, and highlights puzzles that cannot be finished within
// their step bound.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/slidegame/game/config"
	"github.com/wricardo/mcp-training/slidegame/game/engine"
	"github.com/wricardo/mcp-training/slidegame/game/solver"
)

// Report is the analysis of one puzzle file.
type Report struct {
	File     string
	Name     string
	Rows     int
	Cols     int
	Tiles    map[string]int
	Player   engine.Position
	Target   engine.Position
	MaxSteps int
	Solution []engine.Direction
	Solved   bool
	Expanded int
	Warnings []string
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	reports, err := analyzeDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, r := range reports {
		printReport(os.Stdout, r)
	}
}

// analyzeDir analyzes every puzzle file in dir in name order. Files that
// fail to load are reported as a single warning.
func analyzeDir(dir string) ([]*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && config.IsPuzzleFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	reports := make([]*Report, 0, len(names))
	for _, name := range names {
		report, err := analyzeFile(filepath.Join(dir, name))
		if err != nil {
			report = &Report{File: name, Warnings: []string{fmt.Sprintf("cannot load: %v", err)}}
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func analyzeFile(path string) (*Report, error) {
	puzzle, err := config.LoadPuzzleFile(path)
	if err != nil {
		return nil, err
	}

	state := &puzzle.PuzzleState
	report := &Report{
		File:     filepath.Base(path),
		Name:     puzzle.Name,
		Rows:     state.Map.Rows(),
		Cols:     state.Map.Cols(),
		Tiles:    engine.TileCounts(state.Map),
		Player:   state.Player,
		Target:   state.Target,
		MaxSteps: puzzle.StepLimit(),
	}

	result := solver.New().Solve(state, report.MaxSteps)
	report.Solution = result.Path
	report.Solved = result.Found
	report.Expanded = result.Expanded

	if !result.Found {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("no solution within %d steps", report.MaxSteps))
	}
	if result.Found && len(result.Path) == 0 {
		report.Warnings = append(report.Warnings, "player starts on the target")
	}

	legal := 0
	for _, dir := range engine.Directions {
		if engine.CanSlide(state, dir) {
			legal++
		}
	}
	if legal == 0 {
		report.Warnings = append(report.Warnings, "player has no legal first move")
	}

	return report, nil
}

func printReport(w io.Writer, r *Report) {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", r.File)
	if r.Tiles == nil {
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "⚠️  %s\n", warning)
		}
		return
	}

	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", r.Rows, r.Cols)
	fmt.Fprintf(w, "Player: %s  Target: %s  (distance %d)\n",
		r.Player, r.Target, engine.ManhattanDistance(r.Player, r.Target))

	var tiles []string
	for _, tile := range engine.Tiles {
		if n := r.Tiles[tile.String()]; n > 0 {
			tiles = append(tiles, fmt.Sprintf("%s=%d", tile, n))
		}
	}
	fmt.Fprintf(w, "Tiles: %s\n", strings.Join(tiles, " "))

	if r.Solved {
		fmt.Fprintf(w, "✅ Shortest solution: %d/%d steps [%s] (%d states expanded)\n",
			len(r.Solution), r.MaxSteps, strings.Join(engine.DirectionNames(r.Solution), ", "), r.Expanded)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "⚠️  WARNING: %s\n", warning)
	}
}
