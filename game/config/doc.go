// Package config manages the puzzle library.
//
// Puzzles live as JSON files in a config directory, optionally compressed
// with zstd (.json.zst). Every file is checked against a JSON Schema that is
// reflected from engine.PuzzleConfig, then against the engine's grid rules.
//
// File Format:
//
//	//seed: 1234
//	{
//	  "name": "classic",
//	  "max_steps": 12,
//	  "map": [["wall", "wall", ...], ["wall", null, "trap", ...], ...],
//	  "player": [1, 1],
//	  "target": [4, 6]
//	}
//
// Leading "//" comment lines are ignored, except that "//seed: N" records
// the generator seed. Tiles are null (empty), "wall", "trap", "loose" or
// "sticky".
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	puzzle, err := manager.LoadConfig("classic")
//	defaultPuzzle := manager.GetDefault()
//	infos, err := manager.ListConfigs()
//
// The default puzzle is "classic" when present, otherwise the first valid
// config, otherwise a puzzle generated from the easy preset.
package config
