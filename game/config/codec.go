package config

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
)

// File extensions recognised by the puzzle library
const (
	JSONExt       = ".json"
	CompressedExt = ".json.zst"
)

// ReadPuzzleFile returns the JSON content of a puzzle file, decompressing
// .zst files.
func ReadPuzzleFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		return io.ReadAll(f)
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("zstd decode %s: %w", path, err)
	}
	return data, nil
}

// WritePuzzleFile writes v as indented JSON, compressed when path ends in .zst
func WritePuzzleFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal puzzle: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if !strings.HasSuffix(path, ".zst") {
		return os.WriteFile(path, data, 0o644)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// splitComments separates leading "//" comment lines from the JSON body and
// returns the seed from a "//seed: N" line, if any.
func splitComments(data []byte) ([]byte, int64) {
	var seed int64
	body := data
	scanner := bufio.NewScanner(bytes.NewReader(data))
	consumed := 0
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "//") {
			break
		}
		consumed += len(line) + 1
		comment := strings.TrimSpace(strings.TrimPrefix(trimmed, "//"))
		if value, ok := strings.CutPrefix(comment, "seed:"); ok {
			if n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
				seed = n
			}
		}
	}
	if consumed > len(body) {
		consumed = len(body)
	}
	return body[consumed:], seed
}

// DecodePuzzle parses, schema-validates and checks a puzzle document. The
// document may start with "//" comment lines, as written by the generate
// command; a "//seed: N" comment fills in a missing seed. Single-quoted JSON
// is accepted for command-line convenience.
func DecodePuzzle(data []byte) (*engine.PuzzleConfig, error) {
	body, seed := splitComments(data)
	if !json.Valid(body) {
		body = bytes.ReplaceAll(body, []byte("'"), []byte(`"`))
	}

	if err := ValidateDocument(body); err != nil {
		return nil, err
	}

	var config engine.PuzzleConfig
	if err := json.Unmarshal(body, &config); err != nil {
		return nil, fmt.Errorf("failed to parse puzzle: %w", err)
	}
	if config.Seed == 0 {
		config.Seed = seed
	}
	if err := engine.ValidatePuzzle(&config.PuzzleState); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

// LoadPuzzleFile reads and decodes a puzzle file. A missing name defaults to
// the file's base name.
func LoadPuzzleFile(path string) (*engine.PuzzleConfig, error) {
	data, err := ReadPuzzleFile(path)
	if err != nil {
		return nil, err
	}
	config, err := DecodePuzzle(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if config.Name == "" {
		config.Name = ConfigID(filepath.Base(path))
	}
	return config, nil
}

// ConfigID strips the library extensions from a file name
func ConfigID(filename string) string {
	if id, ok := strings.CutSuffix(filename, CompressedExt); ok {
		return id
	}
	return strings.TrimSuffix(filename, JSONExt)
}

// IsPuzzleFile reports whether filename has a library extension
func IsPuzzleFile(filename string) bool {
	return strings.HasSuffix(filename, JSONExt) || strings.HasSuffix(filename, CompressedExt)
}
