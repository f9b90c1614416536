package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is the parameter-class error returned for unrecognized direction tokens
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError carries the offending direction token
type InvalidInputError struct {
	Char  rune
	Token string
}

func (e *InvalidInputError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("parameter error: direction cannot be %q", e.Token)
	}
	return fmt.Sprintf("parameter error: direction cannot be %q", e.Char)
}

// Is makes errors.Is(err, ErrInvalidInput) match
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Direction is one of the four movement directions
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions is the fixed enumeration order. Search explores successors in this
// order, so it decides which of several shortest solutions is returned.
var Directions = [4]Direction{Up, Down, Left, Right}

var (
	deltaRow = [4]int{-1, 1, 0, 0}
	deltaCol = [4]int{0, 0, -1, 1}

	directionNames = [4]string{"up", "down", "left", "right"}
	directionKeys  = [4]rune{'w', 's', 'a', 'd'}
)

// Delta returns the unit (row, col) offset of the direction
func (d Direction) Delta() Position {
	return Position{Row: deltaRow[d], Col: deltaCol[d]}
}

// String returns the lowercase direction name
func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// Key returns the single-character input token for the direction
func (d Direction) Key() rune {
	return directionKeys[d]
}

// MarshalJSON encodes the direction by name
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a direction name or key
func (d *Direction) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	parsed, err := ParseDirectionToken(token)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection maps w/s/a/d to a direction
func ParseDirection(c rune) (Direction, error) {
	switch c {
	case 'w':
		return Up, nil
	case 's':
		return Down, nil
	case 'a':
		return Left, nil
	case 'd':
		return Right, nil
	}
	return 0, &InvalidInputError{Char: c}
}

// ParseDirections parses a step string such as "wdsa". Whitespace is ignored.
func ParseDirections(steps string) ([]Direction, error) {
	dirs := make([]Direction, 0, len(steps))
	for _, c := range steps {
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			continue
		}
		dir, err := ParseDirection(c)
		if err != nil {
			return dirs, err
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

// ParseDirectionName maps up/down/left/right (case-insensitive) to a direction
func ParseDirectionName(name string) (Direction, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for i, n := range directionNames {
		if n == lower {
			return Direction(i), nil
		}
	}
	return 0, &InvalidInputError{Token: name}
}

// ParseDirectionToken accepts either a direction name or a single key
func ParseDirectionToken(token string) (Direction, error) {
	trimmed := strings.TrimSpace(token)
	if r := []rune(trimmed); len(r) == 1 {
		return ParseDirection(r[0])
	}
	return ParseDirectionName(trimmed)
}

// FormatDirections renders a path as its key string, e.g. "wdsa"
func FormatDirections(dirs []Direction) string {
	var b strings.Builder
	for _, d := range dirs {
		b.WriteRune(d.Key())
	}
	return b.String()
}

// DirectionNames renders a path as direction names
func DirectionNames(dirs []Direction) []string {
	names := make([]string, len(dirs))
	for i, d := range dirs {
		names[i] = d.String()
	}
	return names
}
