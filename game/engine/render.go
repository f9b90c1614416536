package engine

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiMarker = "\x1b[1;4;36;44m"
)

var tileGlyphs = map[Tile]string{
	Wall:   "[#]",
	Trap:   "[*]",
	Loose:  ":::",
	Sticky: ">|<",
}

var tileColors = map[Tile]string{
	Wall:   "\x1b[97m",
	Trap:   "\x1b[32m",
	Loose:  "\x1b[93m",
	Sticky: "\x1b[35m",
}

// ColorEnabled reports whether ANSI colours should be written to f
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render draws the puzzle with three characters per cell. The player is
// shown as YOU and the target as END.
func Render(state *PuzzleState, colored bool) string {
	lines := RenderLines(state, colored)
	return strings.Join(lines, "\n")
}

// RenderLines is Render split into one string per grid row
func RenderLines(state *PuzzleState, colored bool) []string {
	lines := make([]string, len(state.Map))
	for r, row := range state.Map {
		var b strings.Builder
		for c, tile := range row {
			pos := Position{Row: r, Col: c}
			switch {
			case pos == state.Player:
				writeGlyph(&b, "YOU", ansiMarker, colored)
			case pos == state.Target:
				writeGlyph(&b, "END", ansiMarker, colored)
			case tile == TileNone:
				b.WriteString("   ")
			default:
				writeGlyph(&b, tileGlyphs[tile], tileColors[tile], colored)
			}
		}
		lines[r] = b.String()
	}
	return lines
}

func writeGlyph(b *strings.Builder, glyph, color string, colored bool) {
	if !colored {
		b.WriteString(glyph)
		return
	}
	b.WriteString(color)
	b.WriteString(glyph)
	b.WriteString(ansiReset)
}
