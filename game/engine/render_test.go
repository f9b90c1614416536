package engine

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderPlain(t *testing.T) {
	state := MustParseLayout(
		"######",
		"#P*:T#",
		"#.%..#",
		"######",
	)

	want := strings.Join([]string{
		"[#][#][#][#][#][#]",
		"[#]YOU[*]:::END[#]",
		"[#]   >|<      [#]",
		"[#][#][#][#][#][#]",
	}, "\n")
	assert.Equal(t, want, Render(state, false))
}

func TestRenderColored(t *testing.T) {
	state := MustParseLayout("####", "#PT#", "####")

	lines := RenderLines(state, true)
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], ansiMarker+"YOU"+ansiReset)
	assert.Contains(t, lines[1], ansiMarker+"END"+ansiReset)
	assert.Contains(t, lines[0], "\x1b[97m[#]"+ansiReset)
}

func TestColorEnabledHonoursNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(os.Stdout))
}
