package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
)

// ParseTileChances parses the command-line tile list, a JSON array of
// [name, probability] pairs such as [["wall",0.1],["trap",0.05]]. Single
// quotes are accepted in place of double quotes.
func ParseTileChances(raw string) ([]TileChance, error) {
	var pairs [][2]json.RawMessage
	if err := json.Unmarshal([]byte(strings.ReplaceAll(raw, "'", `"`)), &pairs); err != nil {
		return nil, fmt.Errorf("%w: tiles must be [[name, probability], ...]: %v", ErrInvalidOptions, err)
	}

	chances := make([]TileChance, 0, len(pairs))
	for _, pair := range pairs {
		var chance TileChance
		if err := json.Unmarshal(pair[0], &chance.Tile); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
		if err := json.Unmarshal(pair[1], &chance.Probability); err != nil {
			return nil, fmt.Errorf("%w: probability for %s: %v", ErrInvalidOptions, chance.Tile, err)
		}
		if chance.Tile == engine.TileNone {
			return nil, fmt.Errorf("%w: empty tile cannot be placed", ErrInvalidOptions)
		}
		chances = append(chances, chance)
	}
	return chances, nil
}
