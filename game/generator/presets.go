package generator

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
)

// Preset is a named set of generation parameters
type Preset struct {
	Name     string       `json:"name" yaml:"name"`
	Width    int          `json:"width" yaml:"width"`
	Height   int          `json:"height" yaml:"height"`
	Tiles    []TileChance `json:"tiles" yaml:"tiles"`
	MinSteps int          `json:"min_steps" yaml:"min_steps"`
	MaxSteps int          `json:"max_steps" yaml:"max_steps"`
}

// Options converts the preset into generator options with the given seed
func (p Preset) Options(seed int64) Options {
	return Options{
		Width:    p.Width,
		Height:   p.Height,
		Tiles:    append([]TileChance(nil), p.Tiles...),
		Seed:     seed,
		MinSteps: p.MinSteps,
		MaxSteps: p.MaxSteps,
	}
}

// DefaultPreset is used when no preset is named
const DefaultPreset = "easy"

// Presets holds presets by lowercase name
type Presets map[string]Preset

// BuiltinPresets returns the easy and normal presets
func BuiltinPresets() Presets {
	return Presets{
		"easy": {
			Name:   "easy",
			Width:  8,
			Height: 6,
			Tiles: []TileChance{
				{Tile: engine.Wall, Probability: 2.0 / 15.0},
				{Tile: engine.Trap, Probability: 1.0 / 15.0},
			},
			MinSteps: 4,
			MaxSteps: 10,
		},
		"normal": {
			Name:   "normal",
			Width:  12,
			Height: 9,
			Tiles: []TileChance{
				{Tile: engine.Wall, Probability: 0.1},
				{Tile: engine.Trap, Probability: 0.1},
				{Tile: engine.Loose, Probability: 0.1},
				{Tile: engine.Sticky, Probability: 0.1},
			},
			MinSteps: 4,
			MaxSteps: 13,
		},
	}
}

// Get looks up a preset by case-insensitive name
func (p Presets) Get(name string) (Preset, error) {
	if name == "" {
		name = DefaultPreset
	}
	preset, ok := p[strings.ToLower(name)]
	if !ok {
		return Preset{}, fmt.Errorf("%w: unknown preset %q (available: %s)", ErrInvalidOptions, name, strings.Join(p.Names(), ", "))
	}
	return preset, nil
}

// Names returns the sorted preset names
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type presetFile struct {
	Presets []struct {
		Name     string `yaml:"name"`
		Width    int    `yaml:"width"`
		Height   int    `yaml:"height"`
		MinSteps int    `yaml:"min_steps"`
		MaxSteps int    `yaml:"max_steps"`
		Tiles    []struct {
			Tile        string  `yaml:"tile"`
			Probability float64 `yaml:"probability"`
		} `yaml:"tiles"`
	} `yaml:"presets"`
}

// ParsePresets decodes a YAML presets document and overlays it on the
// built-in presets. Entries with a built-in name replace that preset.
func ParsePresets(raw []byte) (Presets, error) {
	var file presetFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("presets.yaml: %w", err)
	}

	presets := BuiltinPresets()
	for i, entry := range file.Presets {
		name := strings.ToLower(strings.TrimSpace(entry.Name))
		if name == "" {
			return nil, fmt.Errorf("presets.yaml: preset %d has no name", i)
		}
		preset := Preset{
			Name:     name,
			Width:    entry.Width,
			Height:   entry.Height,
			MinSteps: entry.MinSteps,
			MaxSteps: entry.MaxSteps,
		}
		for _, t := range entry.Tiles {
			tile, err := engine.ParseTile(t.Tile)
			if err != nil {
				return nil, fmt.Errorf("presets.yaml: preset %q: %w", name, err)
			}
			preset.Tiles = append(preset.Tiles, TileChance{Tile: tile, Probability: t.Probability})
		}
		if err := preset.Options(1).Validate(); err != nil {
			return nil, fmt.Errorf("presets.yaml: preset %q: %w", name, err)
		}
		presets[name] = preset
	}
	return presets, nil
}

// LoadPresets reads a YAML presets file. An empty path yields the built-ins.
func LoadPresets(path string) (Presets, error) {
	if path == "" {
		return BuiltinPresets(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePresets(raw)
}
