package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/slidegame/game/engine"
	"github.com/wricardo/mcp-training/slidegame/game/generator"
	"github.com/wricardo/mcp-training/slidegame/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigName is preferred as the default puzzle when present
const DefaultConfigName = "classic"

// Manager handles puzzle library loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.PuzzleConfig
	configs       map[string]*engine.PuzzleConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.PuzzleConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// path resolves a config ID to the file holding it, preferring plain JSON
func (m *Manager) path(id string) (string, error) {
	for _, ext := range []string{JSONExt, CompressedExt} {
		p := filepath.Join(m.configDir, id+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrConfigNotFound
}

// LoadConfig loads a configuration by ID. The ID is the file name without
// its .json or .json.zst extension; either extension is also accepted.
func (m *Manager) LoadConfig(name string) (*engine.PuzzleConfig, error) {
	id := ConfigID(name)
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, fmt.Errorf("%w: invalid config name %q", ErrConfigNotFound, name)
	}

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	configPath, err := m.path(id)
	if err != nil {
		return nil, err
	}

	config, err := LoadPuzzleFile(configPath)
	if err != nil {
		if errors.Is(err, ErrInvalidConfig) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[id] = config
	return config, nil
}

// ListConfigs returns information about all valid configurations, sorted by ID
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !IsPuzzleFile(entry.Name()) {
			continue
		}

		id := ConfigID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(id)
		if err != nil {
			// Skip invalid configs
			log.Printf("config: skipping %s: %v", entry.Name(), err)
			continue
		}
		seen[id] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Rows:        config.Map.Rows(),
			Cols:        config.Map.Cols(),
			MaxSteps:    config.StepLimit(),
			Compressed:  strings.HasSuffix(entry.Name(), CompressedExt),
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.PuzzleConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached configurations and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.PuzzleConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig picks classic, else the first valid config, else a
// generated puzzle
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			config = createGeneratedConfig()
		} else if config, err = m.LoadConfig(configs[0].ConfigID); err != nil {
			config = createGeneratedConfig()
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// SaveConfig validates and writes a configuration. Names ending in .zst are
// stored compressed.
func (m *Manager) SaveConfig(name string, config *engine.PuzzleConfig) error {
	id := ConfigID(name)
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: invalid config name %q", ErrInvalidConfig, name)
	}
	if config != nil && config.Name == "" {
		config.Name = id
	}
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename, stale := id+JSONExt, id+CompressedExt
	if strings.HasSuffix(name, ".zst") {
		filename, stale = stale, filename
	}

	if err := WritePuzzleFile(filepath.Join(m.configDir, filename), config); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// Only one encoding of a config may exist
	if err := os.Remove(filepath.Join(m.configDir, stale)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", stale, err)
	}

	// Update cache
	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}

// createGeneratedConfig builds the fallback puzzle from the easy preset
func createGeneratedConfig() *engine.PuzzleConfig {
	preset, err := generator.BuiltinPresets().Get(generator.DefaultPreset)
	if err == nil {
		if puzzle, err := generator.GenerateSolvable(preset.Options(1)); err == nil {
			return &engine.PuzzleConfig{
				Name:        "default",
				Description: "Generated easy puzzle",
				MaxSteps:    preset.MaxSteps,
				Seed:        puzzle.Seed,
				PuzzleState: *puzzle.State,
			}
		}
	}

	return &engine.PuzzleConfig{
		Name:        "default",
		Description: "Minimal fallback puzzle",
		PuzzleState: *engine.MustParseLayout(
			"######",
			"#P.*.#",
			"#.%..#",
			"#..:T#",
			"######",
		),
	}
}
