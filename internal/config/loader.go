package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppDir is the per-user directory holding configs, scores and host keys.
const AppDir = ".bombarena"

// LoadBomber loads the bomb arena configuration.
// Search order: customPath -> ~/.bombarena/configs/bomber.yaml ->
// ./configs/bomber.yaml -> embedded default -> hardcoded default.
// Files are overlaid on the defaults, so they only need the keys they change.
func LoadBomber(customPath string) (BomberConfig, error) {
	// Try custom path first; failures here are reported
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return BomberConfig{}, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		cfg, err := parseBomber(data)
		if err != nil {
			return BomberConfig{}, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		if err := cfg.Validate(); err != nil {
			return BomberConfig{}, fmt.Errorf("%s: %w", customPath, err)
		}
		return cfg, nil
	}

	candidates := []string{
		userConfigPath("bomber.yaml"),
		filepath.Join("configs", "bomber.yaml"),
	}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if cfg, err := parseBomber(data); err == nil && cfg.Validate() == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parseBomber(defaultBomberYAML)
	if err != nil {
		return DefaultBomberConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

func parseBomber(data []byte) (BomberConfig, error) {
	cfg := DefaultBomberConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return BomberConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, AppDir, "configs", filename)
}

// ApplyBomberPreset tunes the configuration for a difficulty preset.
// Normal leaves the loaded values untouched.
func ApplyBomberPreset(cfg *BomberConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Board.SoftDensity = 0.3
		cfg.Rules.FuseRounds = 5
		cfg.Rules.LootChance = 0.35
		cfg.Agents.Strategies = []string{"random", "defensive"}
	case DifficultyHard:
		cfg.Board.SoftDensity = 0.5
		cfg.Rules.FuseRounds = 3
		cfg.Rules.LootChance = 0.1
		cfg.Agents.Strategies = []string{"tactical", "aggressive"}
	}
}
