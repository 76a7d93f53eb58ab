package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := parseBomber(defaultBomberYAML)
	if err != nil {
		t.Fatalf("embedded defaults do not parse: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultBomberConfig()) {
		t.Errorf("embedded defaults = %+v\nhardcoded = %+v", cfg, DefaultBomberConfig())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should be valid: %v", err)
	}
}

func TestToEngineMatchesEngineDefaults(t *testing.T) {
	got := DefaultBomberConfig().ToEngine(1)
	if got != engine.DefaultConfig() {
		t.Errorf("ToEngine() = %+v\nexpected %+v", got, engine.DefaultConfig())
	}
}

func TestLoadBomberCustomPathOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.yaml")
	data := []byte("board:\n  width: 9\n  height: 7\nrules:\n  players: 2\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadBomber(path)
	if err != nil {
		t.Fatalf("LoadBomber failed: %v", err)
	}
	if cfg.Board.Width != 9 || cfg.Board.Height != 7 || cfg.Rules.Players != 2 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Rules.FuseRounds != 4 || cfg.Scoring.Kill != 100 {
		t.Errorf("unset keys should keep defaults: %+v", cfg)
	}
}

func TestLoadBomberCustomPathErrors(t *testing.T) {
	dir := t.TempDir()
	badYAML := filepath.Join(dir, "bad.yaml")
	evenBoard := filepath.Join(dir, "even.yaml")
	if err := os.WriteFile(badYAML, []byte("board: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(evenBoard, []byte("board:\n  width: 12\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadBomber(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing custom file should fail")
	}
	if _, err := LoadBomber(badYAML); err == nil {
		t.Error("malformed YAML should fail")
	}
	if _, err := LoadBomber(evenBoard); !errors.Is(err, engine.ErrInvalidConfig) {
		t.Errorf("even board error = %v, expected ErrInvalidConfig", err)
	}
}

func TestApplyBomberPreset(t *testing.T) {
	tests := []struct {
		preset   DifficultyPreset
		fuse     int
		density  float64
		strategy string
	}{
		{DifficultyEasy, 5, 0.3, "random"},
		{DifficultyNormal, 4, 0.4, "tactical"},
		{DifficultyHard, 3, 0.5, "tactical"},
	}

	for _, tc := range tests {
		t.Run(string(tc.preset), func(t *testing.T) {
			cfg := DefaultBomberConfig()
			ApplyBomberPreset(&cfg, tc.preset)
			if cfg.Rules.FuseRounds != tc.fuse || cfg.Board.SoftDensity != tc.density {
				t.Errorf("fuse=%d density=%.2f, expected %d %.2f", cfg.Rules.FuseRounds, cfg.Board.SoftDensity, tc.fuse, tc.density)
			}
			if cfg.StrategyFor(0) != tc.strategy {
				t.Errorf("first CPU strategy = %q, expected %q", cfg.StrategyFor(0), tc.strategy)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset produced invalid config: %v", err)
			}
		})
	}
}

func TestParsePreset(t *testing.T) {
	if p, err := ParsePreset(""); err != nil || p != DifficultyNormal {
		t.Errorf("ParsePreset(\"\") = %q, %v", p, err)
	}
	if p, err := ParsePreset("hard"); err != nil || p != DifficultyHard {
		t.Errorf("ParsePreset(hard) = %q, %v", p, err)
	}
	if _, err := ParsePreset("nightmare"); err == nil {
		t.Error("unknown preset should fail")
	}
}

func TestStrategyForCycles(t *testing.T) {
	cfg := DefaultBomberConfig()
	cfg.Agents.Strategies = []string{"a", "b"}
	got := []string{cfg.StrategyFor(0), cfg.StrategyFor(1), cfg.StrategyFor(2)}
	if !reflect.DeepEqual(got, []string{"a", "b", "a"}) {
		t.Errorf("StrategyFor cycle = %v", got)
	}
	cfg.Agents.Strategies = nil
	if cfg.StrategyFor(0) != "" {
		t.Error("no strategies should yield empty name")
	}
}
