// Package config provides YAML-based configuration loading and difficulty
// presets for the bomb arena.
package config

import (
	"fmt"
	"time"

	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
)

// BomberConfig contains all configuration for a bomb arena match.
type BomberConfig struct {
	Board   BomberBoard   `yaml:"board"`
	Rules   BomberRules   `yaml:"rules"`
	Scoring BomberScoring `yaml:"scoring"`
	Display BomberDisplay `yaml:"display"`
	Agents  BomberAgents  `yaml:"agents"`
}

// BomberBoard defines the arena layout parameters.
type BomberBoard struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	SoftDensity float64 `yaml:"soft_density"` // Chance a free cell starts as a soft block
}

// BomberRules defines bomb and turn rules.
type BomberRules struct {
	Players      int     `yaml:"players"`
	FuseRounds   int     `yaml:"fuse_rounds"`
	BlastRange   int     `yaml:"blast_range"`
	BombCapacity int     `yaml:"bomb_capacity"`
	LootChance   float64 `yaml:"loot_chance"`
	MaxRounds    int     `yaml:"max_rounds"` // 0 disables the cap
}

// BomberScoring defines score bonuses.
type BomberScoring struct {
	SoftBlock int `yaml:"soft_block"`
	Kill      int `yaml:"kill"`
}

// BomberDisplay defines presentation timing.
type BomberDisplay struct {
	ExplosionMS int `yaml:"explosion_ms"` // How long blast cells stay visible
	TurnDelayMS int `yaml:"turn_delay_ms"` // Pause between CPU turns in the TUI
}

// BomberAgents defines which strategies drive CPU seats.
type BomberAgents struct {
	Strategies []string `yaml:"strategies"` // One per CPU seat, cycled if short
}

// ExplosionDuration returns the blast display time.
func (c BomberConfig) ExplosionDuration() time.Duration {
	return time.Duration(c.Display.ExplosionMS) * time.Millisecond
}

// TurnDelay returns the pause between CPU turns.
func (c BomberConfig) TurnDelay() time.Duration {
	return time.Duration(c.Display.TurnDelayMS) * time.Millisecond
}

// StrategyFor returns the strategy name for the n-th CPU seat (0-based).
func (c BomberConfig) StrategyFor(n int) string {
	if len(c.Agents.Strategies) == 0 {
		return ""
	}
	return c.Agents.Strategies[n%len(c.Agents.Strategies)]
}

// ToEngine converts the file configuration into engine rules.
func (c BomberConfig) ToEngine(seed int64) engine.Config {
	return engine.Config{
		Width:             c.Board.Width,
		Height:            c.Board.Height,
		Players:           c.Rules.Players,
		FuseRounds:        c.Rules.FuseRounds,
		BlastRange:        c.Rules.BlastRange,
		BombCapacity:      c.Rules.BombCapacity,
		SoftBlockDensity:  c.Board.SoftDensity,
		LootChance:        c.Rules.LootChance,
		SoftBlockScore:    c.Scoring.SoftBlock,
		KillScore:         c.Scoring.Kill,
		MaxRounds:         c.Rules.MaxRounds,
		ExplosionDuration: c.ExplosionDuration(),
		Seed:              seed,
	}
}

// Validate checks the configuration against the engine's rules.
func (c BomberConfig) Validate() error {
	if err := c.ToEngine(1).Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Display.ExplosionMS < 0 || c.Display.TurnDelayMS < 0 {
		return fmt.Errorf("config: display timings must be non-negative")
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParsePreset validates a preset name. An empty name means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal or hard)", s)
	}
}
