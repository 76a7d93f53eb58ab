package engine

import (
	"fmt"
	"time"
)

// Config holds every tunable rule of a game. It is passed by value into New,
// so independent games never share rule state.
type Config struct {
	Width   int // Grid width in cells
	Height  int // Grid height in cells
	Players int // Number of players (2..4)

	FuseRounds   int // Full rounds between placement and detonation
	BlastRange   int // Starting blast range for every player
	BombCapacity int // Starting number of simultaneous bombs per player

	SoftBlockDensity float64 // Probability that a free cell starts as a soft block
	LootChance       float64 // Probability that a destroyed soft block drops loot

	SoftBlockScore int // Awarded to the bomb owner per destroyed soft block
	KillScore      int // Awarded to the bomb owner per opponent killed

	MaxRounds         int           // Game ends after this many rounds (0 = no cap)
	ExplosionDuration time.Duration // Display lifetime of an explosion record

	Seed int64 // World generation and loot RNG seed
}

// DefaultConfig returns the classic four-player 13x11 arena.
func DefaultConfig() Config {
	return Config{
		Width:             13,
		Height:            11,
		Players:           4,
		FuseRounds:        4,
		BlastRange:        1,
		BombCapacity:      1,
		SoftBlockDensity:  0.4,
		LootChance:        0.2,
		SoftBlockScore:    10,
		KillScore:         100,
		MaxRounds:         100,
		ExplosionDuration: time.Second,
		Seed:              1,
	}
}

// Validate checks that the config describes a playable game.
// Generated grids need odd dimensions so every corner lands on an even cell
// and stays clear of the pillar pattern.
func (c Config) Validate() error {
	switch {
	case c.Width < 3 || c.Height < 3:
		return fmt.Errorf("%w: grid %dx%d is smaller than 3x3", ErrInvalidConfig, c.Width, c.Height)
	case c.Width%2 == 0 || c.Height%2 == 0:
		return fmt.Errorf("%w: grid %dx%d must have odd dimensions", ErrInvalidConfig, c.Width, c.Height)
	}
	return c.validateRules()
}

// validateRules checks everything except the grid shape, which custom
// layouts supply themselves.
func (c Config) validateRules() error {
	switch {
	case c.Players < 2 || c.Players > 4:
		return fmt.Errorf("%w: players must be between 2 and 4, got %d", ErrInvalidConfig, c.Players)
	case c.FuseRounds < 1:
		return fmt.Errorf("%w: fuse must be at least 1 round", ErrInvalidConfig)
	case c.BlastRange < 1:
		return fmt.Errorf("%w: blast range must be at least 1", ErrInvalidConfig)
	case c.BombCapacity < 1:
		return fmt.Errorf("%w: bomb capacity must be at least 1", ErrInvalidConfig)
	case c.SoftBlockDensity < 0 || c.SoftBlockDensity > 1:
		return fmt.Errorf("%w: soft block density %.2f outside [0,1]", ErrInvalidConfig, c.SoftBlockDensity)
	case c.LootChance < 0 || c.LootChance > 1:
		return fmt.Errorf("%w: loot chance %.2f outside [0,1]", ErrInvalidConfig, c.LootChance)
	case c.SoftBlockScore < 0 || c.KillScore < 0:
		return fmt.Errorf("%w: score bonuses must be non-negative", ErrInvalidConfig)
	case c.MaxRounds < 0:
		return fmt.Errorf("%w: max rounds must be non-negative", ErrInvalidConfig)
	}
	return nil
}
