package config

import (
	_ "embed"
)

//go:embed defaults/bomber.yaml
var defaultBomberYAML []byte

// DefaultBomberConfig returns the built-in bomb arena configuration.
func DefaultBomberConfig() BomberConfig {
	return BomberConfig{
		Board: BomberBoard{
			Width:       13,
			Height:      11,
			SoftDensity: 0.4,
		},
		Rules: BomberRules{
			Players:      4,
			FuseRounds:   4,
			BlastRange:   1,
			BombCapacity: 1,
			LootChance:   0.2,
			MaxRounds:    100,
		},
		Scoring: BomberScoring{
			SoftBlock: 10,
			Kill:      100,
		},
		Display: BomberDisplay{
			ExplosionMS: 1000,
			TurnDelayMS: 250,
		},
		Agents: BomberAgents{
			Strategies: []string{"tactical", "aggressive", "defensive"},
		},
	}
}
