// Package scenario loads hand-built arenas from YAML. A scenario fixes the
// layout, the spawn cells and any bombs or loot already on the board, so a
// situation can be replayed exactly.
package scenario

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("scenario: invalid scenario")

// Scenario is a parsed scenario file.
type Scenario struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Layout   []string          `yaml:"layout"`
	Spawns   []engine.Coord    `yaml:"spawns,omitempty"`
	Bombs    []Bomb            `yaml:"bombs,omitempty"`
	Loot     []Loot            `yaml:"loot,omitempty"`
	Rules    Rules             `yaml:"rules,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty"`

	FilePath string `yaml:"-"`
}

// Bomb is a bomb already ticking when the scenario starts.
type Bomb struct {
	Owner      engine.PlayerID `yaml:"owner"`
	X          int             `yaml:"x"`
	Y          int             `yaml:"y"`
	Range      int             `yaml:"range,omitempty"` // Zero means the config's blast range
	RoundsLeft int             `yaml:"rounds_left"`
}

// Loot is a power-up lying on the board at start.
type Loot struct {
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
	Kind string `yaml:"kind"`
}

// Rules overrides parts of the base engine config. Nil fields keep the
// base value.
type Rules struct {
	FuseRounds   *int     `yaml:"fuse_rounds,omitempty"`
	BlastRange   *int     `yaml:"blast_range,omitempty"`
	BombCapacity *int     `yaml:"bomb_capacity,omitempty"`
	LootChance   *float64 `yaml:"loot_chance,omitempty"`
	MaxRounds    *int     `yaml:"max_rounds,omitempty"`
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: yaml unmarshal: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the parts of a scenario that do not need a game.
// Placement conflicts are caught by Build.
func (s *Scenario) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalid)
	}
	if _, err := engine.GridFromRows(s.Layout); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, s.ID, err)
	}
	if n := len(s.Spawns); n == 1 || n > 4 {
		return fmt.Errorf("%w: %s: %d spawns, need 2 to 4", ErrInvalid, s.ID, n)
	}
	for i, l := range s.Loot {
		if _, ok := engine.ParseLootKind(l.Kind); !ok {
			return fmt.Errorf("%w: %s: loot %d has unknown kind %q", ErrInvalid, s.ID, i, l.Kind)
		}
	}
	return nil
}

// Width returns the layout width.
func (s *Scenario) Width() int {
	if len(s.Layout) == 0 {
		return 0
	}
	return len(s.Layout[0])
}

// Height returns the layout height.
func (s *Scenario) Height() int {
	return len(s.Layout)
}

// Config applies the scenario's rule overrides to base.
func (s *Scenario) Config(base engine.Config) engine.Config {
	cfg := base
	r := s.Rules
	if r.FuseRounds != nil {
		cfg.FuseRounds = *r.FuseRounds
	}
	if r.BlastRange != nil {
		cfg.BlastRange = *r.BlastRange
	}
	if r.BombCapacity != nil {
		cfg.BombCapacity = *r.BombCapacity
	}
	if r.LootChance != nil {
		cfg.LootChance = *r.LootChance
	}
	if r.MaxRounds != nil {
		cfg.MaxRounds = *r.MaxRounds
	}
	return cfg
}

// Build creates a game on the scenario layout with its bombs and loot in
// place. Without explicit spawns the players start in the layout corners,
// as many as base.Players asks for.
func (s *Scenario) Build(base engine.Config, opts ...engine.Option) (*engine.Game, error) {
	grid, err := engine.GridFromRows(s.Layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, s.ID, err)
	}
	spawns := s.Spawns
	if len(spawns) == 0 {
		n := min(max(base.Players, 2), 4)
		spawns = engine.SpawnPoints(grid.W, grid.H)[:n]
	}

	opts = append([]engine.Option{engine.WithGrid(grid), engine.WithSpawns(spawns...)}, opts...)
	g, err := engine.New(s.Config(base), opts...)
	if err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", s.ID, err)
	}

	for i, b := range s.Bombs {
		if _, err := g.PlantBomb(b.Owner, engine.C(b.X, b.Y), b.Range, b.RoundsLeft); err != nil {
			return nil, fmt.Errorf("scenario: %s: bomb %d: %w", s.ID, i, err)
		}
	}
	for i, l := range s.Loot {
		kind, _ := engine.ParseLootKind(l.Kind)
		if err := g.DropLoot(engine.C(l.X, l.Y), kind); err != nil {
			return nil, fmt.Errorf("scenario: %s: loot %d: %w", s.ID, i, err)
		}
	}
	return g, nil
}
