package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
)

const sampleYAML = `
id: sample
name: Sample
layout:
  - "....."
  - ".#.#."
  - "....."
spawns:
  - {x: 0, y: 0}
  - {x: 4, y: 2}
bombs:
  - {owner: 1, x: 2, y: 0, range: 2, rounds_left: 0}
  - {owner: 2, x: 4, y: 0, rounds_left: 3}
loot:
  - {x: 0, y: 2, kind: extra_bomb}
rules:
  fuse_rounds: 2
  max_rounds: 10
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if s.ID != "sample" || s.Name != "Sample" {
		t.Errorf("id=%q name=%q", s.ID, s.Name)
	}
	if s.Width() != 5 || s.Height() != 3 {
		t.Errorf("size = %dx%d, expected 5x3", s.Width(), s.Height())
	}
	if len(s.Spawns) != 2 || s.Spawns[1] != engine.C(4, 2) {
		t.Errorf("spawns = %v", s.Spawns)
	}
	if len(s.Bombs) != 2 || s.Bombs[0].Range != 2 || s.Bombs[1].RoundsLeft != 3 {
		t.Errorf("bombs = %+v", s.Bombs)
	}

	cfg := s.Config(engine.DefaultConfig())
	if cfg.FuseRounds != 2 || cfg.MaxRounds != 10 {
		t.Errorf("overrides not applied: fuse=%d max=%d", cfg.FuseRounds, cfg.MaxRounds)
	}
	if cfg.BlastRange != engine.DefaultConfig().BlastRange {
		t.Error("unset rule should keep the base value")
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing id", "layout: [\"...\"]"},
		{"ragged layout", "id: x\nlayout: [\"...\", \"..\"]"},
		{"unknown cell", "id: x\nlayout: [\".?.\"]"},
		{"single spawn", "id: x\nlayout: [\"...\"]\nspawns: [{x: 0, y: 0}]"},
		{"bad loot", "id: x\nlayout: [\"...\"]\nloot: [{x: 1, y: 0, kind: shield}]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.doc)); !errors.Is(err, ErrInvalid) {
				t.Errorf("Parse error = %v, expected ErrInvalid", err)
			}
		})
	}

	if _, err := Parse([]byte("id: [unterminated")); err == nil {
		t.Error("expected a YAML error")
	}
}

func TestBuild(t *testing.T) {
	s, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cfg := engine.DefaultConfig()
	cfg.LootChance = 0
	g, err := s.Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(g.Players()) != 2 {
		t.Fatalf("expected 2 players, got %d", len(g.Players()))
	}
	bombs := g.Bombs()
	if len(bombs) != 2 {
		t.Fatalf("expected 2 bombs, got %d", len(bombs))
	}
	if bombs[0].Range != 2 || bombs[0].RoundsLeft != 0 {
		t.Errorf("first bomb = %+v", bombs[0])
	}
	if bombs[1].Range != cfg.BlastRange || bombs[1].RoundsLeft != 3 {
		t.Errorf("second bomb = %+v, expected default range", bombs[1])
	}
	if loot := g.Loot(); len(loot) != 1 || loot[0].Kind != engine.LootExtraBomb {
		t.Errorf("loot = %+v", loot)
	}

	// Bomb 1 is due at once and its blast reaches bomb 2 at (4,0)
	res, err := g.Tick()
	if err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if len(res.Detonated()) != 2 {
		t.Errorf("detonated %v, expected a two-bomb chain", res.Detonated())
	}
	if p, _ := g.Player(1); p.Alive {
		t.Error("player 1 stood in its own blast and should be dead")
	}
}

func TestBuildRejectsBadPlacement(t *testing.T) {
	s := &Scenario{
		ID:     "bad",
		Layout: []string{"...", ".#.", "..."},
		Bombs:  []Bomb{{Owner: 1, X: 1, Y: 1, RoundsLeft: 1}},
	}
	if _, err := s.Build(engine.DefaultConfig()); !errors.Is(err, engine.ErrBlocked) {
		t.Errorf("Build error = %v, expected ErrBlocked", err)
	}

	s.Bombs = []Bomb{{Owner: 9, X: 0, Y: 1, RoundsLeft: 1}}
	if _, err := s.Build(engine.DefaultConfig()); !errors.Is(err, engine.ErrUnknownPlayer) {
		t.Errorf("Build error = %v, expected ErrUnknownPlayer", err)
	}
}

func TestBuildDefaultsToCorners(t *testing.T) {
	s := &Scenario{ID: "open", Layout: []string{".....", ".....", "....."}}
	cfg := engine.DefaultConfig()
	cfg.Players = 3
	g, err := s.Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	players := g.Players()
	if len(players) != 3 {
		t.Fatalf("expected 3 players, got %d", len(players))
	}
	if players[2].Pos != engine.C(0, 2) {
		t.Errorf("player 3 at %s, expected (0,2)", players[2].Pos)
	}
}

func TestBuiltinScenarios(t *testing.T) {
	all, err := Builtin().LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	want := []string{"chain", "corridor", "loot_run"}
	if len(all) != len(want) {
		t.Fatalf("loaded %d scenarios, expected %d", len(all), len(want))
	}
	for i, s := range all {
		if s.ID != want[i] {
			t.Errorf("scenario %d = %q, expected %q", i, s.ID, want[i])
		}
		if _, err := s.Build(engine.DefaultConfig()); err != nil {
			t.Errorf("Build(%s) failed: %v", s.ID, err)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load(path) failed: %v", err)
	}
	if s.ID != "sample" || s.FilePath != "custom.yml" {
		t.Errorf("id=%q path=%q", s.ID, s.FilePath)
	}

	if s, err := Load("chain"); err != nil || s.ID != "chain" {
		t.Errorf("Load(chain) = %v, %v", s, err)
	}
	if _, err := Load("nowhere"); err == nil {
		t.Error("expected an error for an unknown scenario")
	}
}
