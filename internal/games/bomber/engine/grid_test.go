package engine

import (
	"errors"
	"math/rand"
	"testing"
)

func TestGenerateGridPillars(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 12345} {
		cfg := DefaultConfig()
		cfg.Seed = seed
		g := GenerateGrid(cfg, rand.New(rand.NewSource(seed)))

		for y := 0; y < g.H; y++ {
			for x := 0; x < g.W; x++ {
				hard := g.TerrainAt(C(x, y)) == TerrainHard
				want := x%2 == 1 && y%2 == 1
				if hard != want {
					t.Fatalf("seed %d: cell (%d,%d) hard=%v, want %v", seed, x, y, hard, want)
				}
			}
		}
	}
}

func TestGenerateGridSafeZone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SoftBlockDensity = 1.0
	g := GenerateGrid(cfg, rand.New(rand.NewSource(3)))

	safe := SafeZone(cfg.Width, cfg.Height)
	if len(safe) != 12 {
		t.Errorf("safe zone has %d cells, expected 12", len(safe))
	}
	for c := range safe {
		if g.TerrainAt(c) != TerrainEmpty {
			t.Errorf("safe cell %s is %s, expected empty", c, g.TerrainAt(c))
		}
	}

	// With full density every other free cell is soft
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			c := C(x, y)
			if safe[c] || IsPillar(c) {
				continue
			}
			if g.TerrainAt(c) != TerrainSoft {
				t.Errorf("cell %s is %s, expected soft", c, g.TerrainAt(c))
			}
		}
	}
}

func TestGenerateGridDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	a := GenerateGrid(cfg, rand.New(rand.NewSource(99)))
	b := GenerateGrid(cfg, rand.New(rand.NewSource(99)))

	if a.String() != b.String() {
		t.Errorf("same seed produced different layouts:\n%s\n\n%s", a, b)
	}
	if a.W*a.H != 143 {
		t.Errorf("default grid has %d cells, expected 143", a.W*a.H)
	}
}

func TestCellAtOutOfBounds(t *testing.T) {
	g := NewGrid(13, 11)

	tests := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 0},
		{"negative y", 0, -1},
		{"x at width", 13, 0},
		{"y at height", 0, 11},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.CellAt(tc.x, tc.y)
			if !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("CellAt(%d, %d) error = %v, expected ErrOutOfBounds", tc.x, tc.y, err)
			}
		})
	}

	if _, err := g.CellAt(12, 10); err != nil {
		t.Errorf("CellAt(12, 10) unexpected error: %v", err)
	}
}

func TestCellAtCombinesLayers(t *testing.T) {
	g, err := GridFromRows([]string{
		".+#",
	})
	if err != nil {
		t.Fatalf("GridFromRows failed: %v", err)
	}

	tests := []struct {
		x    int
		want CellKind
	}{
		{0, CellEmpty},
		{1, CellSoftBlock},
		{2, CellHardBlock},
	}
	for _, tc := range tests {
		cell, err := g.CellAt(tc.x, 0)
		if err != nil {
			t.Fatalf("CellAt(%d, 0) failed: %v", tc.x, err)
		}
		if cell.Kind != tc.want {
			t.Errorf("CellAt(%d, 0).Kind = %d, expected %d", tc.x, cell.Kind, tc.want)
		}
	}

	// A marker hides the soft block but leaves terrain intact
	if err := g.PlaceMarker(C(1, 0), 5); err != nil {
		t.Fatalf("PlaceMarker failed: %v", err)
	}
	cell, _ := g.CellAt(1, 0)
	if !cell.IsBomb() || cell.Bomb != 5 {
		t.Errorf("expected bomb marker 5, got %+v", cell)
	}
	if g.TerrainAt(C(1, 0)) != TerrainSoft {
		t.Errorf("terrain under marker changed to %s", g.TerrainAt(C(1, 0)))
	}

	if err := g.PlaceMarker(C(1, 0), 6); !errors.Is(err, ErrCellOccupied) {
		t.Errorf("second marker error = %v, expected ErrCellOccupied", err)
	}
}

func TestClearMarker(t *testing.T) {
	g := NewGrid(3, 3)
	if err := g.PlaceMarker(C(1, 1), 1); err != nil {
		t.Fatalf("PlaceMarker failed: %v", err)
	}

	if err := g.ClearMarker(C(1, 1), 2); !errors.Is(err, ErrMarkerMismatch) {
		t.Errorf("ClearMarker with wrong id error = %v, expected ErrMarkerMismatch", err)
	}
	if err := g.ClearMarker(C(1, 1), 1); err != nil {
		t.Errorf("ClearMarker failed: %v", err)
	}
	if g.MarkerCount() != 0 {
		t.Errorf("MarkerCount() = %d, expected 0", g.MarkerCount())
	}
	// Clearing again is a no-op
	if err := g.ClearMarker(C(1, 1), 1); err != nil {
		t.Errorf("ClearMarker on empty cell failed: %v", err)
	}
}

func TestGridFromRowsErrors(t *testing.T) {
	tests := []struct {
		name string
		rows []string
	}{
		{"empty", nil},
		{"ragged", []string{"...", ".."}},
		{"unknown rune", []string{".x."}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := GridFromRows(tc.rows); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGridStringRoundTrip(t *testing.T) {
	rows := []string{
		"..+..",
		".#.#.",
		"+...+",
	}
	g, err := GridFromRows(rows)
	if err != nil {
		t.Fatalf("GridFromRows failed: %v", err)
	}
	want := "..+..\n.#.#.\n+...+"
	if g.String() != want {
		t.Errorf("String() = %q, expected %q", g.String(), want)
	}
	if g.Count(TerrainSoft) != 3 || g.Count(TerrainHard) != 2 {
		t.Errorf("counts soft=%d hard=%d, expected 3 and 2", g.Count(TerrainSoft), g.Count(TerrainHard))
	}
}
