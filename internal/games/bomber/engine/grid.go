package engine

import (
	"fmt"
	"math/rand"
	"strings"
)

// Grid is the board. It keeps terrain and bomb occupancy in two separate
// layers so clearing a marker can never rewrite terrain.
// Terrain is stored row-major: index = y*W + x.
type Grid struct {
	W int
	H int

	terrain []Terrain
	markers map[Coord]BombID
}

// NewGrid creates an all-empty grid.
func NewGrid(w, h int) *Grid {
	return &Grid{
		W:       w,
		H:       h,
		terrain: make([]Terrain, w*h),
		markers: make(map[Coord]BombID),
	}
}

// index converts a coordinate to a flat array index.
func (g *Grid) index(c Coord) int {
	return c.Y*g.W + c.X
}

// InBounds returns true if the coordinate is within [0,W)x[0,H).
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.W && c.Y >= 0 && c.Y < g.H
}

// CellAt returns the combined view of the cell at (x, y).
func (g *Grid) CellAt(x, y int) (Cell, error) {
	c := C(x, y)
	if !g.InBounds(c) {
		return Cell{}, fmt.Errorf("%w: %s", ErrOutOfBounds, c)
	}
	if id, ok := g.markers[c]; ok {
		return Cell{Kind: CellBombMarker, Bomb: id}, nil
	}
	switch g.terrain[g.index(c)] {
	case TerrainSoft:
		return Cell{Kind: CellSoftBlock}, nil
	case TerrainHard:
		return Cell{Kind: CellHardBlock}, nil
	default:
		return Cell{Kind: CellEmpty}, nil
	}
}

// TerrainAt returns the static layer at c.
// Out-of-bounds cells read as hard blocks.
func (g *Grid) TerrainAt(c Coord) Terrain {
	if !g.InBounds(c) {
		return TerrainHard
	}
	return g.terrain[g.index(c)]
}

// SetTerrain overwrites the static layer at c. Bomb markers are untouched.
func (g *Grid) SetTerrain(c Coord, t Terrain) error {
	if !g.InBounds(c) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, c)
	}
	g.terrain[g.index(c)] = t
	return nil
}

// MarkerAt returns the bomb marking c, if any.
func (g *Grid) MarkerAt(c Coord) (BombID, bool) {
	id, ok := g.markers[c]
	return id, ok
}

// PlaceMarker records bomb id at c. A cell holds at most one marker.
func (g *Grid) PlaceMarker(c Coord, id BombID) error {
	if !g.InBounds(c) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, c)
	}
	if _, taken := g.markers[c]; taken {
		return fmt.Errorf("%w: %s", ErrCellOccupied, c)
	}
	g.markers[c] = id
	return nil
}

// ClearMarker removes the marker for bomb id at c.
// An absent marker is not an error; a marker naming another bomb is.
func (g *Grid) ClearMarker(c Coord, id BombID) error {
	got, ok := g.markers[c]
	if !ok {
		return nil
	}
	if got != id {
		return fmt.Errorf("%w: cell %s holds bomb %d, expected %d", ErrMarkerMismatch, c, got, id)
	}
	delete(g.markers, c)
	return nil
}

// MarkerCount returns the number of bomb markers on the grid.
func (g *Grid) MarkerCount() int {
	return len(g.markers)
}

// TerrainMap returns a copy of the static layer as a [y][x] matrix.
func (g *Grid) TerrainMap() TerrainMap {
	m := make(TerrainMap, g.H)
	for y := range g.H {
		row := make([]Terrain, g.W)
		copy(row, g.terrain[y*g.W:(y+1)*g.W])
		m[y] = row
	}
	return m
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	terrain := make([]Terrain, len(g.terrain))
	copy(terrain, g.terrain)
	markers := make(map[Coord]BombID, len(g.markers))
	for c, id := range g.markers {
		markers[c] = id
	}
	return &Grid{W: g.W, H: g.H, terrain: terrain, markers: markers}
}

// Count returns how many cells carry the given terrain.
func (g *Grid) Count(t Terrain) int {
	n := 0
	for _, cell := range g.terrain {
		if cell == t {
			n++
		}
	}
	return n
}

// String renders the terrain layer using the layout alphabet.
func (g *Grid) String() string {
	var sb strings.Builder
	for y := range g.H {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := range g.W {
			sb.WriteByte(layoutRune(g.terrain[g.index(C(x, y))]))
		}
	}
	return sb.String()
}

// Layout alphabet used by GridFromRows and Grid.String.
const (
	LayoutEmpty = '.'
	LayoutSoft  = '+'
	LayoutHard  = '#'
)

func layoutRune(t Terrain) byte {
	switch t {
	case TerrainSoft:
		return LayoutSoft
	case TerrainHard:
		return LayoutHard
	default:
		return LayoutEmpty
	}
}

// GridFromRows builds a grid from text rows using '.', '+' and '#'.
// All rows must have the same length.
func GridFromRows(rows []string) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("engine: empty layout")
	}
	w := len(rows[0])
	g := NewGrid(w, len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("engine: layout row %d has width %d, want %d", y, len(row), w)
		}
		for x := 0; x < w; x++ {
			var t Terrain
			switch row[x] {
			case LayoutEmpty:
				t = TerrainEmpty
			case LayoutSoft:
				t = TerrainSoft
			case LayoutHard:
				t = TerrainHard
			default:
				return nil, fmt.Errorf("engine: layout row %d col %d: unknown cell %q", y, x, row[x])
			}
			g.terrain[g.index(C(x, y))] = t
		}
	}
	return g, nil
}

// SpawnPoints returns the four corners in player order:
// top-left, top-right, bottom-left, bottom-right.
func SpawnPoints(w, h int) []Coord {
	return []Coord{C(0, 0), C(w-1, 0), C(0, h-1), C(w-1, h-1)}
}

// SafeZone returns every spawn corner plus its in-bounds orthogonal
// neighbours. Generation never puts soft blocks there.
func SafeZone(w, h int) map[Coord]bool {
	safe := make(map[Coord]bool, 12)
	for _, corner := range SpawnPoints(w, h) {
		safe[corner] = true
		for _, d := range Cardinals {
			n := corner.Step(d)
			if n.X >= 0 && n.X < w && n.Y >= 0 && n.Y < h {
				safe[n] = true
			}
		}
	}
	return safe
}

// IsPillar reports whether c belongs to the fixed hard-block pattern.
func IsPillar(c Coord) bool {
	return c.X%2 == 1 && c.Y%2 == 1
}

// GenerateGrid builds a fresh arena. Pillars sit where both coordinates are
// odd; every other cell outside the safe zone becomes a soft block with the
// configured density. Cells are visited row by row so a seed always yields
// the same layout.
func GenerateGrid(cfg Config, rng *rand.Rand) *Grid {
	g := NewGrid(cfg.Width, cfg.Height)
	safe := SafeZone(cfg.Width, cfg.Height)
	for y := range cfg.Height {
		for x := range cfg.Width {
			c := C(x, y)
			switch {
			case IsPillar(c):
				g.terrain[g.index(c)] = TerrainHard
			case safe[c]:
				// Always left open for initial mobility
			case rng.Float64() < cfg.SoftBlockDensity:
				g.terrain[g.index(c)] = TerrainSoft
			}
		}
	}
	return g
}
