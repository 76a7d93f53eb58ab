package engine

// Terrain is the static layer of a cell. Values match the classic
// 0/1/2 cell codes.
type Terrain uint8

const (
	TerrainEmpty Terrain = iota // Walkable, lets blasts through
	TerrainSoft                 // Walkable, destroyed by the first blast reaching it
	TerrainHard                 // Blocks movement and blasts, indestructible
)

// String returns a short name for the terrain.
func (t Terrain) String() string {
	switch t {
	case TerrainEmpty:
		return "empty"
	case TerrainSoft:
		return "soft"
	case TerrainHard:
		return "hard"
	default:
		return "unknown"
	}
}

// BombID identifies a bomb for the lifetime of a game. Zero is never issued.
type BombID int

// CellKind enumerates the combined cell view.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellSoftBlock
	CellHardBlock
	CellBombMarker
)

// Cell is the combined view of one grid cell: exactly one of empty, soft
// block, hard block or a bomb marker. A bomb marker hides the terrain
// beneath it; use Grid.TerrainAt to read the static layer directly.
type Cell struct {
	Kind CellKind
	Bomb BombID // Set only when Kind is CellBombMarker
}

// IsBomb reports whether the cell carries a bomb marker.
func (c Cell) IsBomb() bool {
	return c.Kind == CellBombMarker
}

// TerrainMap is a read-only terrain matrix indexed [y][x].
// Snapshots carry one and forecasts read from it.
type TerrainMap [][]Terrain

// Width returns the number of columns.
func (m TerrainMap) Width() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Height returns the number of rows.
func (m TerrainMap) Height() int {
	return len(m)
}

// InBounds reports whether c lies inside the matrix.
func (m TerrainMap) InBounds(c Coord) bool {
	return c.Y >= 0 && c.Y < len(m) && c.X >= 0 && c.X < len(m[c.Y])
}

// At returns the terrain at c. Out-of-bounds cells read as hard blocks.
func (m TerrainMap) At(c Coord) Terrain {
	if !m.InBounds(c) {
		return TerrainHard
	}
	return m[c.Y][c.X]
}
