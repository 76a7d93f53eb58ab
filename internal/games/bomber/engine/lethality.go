package engine

import "sort"

// BombView is the read-only projection of a live bomb used for forecasting
// and snapshots. A carried bomb reports its carrier's cell.
type BombView struct {
	ID         BombID    `msgpack:"id"`
	Owner      PlayerID  `msgpack:"owner"`
	Pos        Coord     `msgpack:"pos"`
	Range      int       `msgpack:"range"`
	RoundsLeft int       `msgpack:"rounds_left"`
	State      BombState `msgpack:"state"`
	Carrier    PlayerID  `msgpack:"carrier,omitempty"`
}

// Armed reports whether the bomb is on the board.
func (b BombView) Armed() bool {
	return b.State == BombArmed
}

// ArmedBombs returns the bombs that are on the board, in input order.
func ArmedBombs(bombs []BombView) []BombView {
	out := make([]BombView, 0, len(bombs))
	for _, b := range bombs {
		if b.Armed() {
			out = append(out, b)
		}
	}
	return out
}

// BombDistance pairs a bomb with its Manhattan distance from a probe cell.
type BombDistance struct {
	Bomb     BombView
	Distance int
}

// Forecast answers lethality queries over a fixed terrain and bomb set.
// It treats every bomb's footprint statically: only hard blocks cut a ray,
// and soft blocks that an earlier bomb would clear are not accounted for.
// The result is pessimistic by construction.
type Forecast struct {
	Terrain TerrainMap
	Bombs   []BombView // Armed bombs only
}

// NewForecast creates a forecast over the given terrain and bombs. Carried
// bombs cannot detonate and are left out.
func NewForecast(terrain TerrainMap, bombs []BombView) Forecast {
	return Forecast{Terrain: terrain, Bombs: ArmedBombs(bombs)}
}

// InFootprint reports whether c lies inside b's static blast footprint.
// A hard block is reported as covered when the ray reaches it, although
// Footprint, which lists the cells a blast can occupy, leaves hard blocks
// out. No player can stand there, so move safety is the same either way.
func (f Forecast) InFootprint(b BombView, c Coord) bool {
	if c == b.Pos {
		return true
	}
	var d Dir
	switch {
	case c.X == b.Pos.X && c.Y < b.Pos.Y:
		d = DirUp
	case c.X == b.Pos.X && c.Y > b.Pos.Y:
		d = DirDown
	case c.Y == b.Pos.Y && c.X < b.Pos.X:
		d = DirLeft
	case c.Y == b.Pos.Y && c.X > b.Pos.X:
		d = DirRight
	default:
		return false
	}
	dx, dy := d.Delta()
	for step := 1; step <= b.Range; step++ {
		cell := b.Pos.Add(dx*step, dy*step)
		if cell == c {
			return true
		}
		if f.Terrain.At(cell) == TerrainHard {
			return false
		}
	}
	return false
}

// Footprint returns every in-bounds cell of b's static footprint,
// centre first.
func (f Forecast) Footprint(b BombView) []Coord {
	cells := []Coord{b.Pos}
	for _, d := range Cardinals {
		dx, dy := d.Delta()
		for step := 1; step <= b.Range; step++ {
			c := b.Pos.Add(dx*step, dy*step)
			if !f.Terrain.InBounds(c) || f.Terrain.At(c) == TerrainHard {
				break
			}
			cells = append(cells, c)
		}
	}
	return cells
}

// IsLethal reports whether some bomb due within horizon rounds (inclusive)
// covers c.
func (f Forecast) IsLethal(c Coord, horizon int) bool {
	if !f.Terrain.InBounds(c) {
		return false
	}
	for _, b := range f.Bombs {
		if b.RoundsLeft > horizon {
			continue
		}
		if f.InFootprint(b, c) {
			return true
		}
	}
	return false
}

// Neighbors returns the in-bounds, non-hard cardinal neighbours of c, in
// Cardinals order.
func (f Forecast) Neighbors(c Coord) []Dir {
	dirs := make([]Dir, 0, len(Cardinals))
	for _, d := range Cardinals {
		n := c.Step(d)
		if f.Terrain.InBounds(n) && f.Terrain.At(n) != TerrainHard {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// SafeMoves returns the neighbour directions from c that are not lethal
// within one round.
func (f Forecast) SafeMoves(c Coord) []Dir {
	safe, _ := f.partition(c)
	return safe
}

// DangerousMoves returns the neighbour directions from c that are lethal
// within one round.
func (f Forecast) DangerousMoves(c Coord) []Dir {
	_, dangerous := f.partition(c)
	return dangerous
}

func (f Forecast) partition(c Coord) (safe, dangerous []Dir) {
	safe = make([]Dir, 0, len(Cardinals))
	dangerous = make([]Dir, 0, len(Cardinals))
	for _, d := range f.Neighbors(c) {
		if f.IsLethal(c.Step(d), 1) {
			dangerous = append(dangerous, d)
		} else {
			safe = append(safe, d)
		}
	}
	return safe, dangerous
}

// AdjacentBombs lists bombs within Manhattan distance r of c, nearest
// first, ties broken by bomb id. Walls are ignored.
func (f Forecast) AdjacentBombs(c Coord, r int) []BombDistance {
	var near []BombDistance
	for _, b := range f.Bombs {
		if d := c.Manhattan(b.Pos); d <= r {
			near = append(near, BombDistance{Bomb: b, Distance: d})
		}
	}
	sort.Slice(near, func(i, j int) bool {
		if near[i].Distance != near[j].Distance {
			return near[i].Distance < near[j].Distance
		}
		return near[i].Bomb.ID < near[j].Bomb.ID
	})
	return near
}
