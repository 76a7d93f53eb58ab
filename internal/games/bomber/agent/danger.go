package agent

import (
	"slices"

	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
)

// Danger records, for each cell, the rounds (counted from now, 1 = end of
// the current round) at which a blast will cover it. Chains are followed:
// a bomb inside another bomb's footprint inherits the earlier timer.
type Danger struct {
	terrain engine.TerrainMap
	hits    map[engine.Coord][]int
	last    int
}

// NewDanger builds the danger field for terrain and bombs. Carried bombs
// are ignored until they land.
func NewDanger(terrain engine.TerrainMap, bombs []engine.BombView) *Danger {
	bombs = engine.ArmedBombs(bombs)
	f := engine.NewForecast(terrain, bombs)

	timers := make([]int, len(bombs))
	for i, b := range bombs {
		timers[i] = max(1, b.RoundsLeft)
	}

	// Propagate chain detonations until stable.
	for changed := true; changed; {
		changed = false
		for i, b := range bombs {
			for j, other := range bombs {
				if i == j || timers[j] <= timers[i] {
					continue
				}
				if f.InFootprint(b, other.Pos) {
					timers[j] = timers[i]
					changed = true
				}
			}
		}
	}

	d := &Danger{terrain: terrain, hits: make(map[engine.Coord][]int)}
	for i, b := range bombs {
		for _, c := range f.Footprint(b) {
			if !slices.Contains(d.hits[c], timers[i]) {
				d.hits[c] = append(d.hits[c], timers[i])
			}
		}
		d.last = max(d.last, timers[i])
	}
	return d
}

// HitAt reports whether c is covered by a blast t rounds from now.
func (d *Danger) HitAt(c engine.Coord, t int) bool {
	return slices.Contains(d.hits[c], t)
}

// Earliest returns the first round at which c is hit.
func (d *Danger) Earliest(c engine.Coord) (int, bool) {
	times := d.hits[c]
	if len(times) == 0 {
		return 0, false
	}
	return slices.Min(times), true
}

// clearAfter reports whether c sees no blast later than round t.
func (d *Danger) clearAfter(c engine.Coord, t int) bool {
	for _, at := range d.hits[c] {
		if at > t {
			return false
		}
	}
	return true
}

type step struct {
	pos engine.Coord
	t   int
}

// Survives reports whether a player standing on start at the end of this
// round can dodge every pending blast by moving or waiting one cell per
// round afterwards.
func (d *Danger) Survives(start engine.Coord) bool {
	if d.HitAt(start, 1) {
		return false
	}
	queue := []step{{start, 1}}
	seen := map[step]bool{queue[0]: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.t >= d.last || d.clearAfter(cur.pos, cur.t) {
			return true
		}
		for _, next := range append(walkable(d.terrain, cur.pos), cur.pos) {
			s := step{next, cur.t + 1}
			if seen[s] || d.HitAt(next, s.t) {
				continue
			}
			seen[s] = true
			queue = append(queue, s)
		}
	}
	return false
}

// walkable returns the in-bounds, non-hard neighbours of c.
func walkable(terrain engine.TerrainMap, c engine.Coord) []engine.Coord {
	out := make([]engine.Coord, 0, len(engine.Cardinals))
	for _, dir := range engine.Cardinals {
		n := c.Step(dir)
		if terrain.InBounds(n) && terrain.At(n) != engine.TerrainHard {
			out = append(out, n)
		}
	}
	return out
}

// distanceField returns walking distances from the nearest source.
func distanceField(terrain engine.TerrainMap, sources []engine.Coord) map[engine.Coord]int {
	dist := make(map[engine.Coord]int, len(sources))
	queue := make([]engine.Coord, 0, len(sources))
	for _, s := range sources {
		if _, ok := dist[s]; ok || !terrain.InBounds(s) {
			continue
		}
		dist[s] = 0
		queue = append(queue, s)
	}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, n := range walkable(terrain, c) {
			if _, ok := dist[n]; ok {
				continue
			}
			dist[n] = dist[c] + 1
			queue = append(queue, n)
		}
	}
	return dist
}
