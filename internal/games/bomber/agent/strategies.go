package agent

import (
	"math/rand"

	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
)

// unreachable scores cells no path leads to.
const unreachable = 1 << 20

// Random plays any action that leaves an escape, or any legal action when
// none does.
type Random struct {
	rng *rand.Rand
}

func (*Random) Name() string { return "random" }

// Decide implements Strategy.
func (s *Random) Decide(snap engine.Snapshot, self engine.PlayerID) engine.Action {
	opts := Options(snap, self)
	if safe := safeOptions(opts); len(safe) > 0 {
		return pick(s.rng, safe)
	}
	return pick(s.rng, opts)
}

// Aggressive hunts the nearest opponent and bombs as soon as one is in
// reach.
type Aggressive struct {
	rng *rand.Rand
}

func (*Aggressive) Name() string { return "aggressive" }

// Decide implements Strategy.
func (s *Aggressive) Decide(snap engine.Snapshot, self engine.PlayerID) engine.Action {
	safe := safeOptions(Options(snap, self))
	if len(safe) == 0 {
		return engine.Stay()
	}
	if b, ok := findOption(safe, engine.ActionBomb); ok && b.Hits > 0 {
		return b.Action
	}
	for _, o := range safe {
		if o.Action.Kind == engine.ActionThrow && o.Hits > 0 {
			return o.Action
		}
	}

	p, _ := snap.Player(self)
	dist := distanceField(snap.Terrain, opponents(snap, self))
	here := distOr(dist, p.Pos)

	var closer []Option
	bestDist := here
	for _, o := range safe {
		if o.Action.Kind != engine.ActionMove {
			continue
		}
		d := distOr(dist, o.Dest)
		switch {
		case d < bestDist:
			closer, bestDist = []Option{o}, d
		case d == bestDist && d < here:
			closer = append(closer, o)
		}
	}
	if len(closer) > 0 {
		return pick(s.rng, closer)
	}

	if b, ok := findOption(safe, engine.ActionBomb); ok && b.Soft > 0 {
		return b.Action
	}
	if stay, ok := findOption(safe, engine.ActionStay); ok {
		return stay.Action
	}
	return pick(s.rng, safe)
}

// Defensive keeps its distance from bombs and opponents and only bombs to
// clear soft blocks.
type Defensive struct {
	rng *rand.Rand
}

func (*Defensive) Name() string { return "defensive" }

// Decide implements Strategy.
func (s *Defensive) Decide(snap engine.Snapshot, self engine.PlayerID) engine.Action {
	safe := safeOptions(Options(snap, self))
	if len(safe) == 0 {
		return engine.Stay()
	}
	stay, canStay := findOption(safe, engine.ActionStay)
	danger := NewDanger(snap.Terrain, snap.Bombs)
	threat := distanceField(snap.Terrain, opponents(snap, self))

	// Leave any cell a pending blast will reach.
	if _, hit := danger.Earliest(stay.Dest); !canStay || hit {
		return best(s.rng, safe, func(o Option) float64 {
			if o.Action.Kind == engine.ActionBomb {
				return -unreachable
			}
			score := float64(distOr(threat, o.Dest))
			if _, hit := danger.Earliest(o.Dest); !hit {
				score += unreachable
			}
			return score
		})
	}

	// Back away from opponents that come too close.
	if here := distOr(threat, stay.Dest); here <= 2 {
		var away []Option
		for _, o := range safe {
			if o.Action.Kind == engine.ActionMove && distOr(threat, o.Dest) > here {
				if _, hit := danger.Earliest(o.Dest); !hit {
					away = append(away, o)
				}
			}
		}
		if len(away) > 0 {
			return pick(s.rng, away)
		}
	}

	if b, ok := findOption(safe, engine.ActionBomb); ok && b.Soft > 0 {
		return b.Action
	}
	return stay.Action
}

// Tactical scores every option: survival first, then kills, soft blocks
// and loot, then progress towards the nearest objective.
type Tactical struct {
	rng *rand.Rand
}

func (*Tactical) Name() string { return "tactical" }

// Decide implements Strategy.
func (s *Tactical) Decide(snap engine.Snapshot, self engine.PlayerID) engine.Action {
	opts := Options(snap, self)
	if len(opts) == 0 {
		return engine.Stay()
	}
	targets := distanceField(snap.Terrain, objectives(snap, self))
	p, _ := snap.Player(self)
	here := distOr(targets, p.Pos)

	return best(s.rng, opts, func(o Option) float64 {
		if !o.Safe {
			return -1000
		}
		score := 0.0
		switch o.Action.Kind {
		case engine.ActionBomb:
			score += 60*float64(o.Hits) + 15*float64(o.Soft)
			if o.Hits == 0 && o.Soft == 0 {
				score -= 20
			}
		case engine.ActionThrow:
			// A held bomb ties up a slot, so any safe throw beats waiting.
			score += 60*float64(o.Hits) + 15*float64(o.Soft) + 5
		case engine.ActionPickup:
			if !stayed(opts) {
				score += 30
			}
		case engine.ActionMove:
			if o.Loot {
				score += 40
			}
			score += 5 * float64(here-distOr(targets, o.Dest))
		}
		return score
	})
}

// stayed reports whether staying put is a safe option.
func stayed(opts []Option) bool {
	stay, ok := findOption(opts, engine.ActionStay)
	return ok && stay.Safe
}

// objectives lists the cells worth walking to: loot, opponents, and the
// open cells next to soft blocks.
func objectives(snap engine.Snapshot, self engine.PlayerID) []engine.Coord {
	out := opponents(snap, self)
	for _, l := range snap.Loot {
		out = append(out, l.Pos)
	}
	for y, row := range snap.Terrain {
		for x, t := range row {
			if t != engine.TerrainSoft {
				continue
			}
			for _, n := range walkable(snap.Terrain, engine.C(x, y)) {
				if snap.Terrain.At(n) == engine.TerrainEmpty {
					out = append(out, n)
				}
			}
		}
	}
	return out
}

func distOr(dist map[engine.Coord]int, c engine.Coord) int {
	if d, ok := dist[c]; ok {
		return d
	}
	return unreachable
}
