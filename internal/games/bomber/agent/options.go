package agent

import (
	"slices"

	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
)

// Option is one legal action with what the player would know about it.
type Option struct {
	Action engine.Action
	Dest   engine.Coord // Where the player stands after the action
	Safe   bool         // Some escape exists after taking it
	Soft   int          // Soft blocks a bomb placed now would destroy
	Hits   int          // Opponents currently inside that blast
	Loot   bool         // Dest carries loot
}

// Options enumerates the legal actions for self, in a fixed order: stay,
// moves in engine.Cardinals order, bomb, pickup, then throws in
// engine.Cardinals order.
func Options(snap engine.Snapshot, self engine.PlayerID) []Option {
	p, ok := snap.Player(self)
	if !ok || !p.Alive {
		return nil
	}
	danger := NewDanger(snap.Terrain, snap.Bombs)

	opts := []Option{{
		Action: engine.Stay(),
		Dest:   p.Pos,
		Safe:   danger.Survives(p.Pos),
	}}
	for _, d := range snap.Forecast().Neighbors(p.Pos) {
		dest := p.Pos.Step(d)
		_, loot := snap.LootAt(dest)
		opts = append(opts, Option{
			Action: engine.Move(d),
			Dest:   dest,
			Safe:   danger.Survives(dest),
			Loot:   loot,
		})
	}

	if _, taken := snap.BombAt(p.Pos); p.CanPlaceBomb() && !taken {
		bomb := engine.BombView{Owner: self, Pos: p.Pos, Range: p.Range, RoundsLeft: snap.FuseRounds}
		withBomb := NewDanger(snap.Terrain, append(append([]engine.BombView(nil), snap.Bombs...), bomb))
		soft, hits := blastPreview(snap, self, bomb)
		opts = append(opts, Option{
			Action: engine.PlaceBomb(),
			Dest:   p.Pos,
			Safe:   withBomb.Survives(p.Pos),
			Soft:   soft,
			Hits:   hits,
		})
	}

	if b, ok := snap.BombAt(p.Pos); ok && p.CanPickup && p.Carrying == 0 {
		opts = append(opts, Option{
			Action: engine.Pickup(),
			Dest:   p.Pos,
			Safe:   NewDanger(snap.Terrain, without(snap.Bombs, b.ID)).Survives(p.Pos),
		})
	}
	if carried, ok := carriedBomb(snap, p); ok {
		rest := without(snap.Bombs, carried.ID)
		for _, d := range engine.Cardinals {
			to, _, ok := snap.ThrowLanding(p.Pos, d)
			if !ok {
				continue
			}
			landed := carried
			landed.Pos, landed.State, landed.Carrier = to, engine.BombArmed, 0
			soft, hits := blastPreview(snap, self, landed)
			opts = append(opts, Option{
				Action: engine.Throw(d),
				Dest:   p.Pos,
				Safe:   NewDanger(snap.Terrain, append(slices.Clip(rest), landed)).Survives(p.Pos),
				Soft:   soft,
				Hits:   hits,
			})
		}
	}
	return opts
}

// carriedBomb returns the bomb p is holding.
func carriedBomb(snap engine.Snapshot, p engine.PlayerView) (engine.BombView, bool) {
	if p.Carrying == 0 {
		return engine.BombView{}, false
	}
	for _, b := range snap.Bombs {
		if b.ID == p.Carrying {
			return b, true
		}
	}
	return engine.BombView{}, false
}

// without returns a copy of bombs minus id.
func without(bombs []engine.BombView, id engine.BombID) []engine.BombView {
	out := make([]engine.BombView, 0, len(bombs))
	for _, b := range bombs {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

// blastPreview walks b's rays the way a detonation would: other bombs and
// soft blocks stop a ray after being reached, hard blocks before.
func blastPreview(snap engine.Snapshot, self engine.PlayerID, b engine.BombView) (soft, hits int) {
	cells := []engine.Coord{b.Pos}
	for _, d := range engine.Cardinals {
		dx, dy := d.Delta()
		for i := 1; i <= b.Range; i++ {
			c := b.Pos.Add(dx*i, dy*i)
			t := snap.Terrain.At(c)
			if t == engine.TerrainHard {
				break
			}
			cells = append(cells, c)
			if _, ok := snap.BombAt(c); ok {
				break
			}
			if t == engine.TerrainSoft {
				soft++
				break
			}
		}
	}
	for _, c := range cells {
		for _, p := range snap.PlayersAt(c) {
			if p.ID != self {
				hits++
			}
		}
	}
	return soft, hits
}

func safeOptions(opts []Option) []Option {
	var out []Option
	for _, o := range opts {
		if o.Safe {
			out = append(out, o)
		}
	}
	return out
}

func findOption(opts []Option, kind engine.ActionKind) (Option, bool) {
	for _, o := range opts {
		if o.Action.Kind == kind {
			return o, true
		}
	}
	return Option{}, false
}

// opponents returns the positions of alive players other than self.
func opponents(snap engine.Snapshot, self engine.PlayerID) []engine.Coord {
	var out []engine.Coord
	for _, p := range snap.Players {
		if p.Alive && p.ID != self {
			out = append(out, p.Pos)
		}
	}
	return out
}
