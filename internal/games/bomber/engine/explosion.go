package engine

import (
	"slices"
	"time"
)

// DestroyedEvent records a soft block removed by a blast.
type DestroyedEvent struct {
	Bomb  BombID
	Owner PlayerID
	Coord Coord
}

// KillEvent records a player eliminated by a cascade.
type KillEvent struct {
	Victim PlayerID
	Bomb   BombID   // First bomb of the cascade whose blast covered the victim
	Killer PlayerID // Zero when no kill bonus was awarded
}

// LootEvent records loot appearing or being burned.
type LootEvent struct {
	Loot      Loot
	Destroyed bool // true when a blast burned existing loot
}

// CascadeResult describes one chain reaction, from its root bomb to the
// final casualty pass.
type CascadeResult struct {
	Root       BombID
	Detonated  []BombID // In detonation order, root first
	Cells      []Coord  // Union footprint, in first-covered order
	Destroyed  []DestroyedEvent
	Kills      []KillEvent
	Lost       []BombID // Carried bombs that left the game with their carrier
	Loot       []LootEvent
	Explosions []Explosion
}

// TickResult contains everything that happened during one Tick.
type TickResult struct {
	Round    int
	Cascades []CascadeResult
	Purged   int // Expired explosion records removed
}

// Detonated returns every bomb that exploded during the tick.
func (r TickResult) Detonated() []BombID {
	var ids []BombID
	for _, c := range r.Cascades {
		ids = append(ids, c.Detonated...)
	}
	return ids
}

// Killed returns every player eliminated during the tick.
func (r TickResult) Killed() []PlayerID {
	var ids []PlayerID
	for _, c := range r.Cascades {
		for _, k := range c.Kills {
			ids = append(ids, k.Victim)
		}
	}
	return ids
}

// blast accumulates the state of a cascade while the worklist drains.
type blast struct {
	result  CascadeResult
	coverer map[Coord]BombID // First bomb whose blast reached each cell
}

func (b *blast) cover(c Coord, id BombID) {
	if _, seen := b.coverer[c]; seen {
		return
	}
	b.coverer[c] = id
	b.result.Cells = append(b.result.Cells, c)
}

// cascade detonates root and every bomb it chains into. Bombs are taken off
// the live set as soon as they are reached, so each bomb detonates exactly
// once. Casualties are resolved once, over the union footprint, after the
// worklist is empty.
//
// The worklist is first in, first out: a bomb walks all four rays before
// any bomb it chained goes off. A soft block within reach of both is
// destroyed, and scored, by the earlier bomb in that order.
func (g *Game) cascade(root Bomb, now time.Time) (CascadeResult, error) {
	b := &blast{
		result:  CascadeResult{Root: root.ID},
		coverer: make(map[Coord]BombID),
	}
	owners := make(map[BombID]PlayerID)

	delete(g.bombs, root.ID)
	queue := []Bomb{root}
	for len(queue) > 0 {
		bomb := queue[0]
		queue = queue[1:]

		if err := g.grid.ClearMarker(bomb.Pos, bomb.ID); err != nil {
			g.log.Error("grid out of sync with bomb set", "bomb", bomb.ID, "pos", bomb.Pos, "err", err)
			return b.result, err
		}
		owners[bomb.ID] = bomb.Owner
		owner := g.player(bomb.Owner)
		if owner != nil && owner.ActiveBombs > 0 {
			owner.ActiveBombs--
		}
		b.result.Detonated = append(b.result.Detonated, bomb.ID)

		// A bomb dropped on a soft block clears it without a bonus.
		if g.grid.TerrainAt(bomb.Pos) == TerrainSoft {
			_ = g.grid.SetTerrain(bomb.Pos, TerrainEmpty)
		}

		cells := []Coord{bomb.Pos}
		b.cover(bomb.Pos, bomb.ID)

		for _, d := range Cardinals {
			dx, dy := d.Delta()
			for step := 1; step <= bomb.Range; step++ {
				c := bomb.Pos.Add(dx*step, dy*step)
				if !g.grid.InBounds(c) || g.grid.TerrainAt(c) == TerrainHard {
					break
				}
				cells = append(cells, c)
				b.cover(c, bomb.ID)

				if other, ok := g.grid.MarkerAt(c); ok {
					if chained, live := g.bombs[other]; live {
						delete(g.bombs, other)
						queue = append(queue, *chained)
					}
					break
				}
				if g.grid.TerrainAt(c) == TerrainSoft {
					_ = g.grid.SetTerrain(c, TerrainEmpty)
					if owner != nil {
						owner.Score += g.cfg.SoftBlockScore
					}
					b.result.Destroyed = append(b.result.Destroyed, DestroyedEvent{
						Bomb:  bomb.ID,
						Owner: bomb.Owner,
						Coord: c,
					})
					break
				}
			}
		}

		b.result.Explosions = append(b.result.Explosions, Explosion{
			Bomb:      bomb.ID,
			Owner:     bomb.Owner,
			Cells:     cells,
			CreatedAt: now,
			Duration:  g.cfg.ExplosionDuration,
		})
		g.log.Debug("bomb detonated", "bomb", bomb.ID, "owner", bomb.Owner, "cells", len(cells))
	}

	g.resolveCasualties(b, owners)
	g.resolveLoot(b)
	g.explosions = append(g.explosions, b.result.Explosions...)
	return b.result, nil
}

// resolveCasualties kills every alive player inside the union footprint,
// then awards kill bonuses. Credit goes to the owner of the first bomb whose
// blast covered the victim's cell, and only when that owner is still alive
// after the whole cascade; player order plays no part. A victim's carried
// bomb is lost with it.
func (g *Game) resolveCasualties(b *blast, owners map[BombID]PlayerID) {
	for i := range g.players {
		p := &g.players[i]
		if !p.Alive {
			continue
		}
		bombID, hit := b.coverer[p.Pos]
		if !hit {
			continue
		}
		p.Alive = false
		b.result.Kills = append(b.result.Kills, KillEvent{Victim: p.ID, Bomb: bombID})
		if lost := g.dropCarried(p); lost != 0 {
			b.result.Lost = append(b.result.Lost, lost)
		}
	}

	for i := range b.result.Kills {
		k := &b.result.Kills[i]
		killer := g.player(owners[k.Bomb])
		if killer == nil || !killer.Alive || killer.ID == k.Victim {
			continue
		}
		killer.Score += g.cfg.KillScore
		k.Killer = killer.ID
		g.log.Debug("player eliminated", "victim", k.Victim, "killer", killer.ID)
	}
}

// resolveLoot burns loot inside the footprint, then rolls drops for the
// soft blocks the cascade destroyed.
func (g *Game) resolveLoot(b *blast) {
	for _, c := range b.result.Cells {
		if kind, ok := g.loot[c]; ok {
			delete(g.loot, c)
			b.result.Loot = append(b.result.Loot, LootEvent{Loot: Loot{Pos: c, Kind: kind}, Destroyed: true})
		}
	}
	if g.cfg.LootChance <= 0 {
		return
	}
	for _, d := range b.result.Destroyed {
		if g.rng.Float64() >= g.cfg.LootChance {
			continue
		}
		kind := lootKinds[g.rng.Intn(len(lootKinds))]
		g.loot[d.Coord] = kind
		b.result.Loot = append(b.result.Loot, LootEvent{Loot: Loot{Pos: d.Coord, Kind: kind}})
	}
}

// dropCarried removes the bomb p is holding and frees its owner's slot.
func (g *Game) dropCarried(p *Player) BombID {
	id := p.Carried
	if id == 0 {
		return 0
	}
	p.Carried = 0
	if b, ok := g.bombs[id]; ok {
		delete(g.bombs, id)
		if owner := g.player(b.Owner); owner != nil && owner.ActiveBombs > 0 {
			owner.ActiveBombs--
		}
	}
	g.log.Debug("carried bomb lost", "bomb", id, "carrier", p.ID)
	return id
}

// dueBombs returns the ids of armed bombs whose fuse has run out, in id
// order. Carried bombs wait until they land.
func (g *Game) dueBombs() []BombID {
	round := g.sched.Rounds()
	var due []BombID
	for id, b := range g.bombs {
		if b.State == BombArmed && b.Due(round) {
			due = append(due, id)
		}
	}
	slices.Sort(due)
	return due
}

// purgeExplosions drops records whose display time has elapsed.
func (g *Game) purgeExplosions(now time.Time) int {
	kept := g.explosions[:0]
	for _, e := range g.explosions {
		if !e.Expired(now) {
			kept = append(kept, e)
		}
	}
	purged := len(g.explosions) - len(kept)
	g.explosions = kept
	return purged
}
