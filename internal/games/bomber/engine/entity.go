package engine

import "time"

// PlayerID is a stable player identity, 1-based in join order.
type PlayerID int

// Player is an agent on the board. Players are never removed; elimination
// only clears Alive.
type Player struct {
	ID          PlayerID
	Pos         Coord
	Alive       bool
	Score       int
	ActiveBombs int    // Bombs this player owns that are still live
	Capacity    int    // Maximum simultaneous live bombs
	Range       int    // Blast range of newly placed bombs
	CanPickup   bool   // Granted by bomb_pickup loot
	Carried     BombID // Bomb held by this player, zero when empty-handed
}

// HasActiveBomb reports whether the player has at least one live bomb.
func (p Player) HasActiveBomb() bool {
	return p.ActiveBombs > 0
}

// CanPlaceBomb reports whether the player is below its bomb capacity.
func (p Player) CanPlaceBomb() bool {
	return p.Alive && p.ActiveBombs < p.Capacity
}

// BombState tells whether a live bomb sits on the board or in a player's
// hands.
type BombState uint8

const (
	BombArmed   BombState = iota // On the board with a grid marker
	BombCarried                  // Held by Carrier; no marker, cannot detonate
)

// String returns the state name.
func (s BombState) String() string {
	switch s {
	case BombArmed:
		return "armed"
	case BombCarried:
		return "carried"
	default:
		return "unknown"
	}
}

// Bomb is a live bomb. A carried bomb keeps its fuse running but only
// detonates once it has been thrown back onto the board.
type Bomb struct {
	ID          BombID
	Owner       PlayerID
	Pos         Coord // Last board cell; the carrier's cell while carried
	Range       int
	PlacedRound int
	Fuse        int // Rounds from placement to detonation
	State       BombState
	Carrier     PlayerID // Set while State is BombCarried
}

// RoundsSincePlaced returns the full rounds elapsed since placement.
func (b Bomb) RoundsSincePlaced(round int) int {
	return round - b.PlacedRound
}

// RoundsLeft returns the rounds until detonation, clamped at zero.
func (b Bomb) RoundsLeft(round int) int {
	return max(0, b.Fuse-b.RoundsSincePlaced(round))
}

// Due reports whether the bomb should detonate at the given round.
func (b Bomb) Due(round int) bool {
	return b.RoundsSincePlaced(round) >= b.Fuse
}

// LootKind enumerates power-ups dropped by destroyed soft blocks.
type LootKind uint8

const (
	LootExtraBomb   LootKind = iota + 1 // +1 bomb capacity
	LootFlashRadius                     // +1 blast range
	LootBombPickup                      // May pick up and throw bombs
)

// lootKinds lists the kinds a destroyed soft block can drop.
var lootKinds = [...]LootKind{LootExtraBomb, LootFlashRadius, LootBombPickup}

// String returns the loot identifier.
func (k LootKind) String() string {
	switch k {
	case LootExtraBomb:
		return "extra_bomb"
	case LootFlashRadius:
		return "flash_radius"
	case LootBombPickup:
		return "bomb_pickup"
	default:
		return "unknown"
	}
}

// ParseLootKind converts a loot identifier back to a LootKind.
func ParseLootKind(s string) (LootKind, bool) {
	switch s {
	case "extra_bomb":
		return LootExtraBomb, true
	case "flash_radius":
		return LootFlashRadius, true
	case "bomb_pickup":
		return LootBombPickup, true
	}
	return 0, false
}

// apply grants the power-up to p.
func (k LootKind) apply(p *Player) {
	switch k {
	case LootExtraBomb:
		p.Capacity++
	case LootFlashRadius:
		p.Range++
	case LootBombPickup:
		p.CanPickup = true
	}
}

// Loot is a power-up lying on the board.
type Loot struct {
	Pos  Coord    `msgpack:"pos"`
	Kind LootKind `msgpack:"kind"`
}

// Explosion is a presentation record of one detonation. Game logic never
// reads it after creation; it only expires.
type Explosion struct {
	Bomb      BombID        `msgpack:"bomb"`
	Owner     PlayerID      `msgpack:"owner"`
	Cells     []Coord       `msgpack:"cells"`
	CreatedAt time.Time     `msgpack:"created_at"`
	Duration  time.Duration `msgpack:"duration"`
}

// Expired reports whether the record's display time has elapsed at now.
func (e Explosion) Expired(now time.Time) bool {
	return !now.Before(e.CreatedAt.Add(e.Duration))
}

// Covers reports whether the explosion affected c.
func (e Explosion) Covers(c Coord) bool {
	for _, cell := range e.Cells {
		if cell == c {
			return true
		}
	}
	return false
}
