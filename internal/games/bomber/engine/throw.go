package engine

import "fmt"

// Landing describes where a thrown bomb came down.
type Landing struct {
	Bomb    BombID `msgpack:"bomb"`
	From    Coord  `msgpack:"from"`
	To      Coord  `msgpack:"to"`
	Wrapped bool   `msgpack:"wrapped"` // The flight crossed the board edge
}

// throwLanding flies from one cell past from in direction d, wrapping at
// the border, and stops on the first cell open reports true for. A throw
// never comes back to from; ok is false when the whole line is closed.
func throwLanding(w, h int, from Coord, d Dir, open func(Coord) bool) (to Coord, wrapped, ok bool) {
	dx, dy := d.Delta()
	n := w
	if dx == 0 {
		n = h
	}
	for step := 1; step < n; step++ {
		x, y := from.X+dx*step, from.Y+dy*step
		c := C((x%w+w)%w, (y%h+h)%h)
		if open(c) {
			return c, c != C(x, y), true
		}
	}
	return Coord{}, false, false
}

// Pickup lifts the bomb on player id's cell. The player needs the
// bomb_pickup power-up and free hands. Any player's bomb may be lifted; it
// keeps its owner and its fuse, loses its marker and cannot detonate until
// it is thrown.
func (g *Game) Pickup(id PlayerID) (BombID, error) {
	p, err := g.actor(id)
	if err != nil {
		return 0, err
	}
	if !p.CanPickup {
		return 0, fmt.Errorf("%w: %d", ErrCannotPickup, id)
	}
	if p.Carried != 0 {
		return 0, fmt.Errorf("%w: player %d holds bomb %d", ErrAlreadyCarrying, id, p.Carried)
	}
	bombID, ok := g.grid.MarkerAt(p.Pos)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoBombHere, p.Pos)
	}
	b, live := g.bombs[bombID]
	if !live || b.State != BombArmed {
		g.log.Error("grid out of sync with bomb set", "bomb", bombID, "pos", p.Pos)
		return 0, fmt.Errorf("%w: cell %s names bomb %d", ErrMarkerMismatch, p.Pos, bombID)
	}
	if err := g.grid.ClearMarker(p.Pos, bombID); err != nil {
		return 0, err
	}

	b.State = BombCarried
	b.Carrier = id
	p.Carried = bombID
	g.log.Debug("bomb picked up", "bomb", bombID, "player", id, "pos", p.Pos)
	return bombID, nil
}

// Throw sends player id's carried bomb in direction d. It flies over
// blocks, bombs and players and lands on the first empty cell without a
// bomb, wrapping around the board edge. The bomb is armed again where it
// lands; a fuse that ran out in flight fires at the next tick.
func (g *Game) Throw(id PlayerID, d Dir) (Landing, error) {
	p, err := g.actor(id)
	if err != nil {
		return Landing{}, err
	}
	if !d.Valid() {
		return Landing{}, fmt.Errorf("%w: %d", ErrInvalidDirection, d)
	}
	if p.Carried == 0 {
		return Landing{}, fmt.Errorf("%w: %d", ErrNotCarrying, id)
	}
	b, live := g.bombs[p.Carried]
	if !live {
		return Landing{}, fmt.Errorf("%w: carried bomb %d is gone", ErrMarkerMismatch, p.Carried)
	}

	to, wrapped, ok := throwLanding(g.grid.W, g.grid.H, p.Pos, d, func(c Coord) bool {
		_, marked := g.grid.MarkerAt(c)
		return !marked && g.grid.TerrainAt(c) == TerrainEmpty
	})
	if !ok {
		return Landing{}, fmt.Errorf("%w: from %s going %s", ErrNoLanding, p.Pos, d)
	}
	if err := g.grid.PlaceMarker(to, b.ID); err != nil {
		return Landing{}, err
	}

	b.Pos = to
	b.State = BombArmed
	b.Carrier = 0
	p.Carried = 0
	g.log.Debug("bomb thrown", "bomb", b.ID, "player", id, "from", p.Pos, "to", to, "wrapped", wrapped)
	return Landing{Bomb: b.ID, From: p.Pos, To: to, Wrapped: wrapped}, nil
}
