package engine

// PlayerView is the read-only projection of a player.
type PlayerView struct {
	ID            PlayerID `msgpack:"id"`
	Pos           Coord    `msgpack:"pos"`
	Alive         bool     `msgpack:"alive"`
	Score         int      `msgpack:"score"`
	HasActiveBomb bool     `msgpack:"has_active_bomb"`
	ActiveBombs   int      `msgpack:"active_bombs"`
	Capacity      int      `msgpack:"capacity"`
	Range         int      `msgpack:"range"`
	CanPickup     bool     `msgpack:"can_pickup"`
	Carrying      BombID   `msgpack:"carrying,omitempty"`
}

// CanPlaceBomb reports whether the player is alive and below capacity.
func (p PlayerView) CanPlaceBomb() bool {
	return p.Alive && p.ActiveBombs < p.Capacity
}

// Snapshot captures the complete observable game state. It shares no
// memory with the game and is safe to hand to renderers, agents and
// encoders.
type Snapshot struct {
	Width         int          `msgpack:"width"`
	Height        int          `msgpack:"height"`
	FuseRounds    int          `msgpack:"fuse_rounds"` // Fuse given to newly placed bombs
	Terrain       TerrainMap   `msgpack:"terrain"`
	Players       []PlayerView `msgpack:"players"`
	Bombs         []BombView   `msgpack:"bombs"`
	Loot          []Loot       `msgpack:"loot"`
	Explosions    []Explosion  `msgpack:"explosions"`
	TurnCount     int          `msgpack:"turn_count"`
	RoundCount    int          `msgpack:"round_count"`
	CurrentPlayer PlayerID     `msgpack:"current_player"`
	Over          bool         `msgpack:"over"`
	Winner        PlayerID     `msgpack:"winner"` // Zero while running or on a draw
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	players := make([]PlayerView, len(g.players))
	for i, p := range g.players {
		players[i] = PlayerView{
			ID:            p.ID,
			Pos:           p.Pos,
			Alive:         p.Alive,
			Score:         p.Score,
			HasActiveBomb: p.HasActiveBomb(),
			ActiveBombs:   p.ActiveBombs,
			Capacity:      p.Capacity,
			Range:         p.Range,
			CanPickup:     p.CanPickup,
			Carrying:      p.Carried,
		}
	}
	explosions := make([]Explosion, len(g.explosions))
	for i, e := range g.explosions {
		e.Cells = append([]Coord(nil), e.Cells...)
		explosions[i] = e
	}
	winner, _ := g.Winner()

	return Snapshot{
		Width:         g.grid.W,
		Height:        g.grid.H,
		FuseRounds:    g.cfg.FuseRounds,
		Terrain:       g.grid.TerrainMap(),
		Players:       players,
		Bombs:         g.Bombs(),
		Loot:          g.Loot(),
		Explosions:    explosions,
		TurnCount:     g.sched.Turns(),
		RoundCount:    g.sched.Rounds(),
		CurrentPlayer: g.CurrentPlayer(),
		Over:          g.Over(),
		Winner:        winner,
	}
}

// Forecast returns a lethality forecast derived from the snapshot alone.
func (s Snapshot) Forecast() Forecast {
	return NewForecast(s.Terrain, s.Bombs)
}

// Player returns the view of player id.
func (s Snapshot) Player(id PlayerID) (PlayerView, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerView{}, false
}

// SafeMoves mirrors Game.SafeMoves using only snapshot data.
func (s Snapshot) SafeMoves(id PlayerID) []Dir {
	p, ok := s.Player(id)
	if !ok || !p.Alive {
		return nil
	}
	return s.Forecast().SafeMoves(p.Pos)
}

// DangerousMoves mirrors Game.DangerousMoves using only snapshot data.
func (s Snapshot) DangerousMoves(id PlayerID) []Dir {
	p, ok := s.Player(id)
	if !ok || !p.Alive {
		return nil
	}
	return s.Forecast().DangerousMoves(p.Pos)
}

// BombAt returns the armed bomb on c, if any. Carried bombs have no cell
// of their own.
func (s Snapshot) BombAt(c Coord) (BombView, bool) {
	for _, b := range s.Bombs {
		if b.Armed() && b.Pos == c {
			return b, true
		}
	}
	return BombView{}, false
}

// ThrowLanding returns where a bomb thrown from from in direction d would
// land, using the same rule as Game.Throw.
func (s Snapshot) ThrowLanding(from Coord, d Dir) (to Coord, wrapped, ok bool) {
	if !d.Valid() || s.Width <= 0 || s.Height <= 0 {
		return Coord{}, false, false
	}
	return throwLanding(s.Width, s.Height, from, d, func(c Coord) bool {
		_, marked := s.BombAt(c)
		return !marked && s.Terrain.At(c) == TerrainEmpty
	})
}

// LootAt returns the loot on c, if any.
func (s Snapshot) LootAt(c Coord) (Loot, bool) {
	for _, l := range s.Loot {
		if l.Pos == c {
			return l, true
		}
	}
	return Loot{}, false
}

// PlayersAt returns the alive players standing on c.
func (s Snapshot) PlayersAt(c Coord) []PlayerView {
	var out []PlayerView
	for _, p := range s.Players {
		if p.Alive && p.Pos == c {
			out = append(out, p)
		}
	}
	return out
}
