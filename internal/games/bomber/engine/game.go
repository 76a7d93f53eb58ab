package engine

import (
	"fmt"
	"io"
	"math/rand"
	"slices"
	"time"

	"github.com/charmbracelet/log"
)

// ActionKind is the kind of whole action a player submits on its turn.
type ActionKind uint8

const (
	ActionStay   ActionKind = iota // Do nothing this turn
	ActionMove                     // Step one cell in Dir
	ActionBomb                     // Place a bomb on the current cell
	ActionPickup                   // Lift the bomb on the current cell
	ActionThrow                    // Throw the carried bomb in Dir
)

// String returns the action name.
func (k ActionKind) String() string {
	switch k {
	case ActionStay:
		return "stay"
	case ActionMove:
		return "move"
	case ActionBomb:
		return "bomb"
	case ActionPickup:
		return "pickup"
	case ActionThrow:
		return "throw"
	default:
		return "unknown"
	}
}

// Action is one turn's worth of input for a player.
type Action struct {
	Kind ActionKind
	Dir  Dir // Used by ActionMove and ActionThrow
}

// Stay returns the no-op action.
func Stay() Action { return Action{Kind: ActionStay} }

// Move returns a move action in direction d.
func Move(d Dir) Action { return Action{Kind: ActionMove, Dir: d} }

// PlaceBomb returns a bomb placement action.
func PlaceBomb() Action { return Action{Kind: ActionBomb} }

// Pickup returns the action lifting the bomb under the player.
func Pickup() Action { return Action{Kind: ActionPickup} }

// Throw returns the action throwing the carried bomb in direction d.
func Throw(d Dir) Action { return Action{Kind: ActionThrow, Dir: d} }

// String returns a readable form such as "move up".
func (a Action) String() string {
	if a.Kind == ActionMove || a.Kind == ActionThrow {
		return fmt.Sprintf("%s %s", a.Kind, a.Dir)
	}
	return a.Kind.String()
}

// TurnResult reports what happened after an Act call.
type TurnResult struct {
	Player     PlayerID
	Action     Action
	RoundEnded bool
	Tick       *TickResult // Set when the round ended
	Picked     *Loot       // Loot collected by the move, if any
	Placed     BombID      // Bomb placed by the action, if any
	Lifted     BombID      // Bomb picked up by the action, if any
	Thrown     *Landing    // Where a thrown bomb came down
	Over       bool
	NextPlayer PlayerID
}

// Game is the facade over grid, entities, scheduler and explosions.
// It owns all mutable state and is not safe for concurrent use; callers
// read Snapshot values and submit whole actions.
type Game struct {
	cfg        Config
	grid       *Grid
	players    []Player
	bombs      map[BombID]*Bomb
	nextBomb   BombID
	loot       map[Coord]LootKind
	explosions []Explosion
	sched      *Scheduler
	rng        *rand.Rand
	now        func() time.Time
	log        *log.Logger

	layout *Grid
	spawns []Coord
}

// Option customizes a Game at construction.
type Option func(*Game)

// WithLogger routes engine diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.log = l
		}
	}
}

// WithClock replaces time.Now for explosion records.
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		if now != nil {
			g.now = now
		}
	}
}

// WithGrid uses a prepared layout instead of generating one.
// The grid is cloned; the caller keeps ownership of its copy.
func WithGrid(grid *Grid) Option {
	return func(g *Game) {
		g.layout = grid
	}
}

// WithSpawns places players at the given cells, in id order. The number of
// spawns sets the number of players.
func WithSpawns(spawns ...Coord) Option {
	return func(g *Game) {
		g.spawns = slices.Clone(spawns)
	}
}

// New creates a game from cfg.
func New(cfg Config, opts ...Option) (*Game, error) {
	g := &Game{
		cfg:      cfg,
		bombs:    make(map[BombID]*Bomb),
		nextBomb: 1,
		loot:     make(map[Coord]LootKind),
		now:      time.Now,
		log:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.rng = rand.New(rand.NewSource(cfg.Seed))

	if g.layout != nil {
		g.cfg.Width, g.cfg.Height = g.layout.W, g.layout.H
		g.grid = g.layout.Clone()
		g.layout = nil
	}
	if len(g.spawns) > 0 {
		g.cfg.Players = len(g.spawns)
	}

	if g.grid != nil {
		if err := g.cfg.validateRules(); err != nil {
			return nil, err
		}
	} else {
		if err := g.cfg.Validate(); err != nil {
			return nil, err
		}
		g.grid = GenerateGrid(g.cfg, g.rng)
	}

	spawns := g.spawns
	if len(spawns) == 0 {
		spawns = SpawnPoints(g.cfg.Width, g.cfg.Height)[:g.cfg.Players]
	}
	g.players = make([]Player, len(spawns))
	for i, pos := range spawns {
		if !g.grid.InBounds(pos) {
			return nil, fmt.Errorf("%w: spawn %s for player %d", ErrOutOfBounds, pos, i+1)
		}
		if g.grid.TerrainAt(pos) == TerrainHard {
			return nil, fmt.Errorf("%w: spawn %s for player %d", ErrBlocked, pos, i+1)
		}
		g.players[i] = Player{
			ID:       PlayerID(i + 1),
			Pos:      pos,
			Alive:    true,
			Capacity: g.cfg.BombCapacity,
			Range:    g.cfg.BlastRange,
		}
	}
	g.sched = NewScheduler(len(g.players))

	g.log.Debug("game created",
		"size", fmt.Sprintf("%dx%d", g.cfg.Width, g.cfg.Height),
		"players", len(g.players),
		"seed", g.cfg.Seed,
		"soft", g.grid.Count(TerrainSoft),
	)
	return g, nil
}

// Config returns the rules this game was built with.
func (g *Game) Config() Config {
	return g.cfg
}

// Grid exposes the board for read access. Callers must not mutate it.
func (g *Game) Grid() *Grid {
	return g.grid
}

// player returns a pointer to the player with id, or nil.
func (g *Game) player(id PlayerID) *Player {
	idx := int(id) - 1
	if idx < 0 || idx >= len(g.players) {
		return nil
	}
	return &g.players[idx]
}

// Player returns a copy of the player with id.
func (g *Game) Player(id PlayerID) (Player, bool) {
	p := g.player(id)
	if p == nil {
		return Player{}, false
	}
	return *p, true
}

// Players returns copies of all players in id order.
func (g *Game) Players() []Player {
	return slices.Clone(g.players)
}

// actor returns the player with id if it may act.
func (g *Game) actor(id PlayerID) (*Player, error) {
	p := g.player(id)
	if p == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, id)
	}
	if !p.Alive {
		return nil, fmt.Errorf("%w: %d", ErrPlayerDead, id)
	}
	return p, nil
}

// Move steps player id one cell in direction d. Soft blocks and bomb
// markers are walkable; hard blocks and the border are not. Moving onto
// loot collects it. The grid is never modified.
func (g *Game) Move(id PlayerID, d Dir) (*Loot, error) {
	p, err := g.actor(id)
	if err != nil {
		return nil, err
	}
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, d)
	}
	target := p.Pos.Step(d)
	if !g.grid.InBounds(target) {
		return nil, fmt.Errorf("%w: %s", ErrOutOfBounds, target)
	}
	if g.grid.TerrainAt(target) == TerrainHard {
		return nil, fmt.Errorf("%w: %s", ErrBlocked, target)
	}
	p.Pos = target

	kind, ok := g.loot[target]
	if !ok {
		return nil, nil
	}
	delete(g.loot, target)
	kind.apply(p)
	g.log.Debug("loot collected", "player", id, "kind", kind, "pos", target)
	return &Loot{Pos: target, Kind: kind}, nil
}

// PlaceBomb arms a bomb on player id's cell. It fails when the player is at
// capacity or the cell already carries a bomb.
func (g *Game) PlaceBomb(id PlayerID) (BombID, error) {
	p, err := g.actor(id)
	if err != nil {
		return 0, err
	}
	if p.ActiveBombs >= p.Capacity {
		return 0, fmt.Errorf("%w: player %d has %d live", ErrBombActive, id, p.ActiveBombs)
	}
	return g.arm(p.ID, p.Pos, p.Range, g.cfg.FuseRounds)
}

// PlantBomb arms a bomb with an explicit range and rounds left, bypassing
// capacity checks. It is meant for setting up scenarios before play.
func (g *Game) PlantBomb(owner PlayerID, pos Coord, blastRange, roundsLeft int) (BombID, error) {
	if g.player(owner) == nil {
		return 0, fmt.Errorf("%w: %d", ErrUnknownPlayer, owner)
	}
	if blastRange < 1 {
		blastRange = g.cfg.BlastRange
	}
	if g.grid.TerrainAt(pos) == TerrainHard {
		return 0, fmt.Errorf("%w: %s", ErrBlocked, pos)
	}
	return g.arm(owner, pos, blastRange, max(0, roundsLeft))
}

func (g *Game) arm(owner PlayerID, pos Coord, blastRange, fuse int) (BombID, error) {
	id := g.nextBomb
	if err := g.grid.PlaceMarker(pos, id); err != nil {
		return 0, err
	}
	g.nextBomb++
	g.bombs[id] = &Bomb{
		ID:          id,
		Owner:       owner,
		Pos:         pos,
		Range:       blastRange,
		PlacedRound: g.sched.Rounds(),
		Fuse:        fuse,
	}
	g.player(owner).ActiveBombs++
	g.log.Debug("bomb placed", "bomb", id, "owner", owner, "pos", pos, "fuse", fuse)
	return id, nil
}

// DropLoot puts loot on an open cell. It is meant for scenario setup.
func (g *Game) DropLoot(pos Coord, kind LootKind) error {
	if !g.grid.InBounds(pos) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, pos)
	}
	if g.grid.TerrainAt(pos) == TerrainHard {
		return fmt.Errorf("%w: %s", ErrBlocked, pos)
	}
	g.loot[pos] = kind
	return nil
}

// alive is the scheduler's view of a seat.
func (g *Game) alive(i int) bool {
	return g.players[i].Alive
}

// AdvanceTurn passes the turn to the next alive player. It returns true
// when a round completed.
func (g *Game) AdvanceTurn() bool {
	return g.sched.Advance(g.alive)
}

// Tick detonates every due bomb and purges expired explosion records.
// Each due bomb that has not already been consumed by an earlier chain
// starts its own cascade.
func (g *Game) Tick() (TickResult, error) {
	now := g.now()
	result := TickResult{Round: g.sched.Rounds()}
	result.Purged = g.purgeExplosions(now)

	for _, id := range g.dueBombs() {
		b, live := g.bombs[id]
		if !live {
			continue
		}
		res, err := g.cascade(*b, now)
		result.Cascades = append(result.Cascades, res)
		if err != nil {
			return result, err
		}
	}
	g.sched.Settle(g.alive)
	return result, nil
}

// Act applies one action for the active player, passes the turn and, when
// the round completes, ticks. A rejected action consumes nothing.
func (g *Game) Act(id PlayerID, a Action) (TurnResult, error) {
	res := TurnResult{Player: id, Action: a}
	if g.Over() {
		return res, ErrGameOver
	}
	if cur := g.CurrentPlayer(); id != cur {
		return res, fmt.Errorf("%w: player %d acted, player %d is active", ErrNotYourTurn, id, cur)
	}

	switch a.Kind {
	case ActionStay:
		if _, err := g.actor(id); err != nil {
			return res, err
		}
	case ActionMove:
		picked, err := g.Move(id, a.Dir)
		if err != nil {
			return res, err
		}
		res.Picked = picked
	case ActionBomb:
		bomb, err := g.PlaceBomb(id)
		if err != nil {
			return res, err
		}
		res.Placed = bomb
	case ActionPickup:
		bomb, err := g.Pickup(id)
		if err != nil {
			return res, err
		}
		res.Lifted = bomb
	case ActionThrow:
		landing, err := g.Throw(id, a.Dir)
		if err != nil {
			return res, err
		}
		res.Thrown = &landing
	default:
		return res, fmt.Errorf("engine: unknown action kind %d", a.Kind)
	}

	if g.AdvanceTurn() {
		res.RoundEnded = true
		tick, err := g.Tick()
		res.Tick = &tick
		if err != nil {
			return res, err
		}
	}
	res.Over = g.Over()
	res.NextPlayer = g.CurrentPlayer()
	return res, nil
}

// CurrentPlayer returns the id of the player whose turn it is.
func (g *Game) CurrentPlayer() PlayerID {
	return g.players[g.sched.Index()].ID
}

// TurnCount returns the number of actions taken.
func (g *Game) TurnCount() int {
	return g.sched.Turns()
}

// RoundCount returns the number of completed rounds.
func (g *Game) RoundCount() int {
	return g.sched.Rounds()
}

// AliveCount returns the number of players still in the game.
func (g *Game) AliveCount() int {
	n := 0
	for _, p := range g.players {
		if p.Alive {
			n++
		}
	}
	return n
}

// Over reports whether at most one player is alive or the round cap has
// been reached.
func (g *Game) Over() bool {
	if g.AliveCount() <= 1 {
		return true
	}
	return g.cfg.MaxRounds > 0 && g.sched.Rounds() >= g.cfg.MaxRounds
}

// Winner returns the winning player once the game is over. The last player
// standing wins; at the round cap the highest-scoring survivor wins. Ties
// and empty fields are draws.
func (g *Game) Winner() (PlayerID, bool) {
	if !g.Over() {
		return 0, false
	}
	var best *Player
	tied := false
	for i := range g.players {
		p := &g.players[i]
		if !p.Alive {
			continue
		}
		switch {
		case best == nil || p.Score > best.Score:
			best, tied = p, false
		case p.Score == best.Score:
			tied = true
		}
	}
	if best == nil || tied {
		return 0, false
	}
	return best.ID, true
}

// Bombs returns views of the live bombs, carried ones included, in id
// order.
func (g *Game) Bombs() []BombView {
	round := g.sched.Rounds()
	views := make([]BombView, 0, len(g.bombs))
	for _, b := range g.bombs {
		pos := b.Pos
		if b.State == BombCarried {
			if c := g.player(b.Carrier); c != nil {
				pos = c.Pos
			}
		}
		views = append(views, BombView{
			ID:         b.ID,
			Owner:      b.Owner,
			Pos:        pos,
			Range:      b.Range,
			RoundsLeft: b.RoundsLeft(round),
			State:      b.State,
			Carrier:    b.Carrier,
		})
	}
	slices.SortFunc(views, func(a, b BombView) int { return int(a.ID - b.ID) })
	return views
}

// Loot returns the loot on the board, ordered row by row.
func (g *Game) Loot() []Loot {
	items := make([]Loot, 0, len(g.loot))
	for c, k := range g.loot {
		items = append(items, Loot{Pos: c, Kind: k})
	}
	slices.SortFunc(items, func(a, b Loot) int {
		if a.Pos.Y != b.Pos.Y {
			return a.Pos.Y - b.Pos.Y
		}
		return a.Pos.X - b.Pos.X
	})
	return items
}

// Explosions returns the explosion records that have not been purged.
func (g *Game) Explosions() []Explosion {
	return slices.Clone(g.explosions)
}

// Forecast returns a lethality forecast over the current state.
func (g *Game) Forecast() Forecast {
	return NewForecast(g.grid.TerrainMap(), g.Bombs())
}

// IsLethal reports whether (x, y) is inside the footprint of a bomb due
// within horizon rounds.
func (g *Game) IsLethal(x, y, horizon int) bool {
	return g.Forecast().IsLethal(C(x, y), horizon)
}

// SafeMoves returns the directions player id can step to without entering
// a footprint due within one round. Unknown or dead players have none.
func (g *Game) SafeMoves(id PlayerID) []Dir {
	p, err := g.actor(id)
	if err != nil {
		return nil
	}
	return g.Forecast().SafeMoves(p.Pos)
}

// DangerousMoves is the complement of SafeMoves over walkable neighbours.
func (g *Game) DangerousMoves(id PlayerID) []Dir {
	p, err := g.actor(id)
	if err != nil {
		return nil
	}
	return g.Forecast().DangerousMoves(p.Pos)
}

// AdjacentBombs lists bombs within Manhattan distance r of (x, y).
func (g *Game) AdjacentBombs(x, y, r int) []BombDistance {
	return g.Forecast().AdjacentBombs(C(x, y), r)
}
