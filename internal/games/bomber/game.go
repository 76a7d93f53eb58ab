// Package bomber adapts the bomb arena engine to the terminal platform. It maps
// key presses to whole-turn actions, drives CPU seats with scripted
// strategies and draws the board into a screen buffer.
package bomber

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/vovakirdan/bombarena/internal/config"
	"github.com/vovakirdan/bombarena/internal/core"
	"github.com/vovakirdan/bombarena/internal/games/bomber/agent"
	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
	"github.com/vovakirdan/bombarena/internal/games/bomber/replay"
	"github.com/vovakirdan/bombarena/internal/games/bomber/scenario"
	"github.com/vovakirdan/bombarena/internal/registry"
)

// Mode selects who controls the seats.
type Mode int

const (
	ModeVersus Mode = iota // Seat 1 is the keyboard, the others are CPU
	ModeWatch              // Every seat is CPU
)

// HumanSeat is the strategy name reported for the keyboard seat.
const HumanSeat = "human"

const maxEvents = 6

// Package-level settings applied on the next Reset, set from the CLI.
var (
	configPath       string
	difficultyPreset config.DifficultyPreset
	strategyOverride string
	scenarioRef      string
	replayPath       string
)

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names clear it.
func SetDifficultyPreset(preset string) {
	p, err := config.ParsePreset(preset)
	if err != nil {
		p = ""
	}
	difficultyPreset = p
}

// SetStrategy makes every CPU seat use the named strategy. An empty name
// restores the per-seat strategies from the config.
func SetStrategy(name string) {
	strategyOverride = name
}

// SetScenario starts the next game from a scenario file path or built-in
// scenario ID instead of a generated arena.
func SetScenario(ref string) {
	scenarioRef = ref
}

// SetReplayPath records every following match to path, replacing the file
// on restart. An empty path disables recording.
func SetReplayPath(path string) {
	replayPath = path
}

// Game is the platform adapter around one engine game.
type Game struct {
	mode Mode

	cfg    config.BomberConfig
	eng    *engine.Game
	agents map[engine.PlayerID]agent.Strategy
	seats  []string // Strategy per seat, HumanSeat for the keyboard
	human  engine.PlayerID

	rng       *rand.Rand
	seed      int64
	tick      uint64
	tickRate  int
	turnDelay int // Ticks between CPU turns
	cpuWait   int
	epoch     time.Time

	recorder *replay.Recorder

	events  []string
	lastErr error
	fatal   error // Integrity failure; the game cannot continue

	screenW  int
	screenH  int
	paused   bool
	tooSmall bool
}

// New creates a game where the keyboard plays seat 1.
func New() *Game {
	return &Game{mode: ModeVersus}
}

// NewWatch creates a game where CPU strategies play every seat.
func NewWatch() *Game {
	return &Game{mode: ModeWatch}
}

func init() {
	registry.Register("bomber", func() registry.Game {
		return New()
	})
	registry.Register("bomber_watch", func() registry.Game {
		return NewWatch()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	if g.mode == ModeWatch {
		return "bomber_watch"
	}
	return "bomber"
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeWatch {
		return "Bomb Arena (Watch)"
	}
	return "Bomb Arena"
}

// Reset loads the configuration and starts a fresh match.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.rng = rand.New(rand.NewSource(cfg.Seed))
	g.seed = cfg.Seed
	g.tick = 0
	g.tickRate = cfg.TickRate
	if g.tickRate <= 0 {
		g.tickRate = core.DefaultConfig().TickRate
	}
	g.epoch = time.Unix(0, 0).UTC()
	g.events = nil
	g.lastErr = nil
	g.fatal = nil
	g.paused = false
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH

	bc, err := config.LoadBomber(configPath)
	if err != nil {
		g.note(err.Error())
		bc = config.DefaultBomberConfig()
	}
	if difficultyPreset != "" {
		config.ApplyBomberPreset(&bc, difficultyPreset)
	}
	g.cfg = bc

	g.eng = g.newEngine(bc.ToEngine(cfg.Seed))
	g.seatPlayers()

	g.turnDelay = max(1, int(bc.TurnDelay()*time.Duration(g.tickRate)/time.Second))
	g.cpuWait = g.turnDelay
	g.tooSmall = g.screenW < g.minWidth() || g.screenH < g.minHeight()

	g.startRecording()
}

// Resize adapts to a new screen size without restarting the match.
func (g *Game) Resize(w, h int) {
	g.screenW, g.screenH = w, h
	if g.eng != nil {
		g.tooSmall = w < g.minWidth() || h < g.minHeight()
	}
}

// startRecording opens the replay file for the new match, closing the
// previous one.
func (g *Game) startRecording() {
	g.stopRecording()
	if replayPath == "" {
		return
	}

	snap := g.eng.Snapshot()
	rec, err := replay.Create(replayPath, replay.Header{
		Seed:       g.seed,
		Width:      snap.Width,
		Height:     snap.Height,
		Players:    len(snap.Players),
		Strategies: g.Seats(),
		Scenario:   scenarioRef,
		StartedAt:  time.Now().UTC(),
	})
	if err == nil {
		err = rec.Initial(snap)
	}
	if err != nil {
		g.note(err.Error())
		if rec != nil {
			rec.Close()
		}
		return
	}
	g.recorder = rec
}

func (g *Game) stopRecording() {
	if g.recorder == nil {
		return
	}
	if err := g.recorder.Close(); err != nil {
		g.note(err.Error())
	}
	g.recorder = nil
}

// newEngine builds the match from the selected scenario or a generated
// arena, falling back to the default rules if either is unusable.
func (g *Game) newEngine(ecfg engine.Config) *engine.Game {
	opts := []engine.Option{engine.WithClock(g.clock)}

	if scenarioRef != "" {
		sc, err := scenario.Load(scenarioRef)
		if err == nil {
			var eng *engine.Game
			if eng, err = sc.Build(ecfg, opts...); err == nil {
				g.note(fmt.Sprintf("Scenario: %s", sc.Name))
				return eng
			}
		}
		g.note(err.Error())
	}

	eng, err := engine.New(ecfg, opts...)
	if err == nil {
		return eng
	}
	g.note(err.Error())
	fallback := engine.DefaultConfig()
	fallback.Seed = ecfg.Seed
	eng, _ = engine.New(fallback, opts...)
	return eng
}

// seatPlayers assigns the keyboard and a strategy to every seat.
func (g *Game) seatPlayers() {
	g.agents = make(map[engine.PlayerID]agent.Strategy)
	g.seats = g.seats[:0]
	g.human = 0

	cpu := 0
	for _, p := range g.eng.Players() {
		if g.mode == ModeVersus && p.ID == 1 {
			g.human = p.ID
			g.seats = append(g.seats, HumanSeat)
			continue
		}
		name := strategyOverride
		if name == "" {
			name = g.cfg.StrategyFor(cpu)
		}
		cpu++
		strat, err := agent.New(name, g.seed+int64(p.ID))
		if err != nil {
			g.note(err.Error())
			strat, _ = agent.New(agent.Default, g.seed+int64(p.ID))
		}
		g.agents[p.ID] = strat
		g.seats = append(g.seats, strat.Name())
	}
}

// clock is the engine's time source. It follows platform ticks so replays
// at the same tick rate see identical explosion lifetimes.
func (g *Game) clock() time.Time {
	return g.epoch.Add(time.Duration(g.tick) * time.Second / time.Duration(g.tickRate))
}

// Step advances the game by one platform tick. The keyboard seat acts when
// a turn key is pressed; CPU seats act once every turn delay.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if in.Has(core.ActionRestart) && g.over() {
		g.Reset(core.RuntimeConfig{
			Seed:     g.rng.Int63(),
			ScreenW:  g.screenW,
			ScreenH:  g.screenH,
			TickRate: g.tickRate,
		})
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && !g.over() {
		g.paused = !g.paused
	}

	if g.over() || g.paused || g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	var log []string
	id := g.eng.CurrentPlayer()
	if id == g.human {
		a, ok := turnAction(in)
		if !ok {
			return core.StepResult{State: g.State()}
		}
		log = g.play(id, a)
	} else {
		g.cpuWait--
		if g.cpuWait > 0 {
			return core.StepResult{State: g.State()}
		}
		g.cpuWait = g.turnDelay
		log = g.playCPU(id)
	}
	return core.StepResult{State: g.State(), Log: log}
}

// turnAction maps pressed keys to a whole-turn action.
func turnAction(in core.InputFrame) (engine.Action, bool) {
	switch {
	case in.Has(core.ActionUp):
		return engine.Move(engine.DirUp), true
	case in.Has(core.ActionDown):
		return engine.Move(engine.DirDown), true
	case in.Has(core.ActionLeft):
		return engine.Move(engine.DirLeft), true
	case in.Has(core.ActionRight):
		return engine.Move(engine.DirRight), true
	case in.Has(core.ActionThrowUp):
		return engine.Throw(engine.DirUp), true
	case in.Has(core.ActionThrowDown):
		return engine.Throw(engine.DirDown), true
	case in.Has(core.ActionThrowLeft):
		return engine.Throw(engine.DirLeft), true
	case in.Has(core.ActionThrowRight):
		return engine.Throw(engine.DirRight), true
	case in.Has(core.ActionBomb):
		return engine.PlaceBomb(), true
	case in.Has(core.ActionPickup):
		return engine.Pickup(), true
	case in.Has(core.ActionStay):
		return engine.Stay(), true
	}
	return engine.Action{}, false
}

// play submits a keyboard action. A rejected action leaves the turn with
// the player and is shown in the HUD.
func (g *Game) play(id engine.PlayerID, a engine.Action) []string {
	res, err := g.eng.Act(id, a)
	if err != nil {
		g.fail(err)
		return nil
	}
	g.lastErr = nil
	return g.record(res)
}

// playCPU asks the seat's strategy for an action. Rejected choices fall
// back to staying put so the turn always passes.
func (g *Game) playCPU(id engine.PlayerID) []string {
	strat := g.agents[id]
	a := engine.Stay()
	if strat != nil {
		a = strat.Decide(g.eng.Snapshot(), id)
	}
	res, err := g.eng.Act(id, a)
	if err != nil && !errors.Is(err, engine.ErrMarkerMismatch) {
		res, err = g.eng.Act(id, engine.Stay())
	}
	if err != nil {
		g.fail(err)
		return nil
	}
	return g.record(res)
}

// fail records a rejected action, or stops the game on an integrity error.
func (g *Game) fail(err error) {
	if errors.Is(err, engine.ErrMarkerMismatch) {
		g.fatal = err
		g.note("Engine error: " + err.Error())
		return
	}
	g.lastErr = err
}

// record turns a turn result into event lines and keeps the latest ones.
func (g *Game) record(res engine.TurnResult) []string {
	lines := Describe(res)
	if res.Over {
		lines = append(lines, g.outcome())
	}
	for _, l := range lines {
		g.note(l)
	}

	if g.recorder != nil {
		if err := g.recorder.Record(g.eng.TurnCount(), res.Player, res.Action, g.eng.Snapshot()); err != nil {
			g.note(err.Error())
			g.stopRecording()
		}
	}
	if g.over() {
		g.stopRecording()
	}
	return lines
}

// Describe renders the notable events of a turn as short lines.
func Describe(res engine.TurnResult) []string {
	var lines []string
	if res.Placed != 0 {
		lines = append(lines, fmt.Sprintf("P%d placed a bomb", res.Player))
	}
	if res.Picked != nil {
		lines = append(lines, fmt.Sprintf("P%d picked up %s", res.Player, res.Picked.Kind))
	}
	if res.Lifted != 0 {
		lines = append(lines, fmt.Sprintf("P%d lifted a bomb", res.Player))
	}
	if t := res.Thrown; t != nil {
		line := fmt.Sprintf("P%d threw a bomb to %s", res.Player, t.To)
		if t.Wrapped {
			line += " across the edge"
		}
		lines = append(lines, line)
	}
	if res.Tick == nil {
		return lines
	}
	for _, c := range res.Tick.Cascades {
		if len(c.Detonated) > 1 {
			lines = append(lines, fmt.Sprintf("Chain reaction: %d bombs", len(c.Detonated)))
		}
		for _, k := range c.Kills {
			if k.Killer != 0 {
				lines = append(lines, fmt.Sprintf("P%d was blown up by P%d", k.Victim, k.Killer))
			} else {
				lines = append(lines, fmt.Sprintf("P%d was blown up", k.Victim))
			}
		}
		if n := len(c.Lost); n > 0 {
			lines = append(lines, fmt.Sprintf("%d carried bomb(s) lost", n))
		}
	}
	return lines
}

// outcome describes how the match ended.
func (g *Game) outcome() string {
	if id, ok := g.eng.Winner(); ok {
		return fmt.Sprintf("P%d wins", id)
	}
	return "Draw"
}

func (g *Game) note(line string) {
	g.events = append(g.events, line)
	if len(g.events) > maxEvents {
		g.events = g.events[len(g.events)-maxEvents:]
	}
}

// over reports whether play has stopped, including the keyboard player
// being eliminated.
func (g *Game) over() bool {
	if g.fatal != nil || g.eng.Over() {
		return true
	}
	if g.human != 0 {
		p, _ := g.eng.Player(g.human)
		return !p.Alive
	}
	return false
}

// State returns the platform view. Score is the keyboard player's, or the
// leader's when watching.
func (g *Game) State() core.GameState {
	score := 0
	if p, ok := g.eng.Player(g.human); ok {
		score = p.Score
	} else {
		for _, p := range g.eng.Players() {
			score = max(score, p.Score)
		}
	}
	return core.GameState{
		Score:    score,
		GameOver: g.over(),
		Paused:   g.paused,
	}
}

// Snapshot returns the engine state for recording.
func (g *Game) Snapshot() engine.Snapshot {
	return g.eng.Snapshot()
}

// Seats returns the strategy name of every seat in player order.
func (g *Game) Seats() []string {
	return append([]string(nil), g.seats...)
}

// Seed returns the seed the current match was generated from.
func (g *Game) Seed() int64 {
	return g.seed
}
