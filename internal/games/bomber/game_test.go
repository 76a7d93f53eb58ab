package bomber

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vovakirdan/bombarena/internal/core"
	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
	"github.com/vovakirdan/bombarena/internal/games/bomber/replay"
	"github.com/vovakirdan/bombarena/internal/registry"
)

// testConfig paces CPU turns at three ticks (100ms at 30 ticks per second).
const testConfig = `
rules:
  max_rounds: 3
display:
  turn_delay_ms: 100
`

func useConfig(t *testing.T, doc string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bomber.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	SetConfigPath(path)
	t.Cleanup(func() {
		SetConfigPath("")
		SetDifficultyPreset("")
		SetStrategy("")
		SetScenario("")
		SetReplayPath("")
	})
}

func runtimeConfig(seed int64) core.RuntimeConfig {
	return core.RuntimeConfig{Seed: seed, ScreenW: 80, ScreenH: 24, TickRate: 30}
}

func press(a core.Action) core.InputFrame {
	in := core.NewInputFrame()
	in.Set(a)
	return in
}

func TestRegistered(t *testing.T) {
	for _, id := range []string{"bomber", "bomber_watch"} {
		g, err := registry.Create(id)
		if err != nil {
			t.Fatalf("Create(%s) failed: %v", id, err)
		}
		if g.ID() != id {
			t.Errorf("ID() = %q, expected %q", g.ID(), id)
		}
	}
}

func TestWatchDeterminism(t *testing.T) {
	useConfig(t, testConfig)

	g1, g2 := NewWatch(), NewWatch()
	g1.Reset(runtimeConfig(99))
	g2.Reset(runtimeConfig(99))

	empty := core.NewInputFrame()
	for range 60 {
		g1.Step(empty)
		g2.Step(empty)
	}

	s1, s2 := g1.Snapshot(), g2.Snapshot()
	if s1.TurnCount == 0 {
		t.Fatal("CPU seats never acted")
	}
	if s1.TurnCount != s2.TurnCount || s1.RoundCount != s2.RoundCount {
		t.Errorf("counters differ: %d/%d vs %d/%d", s1.TurnCount, s1.RoundCount, s2.TurnCount, s2.RoundCount)
	}
	if !reflect.DeepEqual(s1.Players, s2.Players) {
		t.Errorf("players differ:\n%+v\n%+v", s1.Players, s2.Players)
	}
	if !reflect.DeepEqual(s1.Bombs, s2.Bombs) || !reflect.DeepEqual(s1.Terrain, s2.Terrain) {
		t.Error("board differs between identically seeded games")
	}
}

func TestKeyboardSeatWaitsForInput(t *testing.T) {
	useConfig(t, testConfig)
	g := New()
	g.Reset(runtimeConfig(1))

	if seats := g.Seats(); seats[0] != HumanSeat || len(seats) != 4 {
		t.Fatalf("seats = %v", seats)
	}

	empty := core.NewInputFrame()
	for range 30 {
		g.Step(empty)
	}
	if n := g.Snapshot().TurnCount; n != 0 {
		t.Fatalf("turn count = %d while waiting for the keyboard", n)
	}

	g.Step(press(core.ActionStay))
	snap := g.Snapshot()
	if snap.TurnCount != 1 || snap.CurrentPlayer != 2 {
		t.Errorf("after stay: turn=%d current=%d, expected 1 and 2", snap.TurnCount, snap.CurrentPlayer)
	}
}

func TestRejectedMoveKeepsTurn(t *testing.T) {
	useConfig(t, testConfig)
	g := New()
	g.Reset(runtimeConfig(1))

	// Seat 1 spawns in the top-left corner
	g.Step(press(core.ActionUp))
	if n := g.Snapshot().TurnCount; n != 0 {
		t.Errorf("rejected move consumed the turn: turn count %d", n)
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if !strings.Contains(screen.Row(23), "Can't do that") {
		t.Errorf("footer = %q, expected the rejection", screen.Row(23))
	}

	g.Step(press(core.ActionBomb))
	snap := g.Snapshot()
	if snap.TurnCount != 1 || len(snap.Bombs) != 1 {
		t.Errorf("bomb turn: turn=%d bombs=%d", snap.TurnCount, len(snap.Bombs))
	}
	if g.lastErr != nil {
		t.Errorf("accepted action should clear the rejection, have %v", g.lastErr)
	}
}

func TestCPUTurnsArePaced(t *testing.T) {
	useConfig(t, testConfig)
	g := New()
	g.Reset(runtimeConfig(1))
	g.Step(press(core.ActionStay))

	empty := core.NewInputFrame()
	g.Step(empty)
	g.Step(empty)
	if n := g.Snapshot().TurnCount; n != 1 {
		t.Fatalf("CPU acted early: turn count %d", n)
	}
	res := g.Step(empty)
	if n := g.Snapshot().TurnCount; n != 2 {
		t.Errorf("CPU did not act after the delay: turn count %d", n)
	}
	if res.State.GameOver {
		t.Error("game should still be running")
	}
}

func TestPauseStopsCPU(t *testing.T) {
	useConfig(t, testConfig)
	g := NewWatch()
	g.Reset(runtimeConfig(3))

	g.Step(press(core.ActionPause))
	if !g.State().Paused {
		t.Fatal("expected paused state")
	}
	empty := core.NewInputFrame()
	for range 20 {
		g.Step(empty)
	}
	if n := g.Snapshot().TurnCount; n != 0 {
		t.Errorf("turn count = %d while paused", n)
	}
}

func TestRoundCapEndsAndRestarts(t *testing.T) {
	useConfig(t, testConfig)
	g := NewWatch()
	g.Reset(runtimeConfig(8))

	empty := core.NewInputFrame()
	for i := 0; i < 500 && !g.State().GameOver; i++ {
		g.Step(empty)
	}
	if !g.State().GameOver {
		t.Fatal("watch game did not end within the round cap")
	}
	if r := g.Snapshot().RoundCount; r > 3 {
		t.Errorf("round count %d past the cap", r)
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if !strings.Contains(screen.String(), "Press R to restart") {
		t.Error("expected the game over overlay")
	}

	g.Step(press(core.ActionRestart))
	if g.State().GameOver || g.Snapshot().TurnCount != 0 {
		t.Error("restart should start a fresh match")
	}
}

func TestRenderBoard(t *testing.T) {
	useConfig(t, testConfig)
	g := NewWatch()
	g.Reset(runtimeConfig(4))

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	out := screen.String()

	for _, want := range []string{"Bomb Arena (Watch)", "@1", "@2", "@3", "@4", "Players", "██"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
	// The first board cell sits inside the border, one row below the HUD
	board := g.boardRect(screen, g.Snapshot())
	if got := screen.Get(board.X+1, board.Y+1); got != '@' {
		t.Errorf("top-left cell = %q, expected player 1", got)
	}
}

func TestTooSmallWindow(t *testing.T) {
	useConfig(t, testConfig)
	g := NewWatch()
	g.Reset(core.RuntimeConfig{Seed: 1, ScreenW: 20, ScreenH: 10, TickRate: 30})

	empty := core.NewInputFrame()
	for range 10 {
		g.Step(empty)
	}
	if n := g.Snapshot().TurnCount; n != 0 {
		t.Errorf("turn count = %d in a window that is too small", n)
	}

	screen := core.NewScreen(20, 10)
	g.Render(screen)
	if !strings.Contains(screen.String(), "too small") {
		t.Error("expected the too-small overlay")
	}
}

func TestStrategyOverride(t *testing.T) {
	useConfig(t, testConfig)
	SetStrategy("defensive")
	g := NewWatch()
	g.Reset(runtimeConfig(1))

	for i, s := range g.Seats() {
		if s != "defensive" {
			t.Errorf("seat %d plays %q, expected defensive", i+1, s)
		}
	}

	SetStrategy("nonsense")
	g.Reset(runtimeConfig(1))
	if s := g.Seats()[0]; s != "tactical" {
		t.Errorf("unknown strategy should fall back to tactical, got %q", s)
	}
}

func TestScenarioMode(t *testing.T) {
	useConfig(t, testConfig)
	SetScenario("corridor")
	g := New()
	g.Reset(runtimeConfig(1))

	snap := g.Snapshot()
	if len(snap.Players) != 2 || len(snap.Bombs) != 1 {
		t.Fatalf("players=%d bombs=%d, expected the corridor scenario", len(snap.Players), len(snap.Bombs))
	}
	if snap.Players[0].Pos != engine.C(1, 1) {
		t.Errorf("player 1 at %s, expected (1,1)", snap.Players[0].Pos)
	}

	SetScenario("missing")
	g.Reset(runtimeConfig(1))
	if n := len(g.Snapshot().Players); n != 4 {
		t.Errorf("unknown scenario should fall back to a generated arena, have %d players", n)
	}
}

func TestDescribe(t *testing.T) {
	res := engine.TurnResult{
		Player: 2,
		Placed: 7,
		Picked: &engine.Loot{Kind: engine.LootFlashRadius},
		Tick: &engine.TickResult{Cascades: []engine.CascadeResult{{
			Detonated: []engine.BombID{3, 4},
			Kills:     []engine.KillEvent{{Victim: 1, Killer: 2}, {Victim: 3}},
		}}},
	}
	want := []string{
		"P2 placed a bomb",
		"P2 picked up flash_radius",
		"Chain reaction: 2 bombs",
		"P1 was blown up by P2",
		"P3 was blown up",
	}
	if got := Describe(res); !reflect.DeepEqual(got, want) {
		t.Errorf("Describe() = %q, expected %q", got, want)
	}
}

func TestDescribeCarriedBombs(t *testing.T) {
	lifted := Describe(engine.TurnResult{Player: 1, Lifted: 4})
	if want := []string{"P1 lifted a bomb"}; !reflect.DeepEqual(lifted, want) {
		t.Errorf("Describe(lifted) = %q, expected %q", lifted, want)
	}

	res := engine.TurnResult{
		Player: 1,
		Thrown: &engine.Landing{Bomb: 4, From: engine.C(3, 0), To: engine.C(0, 0), Wrapped: true},
		Tick: &engine.TickResult{Cascades: []engine.CascadeResult{{
			Detonated: []engine.BombID{5},
			Kills:     []engine.KillEvent{{Victim: 2}},
			Lost:      []engine.BombID{6},
		}}},
	}
	want := []string{
		"P1 threw a bomb to (0,0) across the edge",
		"P2 was blown up",
		"1 carried bomb(s) lost",
	}
	if got := Describe(res); !reflect.DeepEqual(got, want) {
		t.Errorf("Describe() = %q, expected %q", got, want)
	}
}

func TestThrowKeysMapToThrows(t *testing.T) {
	tests := []struct {
		key  core.Action
		want engine.Action
	}{
		{core.ActionThrowUp, engine.Throw(engine.DirUp)},
		{core.ActionThrowRight, engine.Throw(engine.DirRight)},
		{core.ActionPickup, engine.Pickup()},
	}
	for _, tc := range tests {
		got, ok := turnAction(press(tc.key))
		if !ok || got != tc.want {
			t.Errorf("turnAction(%s) = %s, %v; expected %s", tc.key, got, ok, tc.want)
		}
	}
}

func TestReplayRecording(t *testing.T) {
	useConfig(t, testConfig)
	path := filepath.Join(t.TempDir(), "replays", "last.bar")
	SetReplayPath(path)

	g := NewWatch()
	g.Reset(runtimeConfig(21))
	empty := core.NewInputFrame()
	for range 30 {
		g.Step(empty)
	}
	turns := g.Snapshot().TurnCount
	if turns == 0 {
		t.Fatal("CPU seats never acted")
	}

	// A restart closes the stream of the previous match
	SetReplayPath("")
	g.Reset(runtimeConfig(22))

	r, err := replay.Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if r.Header.Seed != 21 || len(r.Header.Strategies) != 4 {
		t.Errorf("header = %+v", r.Header)
	}
	if len(r.Frames) != turns+1 {
		t.Fatalf("got %d frames, expected %d turns plus the initial frame", len(r.Frames), turns)
	}
	final, err := r.Final()
	if err != nil {
		t.Fatalf("Final() failed: %v", err)
	}
	if final.TurnCount != turns {
		t.Errorf("final turn = %d, expected %d", final.TurnCount, turns)
	}
}

func TestResizeKeepsMatch(t *testing.T) {
	useConfig(t, testConfig)

	g := NewWatch()
	g.Reset(runtimeConfig(4))
	empty := core.NewInputFrame()
	for range 10 {
		g.Step(empty)
	}
	before := g.Snapshot().TurnCount

	g.Resize(10, 5)
	if !g.tooSmall {
		t.Error("a 10x5 screen should be too small")
	}
	g.Step(empty)
	g.Resize(80, 24)
	if g.tooSmall {
		t.Error("80x24 should fit the board")
	}
	if got := g.Snapshot().TurnCount; got != before {
		t.Errorf("turn count changed from %d to %d across resizes", before, got)
	}
}
