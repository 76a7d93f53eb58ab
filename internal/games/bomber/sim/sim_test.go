package sim

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
	"github.com/vovakirdan/bombarena/internal/games/bomber/replay"
	"github.com/vovakirdan/bombarena/internal/games/bomber/scenario"
)

func shortConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.MaxRounds = 10
	return cfg
}

func TestPlayIsDeterministic(t *testing.T) {
	m := Match{Seed: 17, Config: shortConfig(), Strategies: []string{"tactical", "random"}}

	a := Play(context.Background(), m, nil)
	b := Play(context.Background(), m, nil)
	if a.Err != nil || b.Err != nil {
		t.Fatalf("Play() failed: %v, %v", a.Err, b.Err)
	}
	if !a.Final.Over {
		t.Error("match should run until the engine declares it over")
	}
	if !reflect.DeepEqual(a.Final, b.Final) {
		t.Error("the same seed and strategies produced different matches")
	}
	if want := []string{"tactical", "random", "tactical", "random"}; !reflect.DeepEqual(a.Seats, want) {
		t.Errorf("seats = %v, expected %v", a.Seats, want)
	}
}

func TestPlayRespectsRoundCap(t *testing.T) {
	cfg := shortConfig()
	cfg.MaxRounds = 3
	cfg.Players = 2

	r := Play(context.Background(), Match{Seed: 1, Config: cfg, Strategies: []string{"defensive"}}, nil)
	if r.Err != nil {
		t.Fatalf("Play() failed: %v", r.Err)
	}
	if r.Final.RoundCount > 3 || r.Final.TurnCount > 6 {
		t.Errorf("played %d rounds, %d turns past a 3 round cap", r.Final.RoundCount, r.Final.TurnCount)
	}
}

func TestPlayTurnLimit(t *testing.T) {
	cfg := shortConfig()
	cfg.MaxRounds = 0

	r := Play(context.Background(), Match{Seed: 3, Config: cfg, Strategies: []string{"defensive"}, TurnLimit: 5}, nil)
	if r.Final.Over {
		t.Skip("match ended before the limit")
	}
	if !errors.Is(r.Err, ErrTurnLimit) || r.Final.TurnCount != 5 {
		t.Errorf("err = %v after %d turns, expected the turn limit after 5", r.Err, r.Final.TurnCount)
	}
}

func TestPlayRejectsUnknownStrategy(t *testing.T) {
	r := Play(context.Background(), Match{Config: shortConfig(), Strategies: []string{"psychic"}}, nil)
	if r.Err == nil {
		t.Error("an unknown strategy should fail the match")
	}
}

func TestPlayScenarioWritesReplay(t *testing.T) {
	sc, err := scenario.Builtin().LoadByID("chain")
	if err != nil {
		t.Fatalf("LoadByID() failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "chain.bar")

	r := Play(context.Background(), Match{Seed: 5, Config: shortConfig(), Scenario: sc, ReplayPath: path}, nil)
	if r.Err != nil {
		t.Fatalf("Play() failed: %v", r.Err)
	}

	rp, err := replay.Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if rp.Header.Scenario != "chain" || rp.Header.Width != sc.Width() {
		t.Errorf("header = %+v", rp.Header)
	}
	if len(rp.Frames) != r.Final.TurnCount+1 {
		t.Errorf("got %d frames for %d turns", len(rp.Frames), r.Final.TurnCount)
	}
	final, err := rp.Final()
	if err != nil {
		t.Fatalf("Final() failed: %v", err)
	}
	if final.TurnCount != r.Final.TurnCount || final.Winner != r.Final.Winner {
		t.Errorf("replay ends at turn %d winner %d, match at %d winner %d",
			final.TurnCount, final.Winner, r.Final.TurnCount, r.Final.Winner)
	}
}

func TestRunPlaysEveryMatch(t *testing.T) {
	var matches []Match
	for i := range 9 {
		matches = append(matches, Match{Index: i, Seed: int64(i + 1), Config: shortConfig()})
	}

	seen := make(map[int]bool)
	var sum Summary
	for r := range Run(context.Background(), matches, 3, nil) {
		if seen[r.Match.Index] {
			t.Errorf("match %d reported twice", r.Match.Index)
		}
		seen[r.Match.Index] = true
		sum.Add(r)
	}

	if len(seen) != len(matches) {
		t.Errorf("got %d results, expected %d", len(seen), len(matches))
	}
	if sum.Matches+sum.Failed != len(matches) {
		t.Errorf("summary counted %d matches and %d failures", sum.Matches, sum.Failed)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	matches := make([]Match, 20)
	for i := range matches {
		matches[i] = Match{Index: i, Seed: int64(i), Config: shortConfig()}
	}

	n := 0
	for r := range Run(ctx, matches, 4, nil) {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("match %d finished despite cancellation", r.Match.Index)
		}
		n++
	}
	if n == len(matches) {
		t.Log("every match was handed out before cancellation was seen")
	}
}

func TestSummary(t *testing.T) {
	win := Result{
		Seats: []string{"tactical", "random"},
		Final: engine.Snapshot{
			TurnCount: 10,
			Winner:    1,
			Players: []engine.PlayerView{
				{ID: 1, Alive: true, Score: 120},
				{ID: 2, Score: 20},
			},
		},
	}
	draw := Result{
		Seats: []string{"random", "tactical"},
		Final: engine.Snapshot{
			TurnCount: 20,
			Players: []engine.PlayerView{
				{ID: 1, Alive: true, Score: 30},
				{ID: 2, Alive: true, Score: 30},
			},
		},
	}

	var s Summary
	s.Add(win)
	s.Add(draw)
	s.Add(Result{Err: ErrTurnLimit})

	if s.Matches != 2 || s.Draws != 1 || s.Failed != 1 || s.AvgTurns() != 15 {
		t.Errorf("summary = %+v, avg %.1f", s, s.AvgTurns())
	}

	got := s.Strategies()
	want := []StrategyTally{
		{Name: "tactical", Seats: 2, Wins: 1, Survived: 2, Score: 150},
		{Name: "random", Seats: 2, Wins: 0, Survived: 1, Score: 50},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Strategies() = %+v, expected %+v", got, want)
	}
}
