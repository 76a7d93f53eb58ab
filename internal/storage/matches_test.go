package storage

import (
	"context"
	"testing"
	"time"

	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
)

func finishedSnapshot() engine.Snapshot {
	return engine.Snapshot{
		RoundCount: 12,
		TurnCount:  41,
		Over:       true,
		Winner:     2,
		Players: []engine.PlayerView{
			{ID: 1, Score: 30},
			{ID: 2, Alive: true, Score: 240},
			{ID: 3, Score: 10},
		},
	}
}

func TestNewMatchRecord(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*engine.Snapshot)
		want   string
	}{
		{"last standing", func(*engine.Snapshot) {}, EndLastStanding},
		{"round cap", func(s *engine.Snapshot) {
			s.Players[0].Alive = true
			s.Winner = 0
		}, EndRoundCap},
		{"aborted", func(s *engine.Snapshot) { s.Over = false }, EndAborted},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := finishedSnapshot()
			tc.mutate(&snap)
			m := NewMatchRecord("bomber", 7, snap, []string{"human", "tactical"}, time.Second)

			if m.EndReason != tc.want {
				t.Errorf("EndReason = %q, expected %q", m.EndReason, tc.want)
			}
			if m.MatchID == "" {
				t.Error("expected a generated match ID")
			}
			if len(m.Players) != 3 || m.Players[1].Strategy != "tactical" || m.Players[2].Strategy != "" {
				t.Errorf("players = %+v", m.Players)
			}
		})
	}

	a := NewMatchRecord("bomber", 1, finishedSnapshot(), nil, 0)
	b := NewMatchRecord("bomber", 1, finishedSnapshot(), nil, 0)
	if a.MatchID == b.MatchID {
		t.Error("match IDs should be unique")
	}
}

func TestSaveAndLoadMatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	m := NewMatchRecord("bomber_watch", 42, finishedSnapshot(),
		[]string{"random", "tactical", "defensive"}, 1500*time.Millisecond)
	m.Scenario = "chain"

	id, err := store.SaveMatch(ctx, m)
	if err != nil {
		t.Fatalf("SaveMatch() failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("SaveMatch() id = %d", id)
	}

	got, err := store.MatchByID(ctx, m.MatchID)
	if err != nil {
		t.Fatalf("MatchByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("MatchByID() returned nil for a saved match")
	}
	if got.Seed != 42 || got.Scenario != "chain" || got.Rounds != 12 || got.Turns != 41 {
		t.Errorf("match = %+v", got)
	}
	if got.WinnerSeat != 2 || got.EndReason != EndLastStanding || got.Duration != 1500*time.Millisecond {
		t.Errorf("winner=%d reason=%q duration=%v", got.WinnerSeat, got.EndReason, got.Duration)
	}
	if len(got.Players) != 3 {
		t.Fatalf("got %d players, expected 3", len(got.Players))
	}
	if p := got.Players[1]; p.Seat != 2 || !p.Alive || p.Score != 240 || p.Strategy != "tactical" {
		t.Errorf("seat 2 = %+v", p)
	}

	missing, err := store.MatchByID(ctx, "no-such-match")
	if err != nil || missing != nil {
		t.Errorf("MatchByID(missing) = %v, %v; expected nil, nil", missing, err)
	}

	if _, err := store.SaveMatch(ctx, m); err == nil {
		t.Error("saving the same match ID twice should fail")
	}
}

func TestRecentMatches(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := range 5 {
		m := NewMatchRecord("bomber_watch", int64(i), finishedSnapshot(), []string{"a", "b", "c"}, 0)
		if _, err := store.SaveMatch(ctx, m); err != nil {
			t.Fatalf("SaveMatch() failed: %v", err)
		}
		ids = append(ids, m.MatchID)
	}

	recent, err := store.RecentMatches(ctx, 3)
	if err != nil {
		t.Fatalf("RecentMatches() failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d matches, expected 3", len(recent))
	}
	// Same-second inserts fall back to insertion order, newest first
	for i, m := range recent {
		if m.MatchID != ids[4-i] {
			t.Errorf("recent[%d] = seed %d, expected seed %d", i, m.Seed, 4-i)
		}
		if len(m.Players) != 3 {
			t.Errorf("recent[%d] has %d players", i, len(m.Players))
		}
	}
}

func TestClearMatchesRemovesSeats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, game := range []string{"bomber_watch", "bomber_watch", "sim"} {
		m := NewMatchRecord(game, 1, finishedSnapshot(), []string{"a", "b", "c"}, 0)
		if _, err := store.SaveMatch(ctx, m); err != nil {
			t.Fatalf("SaveMatch() failed: %v", err)
		}
	}
	if err := store.ClearMatches(ctx, "bomber_watch"); err != nil {
		t.Fatalf("ClearMatches() failed: %v", err)
	}

	var matches, seats int
	if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM matches").Scan(&matches); err != nil {
		t.Fatal(err)
	}
	if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM match_players").Scan(&seats); err != nil {
		t.Fatal(err)
	}
	if matches != 1 || seats != 3 {
		t.Errorf("after clear: %d matches, %d seats; expected 1 and 3", matches, seats)
	}
}

func TestStrategyStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// tactical wins twice in seat 2, random wins once in seat 2
	for _, seats := range [][]string{
		{"random", "tactical", "defensive"},
		{"defensive", "tactical", "random"},
		{"tactical", "random", "defensive"},
	} {
		m := NewMatchRecord("bomber_watch", 1, finishedSnapshot(), seats, 0)
		if _, err := store.SaveMatch(ctx, m); err != nil {
			t.Fatalf("SaveMatch() failed: %v", err)
		}
	}

	stats, err := store.StrategyStats(ctx)
	if err != nil {
		t.Fatalf("StrategyStats() failed: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("got %d strategies, expected 3", len(stats))
	}

	want := []struct {
		name string
		wins int
	}{{"tactical", 2}, {"random", 1}, {"defensive", 0}}
	for i, w := range want {
		st := stats[i]
		if st.Strategy != w.name || st.Wins != w.wins || st.Games != 3 {
			t.Errorf("stats[%d] = %+v, expected %s with %d wins in 3 games", i, st, w.name, w.wins)
		}
		if st.Survived != w.wins {
			t.Errorf("%s survived %d, expected %d", st.Strategy, st.Survived, w.wins)
		}
	}
	if r := stats[0].WinRate(); r < 0.66 || r > 0.67 {
		t.Errorf("tactical win rate = %.3f", r)
	}
}
