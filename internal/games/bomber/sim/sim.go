// Package sim plays headless arena matches between scripted strategies.
// Matches are independent values, so a batch runs on a bounded pool of
// worker goroutines and reports results over a channel.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bombarena/internal/games/bomber/agent"
	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
	"github.com/vovakirdan/bombarena/internal/games/bomber/replay"
	"github.com/vovakirdan/bombarena/internal/games/bomber/scenario"
)

// ErrTurnLimit is reported for matches stopped by the turn limit.
var ErrTurnLimit = errors.New("sim: turn limit reached")

// defaultTurnsPerPlayer bounds matches without a round cap.
const defaultTurnsPerPlayer = 1000

// Match describes one headless match.
type Match struct {
	Index      int
	Seed       int64
	Config     engine.Config
	Strategies []string           // Per seat, repeated when shorter than the seat count
	Scenario   *scenario.Scenario // Optional fixed layout
	ReplayPath string             // Optional replay file
	TurnLimit  int                // Zero derives a limit from the player count
}

// Result is the outcome of one match.
type Result struct {
	Match     Match
	Final     engine.Snapshot
	Seats     []string // Strategy per seat in player order
	Elapsed   time.Duration
	Fallbacks int // Rejected strategy actions replaced by staying put
	Err       error
}

// Play runs m to completion or until ctx is cancelled. A nil logger
// discards output.
func Play(ctx context.Context, m Match, logger *log.Logger) Result {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	start := time.Now()
	res := Result{Match: m}

	// Explosion lifetimes follow the turn counter so reruns are identical
	turns := 0
	epoch := time.Unix(0, 0).UTC()
	clock := func() time.Time { return epoch.Add(time.Duration(turns) * time.Second) }

	cfg := m.Config
	cfg.Seed = m.Seed
	opts := []engine.Option{engine.WithLogger(logger), engine.WithClock(clock)}

	var (
		eng *engine.Game
		err error
	)
	if m.Scenario != nil {
		eng, err = m.Scenario.Build(cfg, opts...)
	} else {
		eng, err = engine.New(cfg, opts...)
	}
	if err != nil {
		res.Err = fmt.Errorf("sim: match %d: %w", m.Index, err)
		return res
	}

	agents, seats, err := seat(eng, m)
	if err != nil {
		res.Err = fmt.Errorf("sim: match %d: %w", m.Index, err)
		return res
	}
	res.Seats = seats

	var rec *replay.Recorder
	if m.ReplayPath != "" {
		if rec, err = startReplay(eng, m, seats); err != nil {
			res.Err = fmt.Errorf("sim: match %d: %w", m.Index, err)
			return res
		}
		defer rec.Close()
	}

	limit := m.TurnLimit
	if limit <= 0 {
		limit = defaultTurnsPerPlayer * len(seats)
	}

	for !eng.Over() {
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}
		if turns >= limit {
			res.Err = ErrTurnLimit
			break
		}

		id := eng.CurrentPlayer()
		action := agents[id].Decide(eng.Snapshot(), id)
		tr, err := eng.Act(id, action)
		if err != nil && !errors.Is(err, engine.ErrMarkerMismatch) {
			res.Fallbacks++
			tr, err = eng.Act(id, engine.Stay())
		}
		if err != nil {
			res.Err = fmt.Errorf("sim: match %d turn %d: %w", m.Index, turns, err)
			break
		}
		turns++

		if rec != nil {
			if err := rec.Record(eng.TurnCount(), tr.Player, tr.Action, eng.Snapshot()); err != nil {
				res.Err = fmt.Errorf("sim: match %d: %w", m.Index, err)
				break
			}
		}
	}

	res.Final = eng.Snapshot()
	res.Elapsed = time.Since(start)
	logger.Debug("match finished",
		"match", m.Index,
		"seed", m.Seed,
		"turns", res.Final.TurnCount,
		"winner", res.Final.Winner,
	)
	return res
}

// seat creates one strategy per player.
func seat(eng *engine.Game, m Match) (map[engine.PlayerID]agent.Strategy, []string, error) {
	agents := make(map[engine.PlayerID]agent.Strategy)
	var seats []string
	for i, p := range eng.Players() {
		name := ""
		if len(m.Strategies) > 0 {
			name = m.Strategies[i%len(m.Strategies)]
		}
		strat, err := agent.New(name, m.Seed+int64(p.ID))
		if err != nil {
			return nil, nil, err
		}
		agents[p.ID] = strat
		seats = append(seats, strat.Name())
	}
	return agents, seats, nil
}

func startReplay(eng *engine.Game, m Match, seats []string) (*replay.Recorder, error) {
	snap := eng.Snapshot()
	h := replay.Header{
		Seed:       m.Seed,
		Width:      snap.Width,
		Height:     snap.Height,
		Players:    len(snap.Players),
		Strategies: seats,
		StartedAt:  time.Now().UTC(),
	}
	if m.Scenario != nil {
		h.Scenario = m.Scenario.ID
	}
	rec, err := replay.Create(m.ReplayPath, h)
	if err != nil {
		return nil, err
	}
	if err := rec.Initial(snap); err != nil {
		rec.Close()
		return nil, err
	}
	return rec, nil
}

// Run plays matches on up to workers goroutines. Every started match
// sends exactly one result; the channel is closed once all workers exit.
// Matches not started before ctx is cancelled are skipped.
func Run(ctx context.Context, matches []Match, workers int, logger *log.Logger) <-chan Result {
	workers = max(1, min(workers, len(matches)))
	jobs := make(chan Match)
	results := make(chan Result, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range jobs {
				results <- Play(ctx, m, logger)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, m := range matches {
			select {
			case jobs <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
