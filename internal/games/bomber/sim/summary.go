package sim

import (
	"sort"
	"time"
)

// StrategyTally counts one strategy's results across a batch.
type StrategyTally struct {
	Name     string
	Seats    int
	Wins     int
	Survived int
	Score    int
}

// Summary aggregates a batch of results.
type Summary struct {
	Matches int
	Draws   int
	Failed  int
	Turns   int
	Elapsed time.Duration

	tallies map[string]*StrategyTally
}

// Add folds r into the summary. Failed matches count only as failures.
func (s *Summary) Add(r Result) {
	if r.Err != nil {
		s.Failed++
		return
	}
	if s.tallies == nil {
		s.tallies = make(map[string]*StrategyTally)
	}

	s.Matches++
	s.Turns += r.Final.TurnCount
	s.Elapsed += r.Elapsed
	if r.Final.Winner == 0 {
		s.Draws++
	}

	for i, p := range r.Final.Players {
		if i >= len(r.Seats) {
			break
		}
		t, ok := s.tallies[r.Seats[i]]
		if !ok {
			t = &StrategyTally{Name: r.Seats[i]}
			s.tallies[r.Seats[i]] = t
		}
		t.Seats++
		t.Score += p.Score
		if p.Alive {
			t.Survived++
		}
		if p.ID == r.Final.Winner {
			t.Wins++
		}
	}
}

// Strategies returns the tallies ordered by wins, then name.
func (s *Summary) Strategies() []StrategyTally {
	out := make([]StrategyTally, 0, len(s.tallies))
	for _, t := range s.tallies {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// AvgTurns returns the mean match length in turns.
func (s *Summary) AvgTurns() float64 {
	if s.Matches == 0 {
		return 0
	}
	return float64(s.Turns) / float64(s.Matches)
}
