package engine

// Scheduler tracks whose turn it is and counts turns and rounds.
// It knows nothing about players beyond an aliveness predicate over
// indices 0..n-1.
type Scheduler struct {
	n      int
	index  int
	turns  int
	rounds int
}

// NewScheduler creates a scheduler for n seats, starting at index 0.
func NewScheduler(n int) *Scheduler {
	return &Scheduler{n: n}
}

// Index returns the active seat.
func (s *Scheduler) Index() int {
	return s.index
}

// Turns returns the number of individual actions taken.
func (s *Scheduler) Turns() int {
	return s.turns
}

// Rounds returns the number of completed cycles through the seats.
func (s *Scheduler) Rounds() int {
	return s.rounds
}

// next returns the first alive seat after the active one, probing at most
// n seats. ok is false when no seat is alive.
func (s *Scheduler) next(alive func(int) bool) (int, bool) {
	for i := 1; i <= s.n; i++ {
		cand := (s.index + i) % s.n
		if alive(cand) {
			return cand, true
		}
	}
	return s.index, false
}

// Advance passes the turn to the next alive seat and counts one action.
// A fully eliminated field leaves the index where it was. It returns true
// when the new index is at or before the previous one, which completes a
// round.
func (s *Scheduler) Advance(alive func(int) bool) bool {
	prev := s.index
	s.index, _ = s.next(alive)
	s.turns++
	if s.index <= prev {
		s.rounds++
		return true
	}
	return false
}

// Settle moves the turn off a seat that was eliminated while it was active.
// It counts neither a turn nor a round.
func (s *Scheduler) Settle(alive func(int) bool) {
	if s.n == 0 || alive(s.index) {
		return
	}
	if idx, ok := s.next(alive); ok {
		s.index = idx
	}
}
