package engine

import "testing"

func aliveSet(seats ...int) func(int) bool {
	set := make(map[int]bool, len(seats))
	for _, s := range seats {
		set[s] = true
	}
	return func(i int) bool { return set[i] }
}

func TestSchedulerFullRound(t *testing.T) {
	s := NewScheduler(4)
	alive := aliveSet(0, 1, 2, 3)

	for i := 1; i <= 3; i++ {
		if s.Advance(alive) {
			t.Fatalf("advance %d reported a round wrap", i)
		}
	}
	if s.Rounds() != 0 || s.Index() != 3 {
		t.Errorf("after 3 advances: rounds=%d index=%d, expected 0 and 3", s.Rounds(), s.Index())
	}

	if !s.Advance(alive) {
		t.Error("fourth advance should wrap")
	}
	if s.Rounds() != 1 || s.Index() != 0 || s.Turns() != 4 {
		t.Errorf("after wrap: rounds=%d index=%d turns=%d, expected 1, 0, 4", s.Rounds(), s.Index(), s.Turns())
	}
}

func TestSchedulerSkipsDead(t *testing.T) {
	s := NewScheduler(4)
	alive := aliveSet(0, 2)

	if s.Advance(alive) {
		t.Error("0 -> 2 should not wrap")
	}
	if s.Index() != 2 {
		t.Errorf("Index() = %d, expected 2", s.Index())
	}
	if !s.Advance(alive) {
		t.Error("2 -> 0 should wrap")
	}
	if s.Index() != 0 || s.Rounds() != 1 {
		t.Errorf("index=%d rounds=%d, expected 0 and 1", s.Index(), s.Rounds())
	}
}

func TestSchedulerRoundPerWrap(t *testing.T) {
	tests := []struct {
		name   string
		alive  []int
		turns  int
		rounds int
	}{
		{"four alive", []int{0, 1, 2, 3}, 12, 3},
		{"three alive", []int{0, 1, 3}, 9, 3},
		{"two alive", []int{0, 3}, 8, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewScheduler(4)
			alive := aliveSet(tc.alive...)
			wraps := 0
			for i := 0; i < tc.turns; i++ {
				if s.Advance(alive) {
					wraps++
				}
			}
			if s.Rounds() != tc.rounds || wraps != tc.rounds {
				t.Errorf("rounds=%d wraps=%d, expected %d", s.Rounds(), wraps, tc.rounds)
			}
			if s.Turns() != tc.turns {
				t.Errorf("Turns() = %d, expected %d", s.Turns(), tc.turns)
			}
		})
	}
}

func TestSchedulerAllDead(t *testing.T) {
	s := NewScheduler(3)
	s.Advance(aliveSet(0, 1, 2))

	none := aliveSet()
	s.Advance(none)
	if s.Index() != 1 {
		t.Errorf("Index() = %d, expected unchanged 1", s.Index())
	}
	if s.Turns() != 2 {
		t.Errorf("Turns() = %d, expected 2", s.Turns())
	}
}

func TestSchedulerSettle(t *testing.T) {
	s := NewScheduler(4)
	s.Settle(aliveSet(2, 3))
	if s.Index() != 2 {
		t.Errorf("Index() = %d, expected 2", s.Index())
	}
	if s.Turns() != 0 || s.Rounds() != 0 {
		t.Errorf("Settle counted turns=%d rounds=%d", s.Turns(), s.Rounds())
	}

	// Already on an alive seat
	s.Settle(aliveSet(2))
	if s.Index() != 2 {
		t.Errorf("Index() = %d, expected 2", s.Index())
	}
}
