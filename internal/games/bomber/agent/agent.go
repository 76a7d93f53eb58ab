// Package agent provides scripted decision makers for the bomb arena.
// Agents see only engine snapshots and answer with whole actions, the same
// interface a remote or human player uses.
package agent

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
)

// ErrUnknownStrategy is returned by New for unregistered names.
var ErrUnknownStrategy = errors.New("agent: unknown strategy")

// Strategy picks an action for one player from a snapshot.
type Strategy interface {
	Name() string
	Decide(snap engine.Snapshot, self engine.PlayerID) engine.Action
}

type constructor func(rng *rand.Rand) Strategy

var strategies = map[string]constructor{
	"random":     func(rng *rand.Rand) Strategy { return &Random{rng: rng} },
	"aggressive": func(rng *rand.Rand) Strategy { return &Aggressive{rng: rng} },
	"defensive":  func(rng *rand.Rand) Strategy { return &Defensive{rng: rng} },
	"tactical":   func(rng *rand.Rand) Strategy { return &Tactical{rng: rng} },
}

// Default is the strategy used when none is named.
const Default = "tactical"

// Names returns the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the named strategy with its own seeded random source.
// An empty name selects Default.
func New(name string, seed int64) (Strategy, error) {
	if name == "" {
		name = Default
	}
	ctor, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return ctor(rand.New(rand.NewSource(seed))), nil
}

// pick returns a uniformly random option, or stay when opts is empty.
func pick(rng *rand.Rand, opts []Option) engine.Action {
	if len(opts) == 0 {
		return engine.Stay()
	}
	return opts[rng.Intn(len(opts))].Action
}

// best returns the option with the highest score. Ties go to a random
// candidate so agents sharing a board do not move in lockstep.
func best(rng *rand.Rand, opts []Option, score func(Option) float64) engine.Action {
	if len(opts) == 0 {
		return engine.Stay()
	}
	var top []Option
	bestScore := 0.0
	for _, o := range opts {
		s := score(o)
		switch {
		case len(top) == 0 || s > bestScore:
			top, bestScore = []Option{o}, s
		case s == bestScore:
			top = append(top, o)
		}
	}
	return pick(rng, top)
}
