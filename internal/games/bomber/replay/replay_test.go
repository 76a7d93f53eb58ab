package replay

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vovakirdan/bombarena/internal/games/bomber/agent"
	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
)

// recordMatch plays turns of a seeded all-CPU match into rec.
func recordMatch(t *testing.T, rec *Recorder, turns int) *engine.Game {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Seed = 5
	g, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	strat, err := agent.New("tactical", 5)
	if err != nil {
		t.Fatalf("agent.New failed: %v", err)
	}
	if err := rec.Initial(g.Snapshot()); err != nil {
		t.Fatalf("Initial failed: %v", err)
	}
	for i := 0; i < turns && !g.Over(); i++ {
		id := g.CurrentPlayer()
		a := strat.Decide(g.Snapshot(), id)
		if _, err := g.Act(id, a); err != nil {
			a = engine.Stay()
			if _, err := g.Act(id, a); err != nil {
				t.Fatalf("Act(%d, stay) failed: %v", id, err)
			}
		}
		if err := rec.Record(g.TurnCount(), id, a, g.Snapshot()); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	return g
}

func TestRecordAndRead(t *testing.T) {
	var buf bytes.Buffer
	h := Header{MatchID: "m-1", Seed: 5, Width: 13, Height: 11, Players: 4,
		Strategies: []string{"tactical"}, StartedAt: time.Unix(1700000000, 0)}
	rec, err := NewRecorder(&buf, h)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	g := recordMatch(t, rec, 24)
	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rep, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rep.Header.Version != Version || rep.Header.MatchID != "m-1" || rep.Header.Seed != 5 {
		t.Errorf("header = %+v", rep.Header)
	}
	if len(rep.Frames) != rec.Frames() {
		t.Fatalf("read %d frames, recorded %d", len(rep.Frames), rec.Frames())
	}
	if rep.Frames[0].Turn != 0 || rep.Frames[0].Player != 0 {
		t.Errorf("first frame = turn %d player %d, expected the initial state", rep.Frames[0].Turn, rep.Frames[0].Player)
	}

	final, err := rep.Final()
	if err != nil {
		t.Fatalf("Final failed: %v", err)
	}
	live := g.Snapshot()
	if final.TurnCount != live.TurnCount || final.RoundCount != live.RoundCount {
		t.Errorf("counters turn=%d round=%d, expected %d and %d",
			final.TurnCount, final.RoundCount, live.TurnCount, live.RoundCount)
	}
	if !reflect.DeepEqual(final.Players, live.Players) {
		t.Errorf("players = %+v, expected %+v", final.Players, live.Players)
	}
	if !reflect.DeepEqual(final.Terrain, live.Terrain) {
		t.Error("terrain differs after decoding")
	}
}

func TestFramesAreSequential(t *testing.T) {
	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, Header{})
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	recordMatch(t, rec, 8)

	rep, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	for i, f := range rep.Frames {
		if f.Turn != i {
			t.Errorf("frame %d has turn %d", i, f.Turn)
		}
		snap, err := f.State()
		if err != nil {
			t.Fatalf("frame %d: State failed: %v", i, err)
		}
		if snap.TurnCount != i {
			t.Errorf("frame %d: snapshot turn count %d", i, snap.TurnCount)
		}
	}
}

func TestCreateAndOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replays", "match.bar")
	rec, err := Create(path, Header{MatchID: "file"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	recordMatch(t, rec, 4)
	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rep, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if rep.Header.MatchID != "file" || len(rep.Frames) != 5 {
		t.Errorf("match=%q frames=%d, expected file and 5", rep.Header.MatchID, len(rep.Frames))
	}
}

func TestReadRejectsUnknownVersion(t *testing.T) {
	data, err := msgpack.Marshal(&Header{Version: 99})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if _, err := Read(bytes.NewReader(data)); !errors.Is(err, ErrVersion) {
		t.Errorf("Read error = %v, expected ErrVersion", err)
	}
}

func TestFinalWithoutFrames(t *testing.T) {
	rep := &Replay{}
	if _, err := rep.Final(); err == nil {
		t.Error("expected an error for an empty replay")
	}
}

func TestRecorderAssignsMatchID(t *testing.T) {
	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, Header{Seed: 1})
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	if rec.MatchID() == "" {
		t.Fatal("expected a generated match ID")
	}

	rep, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rep.Header.MatchID != rec.MatchID() {
		t.Errorf("header match ID %q, recorder reports %q", rep.Header.MatchID, rec.MatchID())
	}
}
