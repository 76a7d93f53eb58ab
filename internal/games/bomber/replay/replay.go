// Package replay records a match as a stream of MessagePack frames and reads
// it back. A stream is one Header followed by one Frame per accepted turn;
// every frame carries a full engine snapshot.
package replay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
)

// Version is written into every header.
const Version = 1

// ErrVersion is returned for streams written by an unknown format version.
var ErrVersion = errors.New("replay: unsupported version")

// Header describes the recorded match.
type Header struct {
	Version    int       `msgpack:"version"`
	MatchID    string    `msgpack:"match_id"`
	Seed       int64     `msgpack:"seed"`
	Width      int       `msgpack:"width"`
	Height     int       `msgpack:"height"`
	Players    int       `msgpack:"players"`
	Strategies []string  `msgpack:"strategies"`
	Scenario   string    `msgpack:"scenario,omitempty"`
	StartedAt  time.Time `msgpack:"started_at"`
}

// Frame is one turn: who acted, what they did and the state afterwards.
type Frame struct {
	Turn     int             `msgpack:"turn"`
	Player   engine.PlayerID `msgpack:"player"`
	Action   string          `msgpack:"action"`
	Snapshot []byte          `msgpack:"snapshot"` // engine.EncodeSnapshot output
}

// State decodes the frame's snapshot.
func (f Frame) State() (engine.Snapshot, error) {
	return engine.DecodeSnapshot(f.Snapshot)
}

// Recorder appends frames to a stream.
type Recorder struct {
	enc     *msgpack.Encoder
	closer  io.Closer
	matchID string
	frames  int
}

// NewRecorder writes h to w and returns a recorder for the frames.
// A header without a match ID gets a fresh one.
func NewRecorder(w io.Writer, h Header) (*Recorder, error) {
	h.Version = Version
	if h.MatchID == "" {
		h.MatchID = uuid.NewString()
	}
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(&h); err != nil {
		return nil, fmt.Errorf("replay: write header: %w", err)
	}
	r := &Recorder{enc: enc, matchID: h.MatchID}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	return r, nil
}

// Create opens path for writing, creating parent directories as needed.
func Create(path string, h Header) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("replay: create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("replay: create %s: %w", path, err)
	}
	r, err := NewRecorder(f, h)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// Record appends the state after a turn.
func (r *Recorder) Record(turn int, player engine.PlayerID, action engine.Action, snap engine.Snapshot) error {
	data, err := engine.EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	f := Frame{Turn: turn, Player: player, Action: action.String(), Snapshot: data}
	if err := r.enc.Encode(&f); err != nil {
		return fmt.Errorf("replay: write frame %d: %w", turn, err)
	}
	r.frames++
	return nil
}

// Initial records the state before the first turn as frame zero.
func (r *Recorder) Initial(snap engine.Snapshot) error {
	return r.Record(0, 0, engine.Stay(), snap)
}

// MatchID returns the ID written into the header.
func (r *Recorder) MatchID() string {
	return r.matchID
}

// Frames returns the number of frames written so far.
func (r *Recorder) Frames() int {
	return r.frames
}

// Close closes the underlying writer when it is closable.
func (r *Recorder) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Replay is a fully loaded stream.
type Replay struct {
	Header Header
	Frames []Frame
}

// Read decodes a whole stream.
func Read(rd io.Reader) (*Replay, error) {
	dec := msgpack.NewDecoder(rd)
	var rep Replay
	if err := dec.Decode(&rep.Header); err != nil {
		return nil, fmt.Errorf("replay: read header: %w", err)
	}
	if rep.Header.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, rep.Header.Version)
	}
	for {
		var f Frame
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("replay: read frame %d: %w", len(rep.Frames), err)
		}
		rep.Frames = append(rep.Frames, f)
	}
	return &rep, nil
}

// Open reads the stream stored at path.
func Open(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Final returns the last recorded state.
func (r *Replay) Final() (engine.Snapshot, error) {
	if len(r.Frames) == 0 {
		return engine.Snapshot{}, fmt.Errorf("replay: no frames")
	}
	return r.Frames[len(r.Frames)-1].State()
}
