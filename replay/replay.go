// Package replay records what a client simulation consumed each tick so a
// session can be re-simulated offline. A recording is a msgpack stream: one
// Header followed by one Frame per simulation step.
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"arena-client/config"
	"arena-client/game"
	"arena-client/wire"
)

const formatVersion = 1

var ErrVersion = errors.New("replay: unsupported format version")

// Header identifies a recording and the parameters it was simulated with.
type Header struct {
	Version  int              `msgpack:"v"`
	ID       uuid.UUID        `msgpack:"id"`
	Recorded time.Time        `msgpack:"recorded"`
	Sim      config.SimConfig `msgpack:"sim"`
}

// Frame is one simulation step: the server messages drained before it and
// the sampled input, wire-encoded.
type Frame struct {
	Inbound [][]byte `msgpack:"in"`
	Input   []byte   `msgpack:"input"`
}

// Recorder appends frames to a recording.
type Recorder struct {
	w      *bufio.Writer
	enc    *msgpack.Encoder
	header Header
	frames int
}

// NewRecorder writes a fresh header to w.
func NewRecorder(w io.Writer, sim config.SimConfig) (*Recorder, error) {
	bw := bufio.NewWriter(w)
	r := &Recorder{
		w:   bw,
		enc: msgpack.NewEncoder(bw),
		header: Header{
			Version:  formatVersion,
			ID:       uuid.New(),
			Recorded: time.Now().UTC(),
			Sim:      sim,
		},
	}
	if err := r.enc.Encode(&r.header); err != nil {
		return nil, fmt.Errorf("write replay header: %w", err)
	}
	return r, nil
}

func (r *Recorder) Header() Header { return r.header }
func (r *Recorder) Frames() int    { return r.frames }

// Record appends one step.
func (r *Recorder) Record(inbound [][]byte, in game.InputSample) error {
	f := Frame{Inbound: inbound, Input: wire.EncodeInput(in.Wire())}
	if err := r.enc.Encode(&f); err != nil {
		return fmt.Errorf("write replay frame %d: %w", r.frames, err)
	}
	r.frames++
	return nil
}

// Flush writes buffered frames to the underlying writer.
func (r *Recorder) Flush() error {
	return r.w.Flush()
}

// Reader iterates over a recording.
type Reader struct {
	dec    *msgpack.Decoder
	header Header
}

// NewReader reads and checks the header.
func NewReader(r io.Reader) (*Reader, error) {
	rd := &Reader{dec: msgpack.NewDecoder(bufio.NewReader(r))}
	if err := rd.dec.Decode(&rd.header); err != nil {
		return nil, fmt.Errorf("read replay header: %w", err)
	}
	if rd.header.Version != formatVersion {
		return nil, fmt.Errorf("%w %d", ErrVersion, rd.header.Version)
	}
	return rd, nil
}

func (r *Reader) Header() Header { return r.header }

// Next returns the next frame, or io.EOF after the last one.
func (r *Reader) Next() (Frame, error) {
	var f Frame
	if err := r.dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("read replay frame: %w", err)
	}
	return f, nil
}

// Sample decodes the frame's sampled input.
func (f Frame) Sample() (game.InputSample, error) {
	msg, err := wire.Decode(f.Input)
	if err != nil {
		return game.InputSample{}, fmt.Errorf("replay input: %w", err)
	}
	in, ok := msg.(wire.Input)
	if !ok {
		return game.InputSample{}, fmt.Errorf("replay input: unexpected message type %d", msg.Type())
	}
	return game.InputFromWire(in), nil
}

// Run re-simulates a recording from scratch with the recorded parameters,
// calling fn with every published snapshot. It returns the final stats.
func Run(r *Reader, fn func(game.Snapshot)) (game.Stats, error) {
	sim := game.NewSimulation(r.header.Sim)
	for {
		f, err := r.Next()
		if err == io.EOF {
			return sim.Stats(), nil
		}
		if err != nil {
			return sim.Stats(), err
		}
		in, err := f.Sample()
		if err != nil {
			return sim.Stats(), err
		}
		for _, msg := range f.Inbound {
			sim.Enqueue(msg)
		}
		if snap, ok := sim.Step(in, nil); ok && fn != nil {
			fn(snap)
		}
	}
}
