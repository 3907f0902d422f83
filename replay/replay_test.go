package replay

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"arena-client/config"
	"arena-client/game"
	"arena-client/geom"
	"arena-client/predict"
	"arena-client/wire"
)

func arena(t *testing.T) wire.TileMap {
	t.Helper()
	m := wire.TileMap{Width: 12}
	for r := 0; r < 12; r++ {
		row := make([]wire.Cell, 12)
		for c := range row {
			row[c] = wire.Cell{Type: 1}
			if r == 0 || r == 11 || c == 0 || c == 11 {
				row[c] = wire.Cell{Type: 2}
			}
		}
		m.Rows = append(m.Rows, row)
	}
	m.Rows[5][7] = wire.Cell{Type: 3, Orientation: 1}
	return m
}

func mustEncode(t *testing.T, msg wire.Message) []byte {
	t.Helper()
	var (
		buf []byte
		err error
	)
	switch m := msg.(type) {
	case wire.Init:
		buf, err = wire.EncodeInit(m)
	case wire.StateUpdate:
		buf, err = wire.EncodeStateUpdate(m)
	}
	require.NoError(t, err)
	return buf
}

// session produces the inbound frames and inputs of a short scripted match.
func session(t *testing.T) (inbound [][][]byte, inputs []game.InputSample) {
	t.Helper()
	for i := 0; i < 60; i++ {
		var msgs [][]byte
		switch {
		case i == 0:
			msgs = append(msgs, mustEncode(t, wire.Init{PlayerID: 1, Map: arena(t)}))
		case i%4 == 1:
			u := wire.StateUpdate{
				ServerTick:      predict.Tick(100 + i),
				Ack:             i > 1,
				AckedTick:       predict.Tick(100 + i - 2),
				Pos:             geom.V(96, 96),
				Energy:          70,
				SecondaryEnergy: 120,
				Players: []wire.RemotePlayer{
					{ID: 1, Pos: geom.V(96, 96)},
					{ID: 2, Pos: geom.V(256, 200), Dir: uint8(i % 9)},
				},
			}
			if i == 9 {
				u.Lasers = []wire.LaserSpawn{{Kind: wire.LaserBouncy, Owner: 2, SpawnTick: predict.Tick(100 + i - 1), Start: geom.V(256, 200), Angle: 2.5}}
			}
			msgs = append(msgs, mustEncode(t, u))
		}
		inbound = append(inbound, msgs)
		inputs = append(inputs, game.InputSample{
			Right:       i%2 == 0,
			Up:          i%3 == 0,
			DoPrimary:   i == 20,
			DoSecondary: i == 30,
			AimAngle:    0.7,
		})
	}
	return inbound, inputs
}

func TestReplayReproducesSnapshots(t *testing.T) {
	cfg := config.Defaults().Sim
	inbound, inputs := session(t)

	var rec bytes.Buffer
	r, err := NewRecorder(&rec, cfg)
	require.NoError(t, err)

	live := game.NewSimulation(cfg)
	var want []game.Snapshot
	for i := range inputs {
		for _, msg := range inbound[i] {
			live.Enqueue(msg)
		}
		require.NoError(t, r.Record(inbound[i], inputs[i]))
		if snap, ok := live.Step(inputs[i], nil); ok {
			want = append(want, snap)
		}
	}
	require.NoError(t, r.Flush())
	require.Equal(t, len(inputs), r.Frames())
	require.NotEmpty(t, want)

	rd, err := NewReader(&rec)
	require.NoError(t, err)
	require.Equal(t, r.Header().ID, rd.Header().ID)
	require.NotEqual(t, uuid.Nil, rd.Header().ID)
	require.True(t, r.Header().Recorded.Equal(rd.Header().Recorded))
	require.Equal(t, cfg, rd.Header().Sim)

	var got []game.Snapshot
	stats, err := Run(rd, func(s game.Snapshot) { got = append(got, s) })
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, live.Stats(), stats)
}

func TestReaderRejectsUnknownVersion(t *testing.T) {
	raw, err := msgpack.Marshal(&Header{Version: 99, ID: uuid.New()})
	require.NoError(t, err)
	_, err = NewReader(bytes.NewReader(raw))
	require.True(t, errors.Is(err, ErrVersion))
}

func TestReaderTruncatedFrame(t *testing.T) {
	var rec bytes.Buffer
	r, err := NewRecorder(&rec, config.Defaults().Sim)
	require.NoError(t, err)
	require.NoError(t, r.Record([][]byte{{1, 2, 3}}, game.InputSample{Left: true}))
	require.NoError(t, r.Flush())

	full := rec.Bytes()
	rd, err := NewReader(bytes.NewReader(full[:len(full)-2]))
	require.NoError(t, err)
	_, err = rd.Next()
	require.Error(t, err)
	require.NotErrorIs(t, err, io.EOF)
}

func TestFrameSample(t *testing.T) {
	var rec bytes.Buffer
	r, err := NewRecorder(&rec, config.Defaults().Sim)
	require.NoError(t, err)
	in := game.InputSample{Tick: 9, Down: true, DoSecondary: true, AimAngle: -1.25}
	require.NoError(t, r.Record(nil, in))
	require.NoError(t, r.Flush())

	rd, err := NewReader(&rec)
	require.NoError(t, err)
	f, err := rd.Next()
	require.NoError(t, err)
	got, err := f.Sample()
	require.NoError(t, err)
	require.Equal(t, in, got)

	_, err = rd.Next()
	require.ErrorIs(t, err, io.EOF)
}
