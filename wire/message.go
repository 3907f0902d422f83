package wire

import (
	"fmt"
	"math"

	"arena-client/geom"
	"arena-client/predict"
)

// Message type bytes
const (
	MsgInput       uint8 = 0
	MsgStateUpdate uint8 = 1
	MsgInit        uint8 = 2
)

// Input movement bits
const (
	BitLeft  uint8 = 1
	BitRight uint8 = 2
	BitUp    uint8 = 4
	BitDown  uint8 = 8
)

// Input action flags
const (
	FlagPrimary   uint8 = 1
	FlagSecondary uint8 = 2
)

// State update flags
const (
	FlagAck      uint8 = 1
	FlagThrottle uint8 = 2 // server asks the client to slow its tick rate
	FlagRespawn  uint8 = 4 // acked position is a discontinuity
)

// MaxDirCode is the highest remote-player direction code
const MaxDirCode = 8

// Laser kinds on the wire
const (
	LaserStraight uint8 = 0
	LaserBouncy   uint8 = 1
)

// Message is one decoded server or client message
type Message interface {
	Type() uint8
}

// Input is the client's per-tick input.
type Input struct {
	Left, Right, Up, Down bool
	Tick                  predict.Tick
	Primary, Secondary    bool
	AimAngle              float64 // only sent when shooting
}

func (Input) Type() uint8 { return MsgInput }

// Bits returns the movement bitfield
func (in Input) Bits() uint8 {
	var b uint8
	if in.Left {
		b |= BitLeft
	}
	if in.Right {
		b |= BitRight
	}
	if in.Up {
		b |= BitUp
	}
	if in.Down {
		b |= BitDown
	}
	return b
}

func (in Input) shooting() bool {
	return in.Primary || in.Secondary
}

// RemotePlayer is another player's authoritative state
type RemotePlayer struct {
	ID  uint8
	Pos geom.Vec
	Dir uint8 // 9-way direction code
}

// LaserSpawn announces a laser fired by any player
type LaserSpawn struct {
	Kind      uint8
	Owner     uint8
	SpawnTick predict.Tick
	Start     geom.Vec
	Angle     float64
}

// StateUpdate is the server's authoritative snapshot for this client.
type StateUpdate struct {
	Ack, Throttle, Respawn bool
	Pos                    geom.Vec
	Players                []RemotePlayer

	ServerTick      predict.Tick
	AckedTick       predict.Tick // valid when Ack is set
	Energy          uint16
	SecondaryEnergy uint16
	Lasers          []LaserSpawn
}

func (StateUpdate) Type() uint8 { return MsgStateUpdate }

func (s StateUpdate) flags() uint8 {
	var f uint8
	if s.Ack {
		f |= FlagAck
	}
	if s.Throttle {
		f |= FlagThrottle
	}
	if s.Respawn {
		f |= FlagRespawn
	}
	return f
}

// Init is sent once after connecting
type Init struct {
	PlayerID uint8
	Map      TileMap
}

func (Init) Type() uint8 { return MsgInit }

// EncodeInput writes [type][bits][tick][flags][aim if shooting].
func EncodeInput(in Input) []byte {
	w := writer{buf: make([]byte, 0, 12)}
	w.u8(MsgInput)
	w.u8(in.Bits())
	w.u8(uint8(in.Tick))
	var flags uint8
	if in.Primary {
		flags |= FlagPrimary
	}
	if in.Secondary {
		flags |= FlagSecondary
	}
	w.u8(flags)
	if in.shooting() {
		w.f64(in.AimAngle)
	}
	return w.buf
}

func decodeInput(r *reader) Input {
	bits := r.u8()
	if bits&^(BitLeft|BitRight|BitUp|BitDown) != 0 && r.err == nil {
		r.err = fmt.Errorf("%w: input bits %#x", ErrOutOfRange, bits)
	}
	in := Input{
		Left:  bits&BitLeft != 0,
		Right: bits&BitRight != 0,
		Up:    bits&BitUp != 0,
		Down:  bits&BitDown != 0,
	}
	in.Tick = predict.Tick(r.u8())
	flags := r.u8()
	in.Primary = flags&FlagPrimary != 0
	in.Secondary = flags&FlagSecondary != 0
	if in.shooting() {
		in.AimAngle = r.f64()
	}
	return in
}

// EncodeStateUpdate writes a state update in the server's layout.
func EncodeStateUpdate(s StateUpdate) ([]byte, error) {
	if len(s.Players) > math.MaxUint8 {
		return nil, fmt.Errorf("%w: %d players", ErrOutOfRange, len(s.Players))
	}
	if len(s.Lasers) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d lasers", ErrOutOfRange, len(s.Lasers))
	}
	w := writer{buf: make([]byte, 0, 64)}
	w.u8(MsgStateUpdate)
	w.u8(s.flags())
	w.vec(s.Pos)
	w.u8(uint8(len(s.Players)))
	for _, p := range s.Players {
		if p.Dir > MaxDirCode {
			return nil, fmt.Errorf("%w: direction code %d", ErrOutOfRange, p.Dir)
		}
		w.u8(p.ID)
		w.vec(p.Pos)
		w.u8(p.Dir)
	}
	w.u8(uint8(s.ServerTick))
	if s.Ack {
		w.u8(uint8(s.AckedTick))
	}
	w.u16(s.Energy)
	w.u16(s.SecondaryEnergy)
	w.u16(uint16(len(s.Lasers)))
	for _, l := range s.Lasers {
		if l.Kind > LaserBouncy {
			return nil, fmt.Errorf("%w: laser kind %d", ErrOutOfRange, l.Kind)
		}
		w.u8(l.Kind)
		w.u8(l.Owner)
		w.u8(uint8(l.SpawnTick))
		w.vec(l.Start)
		w.f64(l.Angle)
	}
	return w.buf, nil
}

func decodeStateUpdate(r *reader) (StateUpdate, error) {
	var s StateUpdate
	flags := r.u8()
	s.Ack = flags&FlagAck != 0
	s.Throttle = flags&FlagThrottle != 0
	s.Respawn = flags&FlagRespawn != 0
	s.Pos = r.vec()

	n := int(r.u8())
	if n > 0 && r.err == nil {
		s.Players = make([]RemotePlayer, 0, n)
	}
	for i := 0; i < n && r.err == nil; i++ {
		p := RemotePlayer{ID: r.u8(), Pos: r.vec(), Dir: r.u8()}
		if p.Dir > MaxDirCode && r.err == nil {
			return s, fmt.Errorf("%w: direction code %d", ErrOutOfRange, p.Dir)
		}
		s.Players = append(s.Players, p)
	}

	s.ServerTick = predict.Tick(r.u8())
	if s.Ack {
		s.AckedTick = predict.Tick(r.u8())
	}
	s.Energy = r.u16()
	s.SecondaryEnergy = r.u16()

	m := int(r.u16())
	for i := 0; i < m && r.err == nil; i++ {
		l := LaserSpawn{
			Kind:      r.u8(),
			Owner:     r.u8(),
			SpawnTick: predict.Tick(r.u8()),
			Start:     r.vec(),
			Angle:     r.f64(),
		}
		if l.Kind > LaserBouncy && r.err == nil {
			return s, fmt.Errorf("%w: laser kind %d", ErrOutOfRange, l.Kind)
		}
		s.Lasers = append(s.Lasers, l)
	}
	return s, r.err
}

// EncodeInit writes [type][playerId][tile map].
func EncodeInit(in Init) ([]byte, error) {
	tiles, err := EncodeTileMap(in.Map)
	if err != nil {
		return nil, err
	}
	w := writer{buf: make([]byte, 0, 2+len(tiles))}
	w.u8(MsgInit)
	w.u8(in.PlayerID)
	w.buf = append(w.buf, tiles...)
	return w.buf, nil
}

// Decode parses exactly one message. Malformed input returns an error
// wrapping one of the package's sentinel errors.
func Decode(buf []byte) (Message, error) {
	r := &reader{buf: buf}
	typ := r.u8()
	if r.err != nil {
		return nil, r.err
	}

	var (
		msg Message
		err error
	)
	switch typ {
	case MsgInput:
		msg = decodeInput(r)
	case MsgStateUpdate:
		msg, err = decodeStateUpdate(r)
	case MsgInit:
		id := r.u8()
		if r.err != nil {
			return nil, r.err
		}
		m, terr := DecodeTileMap(buf[r.off:])
		if terr != nil {
			return nil, fmt.Errorf("init: %w", terr)
		}
		return Init{PlayerID: id, Map: m}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessage, typ)
	}
	if err != nil {
		return nil, err
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return msg, nil
}
