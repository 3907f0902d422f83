// Package wire encodes and decodes the fixed big-endian binary messages
// exchanged with the game server.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"arena-client/geom"
)

var (
	ErrTruncated      = errors.New("wire: message truncated")
	ErrUnknownMessage = errors.New("wire: unknown message type")
	ErrOutOfRange     = errors.New("wire: field out of range")
	ErrTrailingBytes  = errors.New("wire: trailing bytes")
)

// writer appends big-endian fields to a byte slice
type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) u16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

func (w *writer) f64(v float64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

func (w *writer) vec(v geom.Vec) {
	w.f64(v.X)
	w.f64(v.Y)
}

// reader consumes big-endian fields. The first short read sets err and every
// later read returns zero, so callers check err once at the end.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.buf)-r.off < n {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, r.off, len(r.buf)-r.off)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// f64 rejects NaN and infinities; no field on the wire may carry them.
func (r *reader) f64() float64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	v := math.Float64frombits(binary.BigEndian.Uint64(b))
	if math.IsNaN(v) || math.IsInf(v, 0) {
		r.err = fmt.Errorf("%w: non-finite float at offset %d", ErrOutOfRange, r.off-8)
		return 0
	}
	return v
}

func (r *reader) vec() geom.Vec {
	x := r.f64()
	y := r.f64()
	return geom.Vec{X: x, Y: y}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

// finish reports the sticky error, or ErrTrailingBytes when input is left over.
func (r *reader) finish() error {
	if r.err != nil {
		return r.err
	}
	if n := r.remaining(); n > 0 {
		return fmt.Errorf("%w: %d unread", ErrTrailingBytes, n)
	}
	return nil
}
