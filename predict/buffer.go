package predict

import "log"

// Entry is a predicted value stamped with the tick it was made for.
type Entry[T any] struct {
	Value T
	Tick  Tick
}

// Buffer holds predictions oldest to newest until the server acknowledges
// them. Ticks must be pushed in increasing mod-256 order.
type Buffer[T any] struct {
	name     string
	entries  []Entry[T]
	capacity int
	evicted  int
}

// NewBuffer creates a buffer holding at most capacity entries.
// name is only used in log output.
func NewBuffer[T any](name string, capacity int) *Buffer[T] {
	if capacity <= 0 {
		panic("predict: buffer capacity must be positive")
	}
	return &Buffer[T]{
		name:     name,
		entries:  make([]Entry[T], 0, capacity),
		capacity: capacity,
	}
}

// Predict appends a prediction, evicting the oldest entry when full
func (b *Buffer[T]) Predict(v T, tick Tick) {
	if len(b.entries) == b.capacity {
		log.Printf("%s prediction buffer full, dropping tick %d", b.name, b.entries[0].Tick)
		copy(b.entries, b.entries[1:])
		b.entries = b.entries[:len(b.entries)-1]
		b.evicted++
	}
	b.entries = append(b.entries, Entry[T]{Value: v, Tick: tick})
}

// Ack removes every entry up to and including the first one stamped with
// tick and returns how many were removed. An unmatched tick removes nothing.
func (b *Buffer[T]) Ack(tick Tick) int {
	n := 0
	for i := range b.entries {
		if b.entries[i].Tick == tick {
			n = i + 1
			break
		}
	}
	if n == 0 {
		return 0
	}
	remaining := copy(b.entries, b.entries[n:])
	clear(b.entries[remaining:])
	b.entries = b.entries[:remaining]
	return n
}

// LastTick returns the newest tick, or ok=false when empty.
func (b *Buffer[T]) LastTick() (tick Tick, ok bool) {
	if len(b.entries) == 0 {
		return 0, false
	}
	return b.entries[len(b.entries)-1].Tick, true
}

func (b *Buffer[T]) Len() int {
	return len(b.entries)
}

// Entries returns the buffered entries oldest first. The slice is owned by
// the buffer and is only valid until the next Predict or Ack.
func (b *Buffer[T]) Entries() []Entry[T] {
	return b.entries
}

// Evicted returns how many entries were dropped on overflow
func (b *Buffer[T]) Evicted() int {
	return b.evicted
}

