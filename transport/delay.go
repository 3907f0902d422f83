package transport

import (
	"log"
	"math/rand/v2"
	"time"
)

type delayed struct {
	msg []byte
	due time.Time
}

// DelayQueue holds messages back to imitate network latency when testing
// against a local server. Jitter varies each message's delay but release
// order always matches arrival order. A lost message is delivered late
// instead of never, the way a retransmit would.
type DelayQueue struct {
	Delay    time.Duration
	Jitter   time.Duration
	LossRate float64

	rng   *rand.Rand
	queue []delayed
	last  time.Time
}

func NewDelayQueue(delay, jitter time.Duration, seed uint64) *DelayQueue {
	return &DelayQueue{
		Delay:  delay,
		Jitter: jitter,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Push schedules msg for release relative to now.
func (q *DelayQueue) Push(msg []byte, now time.Time) {
	d := q.Delay
	if q.Jitter > 0 {
		d += time.Duration(q.rng.Int64N(int64(q.Jitter))) - q.Jitter/2
	}
	if q.LossRate > 0 && q.rng.Float64() <= q.LossRate {
		log.Printf("delay: simulating loss")
		d += 2 * q.Delay
	}
	if d < 0 {
		d = 0
	}
	due := now.Add(d)
	if due.Before(q.last) {
		due = q.last
	}
	q.last = due
	q.queue = append(q.queue, delayed{msg: msg, due: due})
}

// Pop returns every message due at or before now, in arrival order.
func (q *DelayQueue) Pop(now time.Time) [][]byte {
	n := 0
	for n < len(q.queue) && !q.queue[n].due.After(now) {
		n++
	}
	if n == 0 {
		return nil
	}
	out := make([][]byte, n)
	for i := range out {
		out[i] = q.queue[i].msg
	}
	rest := copy(q.queue, q.queue[n:])
	clear(q.queue[rest:])
	q.queue = q.queue[:rest]
	return out
}

func (q *DelayQueue) Len() int {
	return len(q.queue)
}
