package main

import (
	"log"
	"time"
)

// maxLag bounds how many ticks of debt the ticker carries before it gives
// up catching up.
const maxLag = 5

// Ticker paces the tick loop at a fixed rate. Oversleeping or a slow tick
// is paid back by shortening the following sleeps.
type Ticker struct {
	base     time.Duration
	period   time.Duration
	accum    time.Duration
	prev     time.Time
	started  bool
	behind   bool
	throttle bool

	now   func() time.Time
	sleep func(time.Duration)
}

func NewTicker(tickRate float64) *Ticker {
	d := time.Duration(float64(time.Second) / tickRate)
	return &Ticker{base: d, period: d, now: time.Now, sleep: time.Sleep}
}

func (t *Ticker) Start() {
	t.started = true
	t.prev = t.now()
}

// Period is the current target tick duration
func (t *Ticker) Period() time.Duration {
	return t.period
}

// SetThrottle lengthens the period by factor while the server reports the
// client running ahead.
func (t *Ticker) SetThrottle(on bool, factor float64) {
	if on == t.throttle {
		return
	}
	t.throttle = on
	if on {
		t.period = time.Duration(float64(t.base) * factor)
		log.Printf("ticker: throttled to %v", t.period)
	} else {
		t.period = t.base
		log.Printf("ticker: back to %v", t.period)
	}
}

// Sleep blocks for what is left of the current tick.
func (t *Ticker) Sleep() {
	if !t.started {
		log.Panic("ticker was not started")
	}
	if d := t.period + t.accum - t.now().Sub(t.prev); d > 0 {
		t.sleep(d)
	}
	spent := t.now().Sub(t.prev)
	t.accum += t.period - spent

	if limit := -maxLag * t.period; t.accum < limit {
		if !t.behind {
			log.Printf("ticker: more than %d ticks behind, dropping lag", maxLag)
		}
		t.behind = true
		t.accum = limit
	} else {
		t.behind = false
	}
	t.prev = t.now()
}
