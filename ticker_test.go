package main

import (
	"testing"
	"time"
)

// fakeClock advances only when slept on or when work is simulated.
type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

func newFakeTicker(rate float64) (*Ticker, *fakeClock) {
	c := &fakeClock{now: time.Unix(0, 0)}
	t := NewTicker(rate)
	t.now = c.Now
	t.sleep = c.Sleep
	t.Start()
	return t, c
}

func TestTickerSleepsRemainder(t *testing.T) {
	tk, c := newFakeTicker(50) // 20ms
	c.now = c.now.Add(5 * time.Millisecond)
	tk.Sleep()
	if len(c.slept) != 1 || c.slept[0] != 15*time.Millisecond {
		t.Fatalf("expected a 15ms sleep, got %v", c.slept)
	}
}

func TestTickerPaysBackSlowTick(t *testing.T) {
	tk, c := newFakeTicker(50)
	// A 30ms tick runs 10ms over.
	c.now = c.now.Add(30 * time.Millisecond)
	tk.Sleep()
	if len(c.slept) != 0 {
		t.Fatalf("expected no sleep after a slow tick, got %v", c.slept)
	}
	tk.Sleep()
	if len(c.slept) != 1 || c.slept[0] != 10*time.Millisecond {
		t.Fatalf("expected the next sleep shortened to 10ms, got %v", c.slept)
	}
}

func TestTickerDropsExcessLag(t *testing.T) {
	tk, c := newFakeTicker(50)
	c.now = c.now.Add(time.Second)
	tk.Sleep()
	if tk.accum != -maxLag*tk.period {
		t.Errorf("expected lag clamped to %v, got %v", -maxLag*tk.period, tk.accum)
	}
	if !tk.behind {
		t.Error("expected ticker to report falling behind")
	}
}

func TestTickerThrottle(t *testing.T) {
	tk, c := newFakeTicker(50)
	tk.SetThrottle(true, 1.5)
	if tk.Period() != 30*time.Millisecond {
		t.Fatalf("expected 30ms throttled period, got %v", tk.Period())
	}
	tk.Sleep()
	if c.slept[0] != 30*time.Millisecond {
		t.Errorf("expected a 30ms sleep, got %v", c.slept[0])
	}
	tk.SetThrottle(false, 1.5)
	if tk.Period() != 20*time.Millisecond {
		t.Errorf("expected period restored, got %v", tk.Period())
	}
}

func TestTickerPanicsUnstarted(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewTicker(30).Sleep()
}
