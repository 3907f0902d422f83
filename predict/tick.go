package predict

// Tick is a simulation step counter that wraps mod 256.
type Tick uint8

// Distance returns how many ticks forward to is from from, across wraparound.
func Distance(from, to Tick) uint8 {
	return uint8(to - from)
}

// Before reports whether t comes strictly before o, treating any forward
// distance under half the ring as "ahead".
func (t Tick) Before(o Tick) bool {
	d := Distance(t, o)
	return d != 0 && d < 128
}

func (t Tick) Next() Tick {
	return t + 1
}

// Clock holds the client's current tick
type Clock struct {
	now     Tick
	started bool
}

func (c *Clock) Now() Tick {
	return c.now
}

// Started reports whether the clock has been synchronised with the server
func (c *Clock) Started() bool {
	return c.started
}

// Sync sets the clock to the server's tick the first time it is called.
func (c *Clock) Sync(server Tick) {
	if c.started {
		return
	}
	c.now = server
	c.started = true
}

// Advance moves the clock forward one tick and returns the new value.
func (c *Clock) Advance() Tick {
	c.now++
	return c.now
}
