package scene

// Clock is the shared ticker driving per-frame update callbacks.
type Clock struct {
	entries []*Token
	nextID  uint64
	stopped bool
	ticking bool
}

// Token identifies a registered callback. Cancelling it is safe from inside
// the callback itself.
type Token struct {
	id        uint64
	fn        func(dt float64)
	cancelled bool
	clock     *Clock
}

func NewClock() *Clock {
	return &Clock{}
}

// Register adds fn to be called on every tick, after previously registered
// callbacks.
func (c *Clock) Register(fn func(dt float64)) *Token {
	c.nextID++
	t := &Token{id: c.nextID, fn: fn, clock: c}
	if c.stopped {
		t.cancelled = true
		return t
	}
	c.entries = append(c.entries, t)
	return t
}

// Cancel stops the callback from being called again.
func (t *Token) Cancel() {
	if t == nil || t.cancelled {
		return
	}
	t.cancelled = true
	if !t.clock.ticking {
		t.clock.compact()
	}
}

func (t *Token) Cancelled() bool {
	return t.cancelled
}

// Tick runs every live callback with the elapsed seconds.
func (c *Clock) Tick(dt float64) {
	if c.stopped {
		return
	}
	c.ticking = true
	// callbacks registered during the tick run from the next one
	entries := c.entries
	for _, t := range entries {
		if c.stopped {
			break
		}
		if t.cancelled {
			continue
		}
		t.fn(dt)
	}
	c.ticking = false
	c.compact()
}

// Stop halts the clock permanently. Pending callbacks never run again.
func (c *Clock) Stop() {
	c.stopped = true
	for _, t := range c.entries {
		t.cancelled = true
	}
	c.entries = nil
}

func (c *Clock) Stopped() bool {
	return c.stopped
}

// Len returns the number of live callbacks.
func (c *Clock) Len() int {
	n := 0
	for _, t := range c.entries {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (c *Clock) compact() {
	live := c.entries[:0]
	for _, t := range c.entries {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(c.entries); i++ {
		c.entries[i] = nil
	}
	c.entries = live
}
