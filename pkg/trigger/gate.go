package trigger

import "time"

// Gate is a monotonic-clock debounce. Allow returns true at most once per
// interval, and the internal timer resets exactly when it returns true, so
// callers can poll it as often as they like.
type Gate struct {
	interval time.Duration
	now      func() time.Time
	last     time.Time
}

// NewGate creates a gate with the given minimum interval between opens.
// The first call to Allow always returns true.
func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval, now: time.Now}
}

// newGateWithClock injects a clock for tests.
func newGateWithClock(interval time.Duration, now func() time.Time) *Gate {
	return &Gate{interval: interval, now: now}
}

// Allow reports whether the cooldown has elapsed, opening the gate and
// restarting the timer when it has.
func (g *Gate) Allow() bool {
	now := g.now()
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}

// Remaining returns the time until the gate next opens. Zero when open.
func (g *Gate) Remaining() time.Duration {
	if g.last.IsZero() {
		return 0
	}
	rem := g.interval - g.now().Sub(g.last)
	if rem < 0 {
		return 0
	}
	return rem
}
