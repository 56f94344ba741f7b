package trigger

import "time"

// Mode selects the gating policy.
type Mode string

const (
	// ModeEvent speaks only when the tracker raises an event and the
	// cooldown gate is open.
	ModeEvent Mode = "event"

	// ModeTimer speaks on every cooldown tick regardless of ball state;
	// detection only enriches the prompt.
	ModeTimer Mode = "timer"
)

// Trigger combines the ball tracker and the cooldown gate under one
// gating policy. One per session; not safe for concurrent use.
type Trigger struct {
	mode    Mode
	gate    *Gate
	tracker *Tracker
}

// New creates a trigger. cooldown is the minimum time between commentary
// turns; threshold and fps configure the tracker.
func New(mode Mode, cooldown time.Duration, threshold, fps int) *Trigger {
	return &Trigger{
		mode:    mode,
		gate:    NewGate(cooldown),
		tracker: NewTracker(threshold, fps),
	}
}

// Tracker exposes the ball tracker for state inspection.
func (t *Trigger) Tracker() *Tracker {
	return t.tracker
}

// Decide processes one frame's ball presence and reports whether a
// commentary turn should be produced, and with which prompt seed.
func (t *Trigger) Decide(ballPresent bool) (Event, bool) {
	ev := t.tracker.Observe(ballPresent)

	switch t.mode {
	case ModeTimer:
		if !t.gate.Allow() {
			return ev, false
		}
		if ev.Type == EventNone {
			ev = Event{
				Type: EventRoutine,
				Seed: "Continue the live commentary on what you can see right now.",
			}
		}
		return ev, true

	default: // ModeEvent
		if ev.Type == EventNone {
			return ev, false
		}
		if !t.gate.Allow() {
			return ev, false
		}
		return ev, true
	}
}
