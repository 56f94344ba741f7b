// Package trigger decides when the commentator speaks. A Tracker watches
// ball presence across frames and raises narrative events; a Gate debounces
// them against the commentary cooldown; a Trigger combines the two under
// the configured gating policy.
package trigger

import "fmt"

// EventType names a narrative event raised by the tracker.
type EventType string

const (
	// EventNone means nothing noteworthy this frame.
	EventNone EventType = ""

	// EventRoutine is ordinary play with the ball in view.
	EventRoutine EventType = "play_in_progress"

	// EventBigPlay fires when the ball leaves view long enough to suggest
	// a long pass, breakaway, or shot.
	EventBigPlay EventType = "big_play"

	// EventPlayResult fires when the ball reappears after a big play.
	EventPlayResult EventType = "play_result"
)

// Event is a narrative event plus the prompt seed handed to the composer.
type Event struct {
	Type EventType
	Seed string
}

// DefaultNoBallThreshold is the consecutive no-ball frame count that
// constitutes a big play (0.6s at 5 FPS).
const DefaultNoBallThreshold = 3

// Tracker maintains per-session ball presence state. Not safe for
// concurrent use; each session owns one.
type Tracker struct {
	threshold int
	fps       int

	consecutiveNoBall int
	ballWasPresent    bool
	bigPlayFired      bool
}

// NewTracker creates a tracker. threshold <= 0 uses the default; fps is
// used only to phrase missing-time durations.
func NewTracker(threshold, fps int) *Tracker {
	if threshold <= 0 {
		threshold = DefaultNoBallThreshold
	}
	if fps <= 0 {
		fps = 1
	}
	return &Tracker{threshold: threshold, fps: fps}
}

// Streak returns the current consecutive no-ball frame count.
func (t *Tracker) Streak() int {
	return t.consecutiveNoBall
}

// Observe processes one frame's ball presence and returns the narrative
// event it produces, if any.
//
// Rules:
//   - ball present after an absence of at least threshold frames (ball
//     previously seen): one play_result event, streak resets to 0.
//   - ball present otherwise: streak resets to 0, routine event.
//   - ball absent: streak increments; the frame the streak first exceeds
//     the threshold (with the ball previously seen) fires one big_play
//     event. The fired latch clears only when the ball reappears.
func (t *Tracker) Observe(ballPresent bool) Event {
	if ballPresent {
		streak := t.consecutiveNoBall
		wasPresent := t.ballWasPresent
		t.consecutiveNoBall = 0
		t.bigPlayFired = false
		t.ballWasPresent = true

		if wasPresent && streak >= t.threshold {
			missing := float64(streak) / float64(t.fps)
			return Event{
				Type: EventPlayResult,
				Seed: fmt.Sprintf(
					"The ball has reappeared on screen after being out of view for about %.1f seconds. "+
						"The play seems to have concluded. Describe what likely happened based on the "+
						"players' positions and reactions.", missing),
			}
		}

		return Event{
			Type: EventRoutine,
			Seed: "Play is in progress with the ball in view. Describe the action on the field.",
		}
	}

	t.consecutiveNoBall++

	if t.consecutiveNoBall > t.threshold && t.ballWasPresent && !t.bigPlayFired {
		t.bigPlayFired = true
		missing := float64(t.consecutiveNoBall) / float64(t.fps)
		return Event{
			Type: EventBigPlay,
			Seed: fmt.Sprintf(
				"Big play! The ball disappeared from view for %.1f seconds, suggesting a long pass, "+
					"big run, or significant play. The camera is following the action. Build excitement "+
					"and speculate on what is happening!", missing),
		}
	}

	return Event{Type: EventNone}
}

// Reset clears all tracking state, as on session restart.
func (t *Tracker) Reset() {
	t.consecutiveNoBall = 0
	t.ballWasPresent = false
	t.bigPlayFired = false
}
