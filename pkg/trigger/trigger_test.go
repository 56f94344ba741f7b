package trigger

import (
	"testing"
	"time"
)

func TestGate(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	gate := newGateWithClock(3*time.Second, clock)

	t.Run("first call opens", func(t *testing.T) {
		if !gate.Allow() {
			t.Fatal("first Allow should return true")
		}
	})

	t.Run("second call within interval closed", func(t *testing.T) {
		if gate.Allow() {
			t.Fatal("Allow within interval should return false")
		}
		now = now.Add(2 * time.Second)
		if gate.Allow() {
			t.Fatal("Allow at 2s of 3s cooldown should return false")
		}
	})

	t.Run("opens again after full interval", func(t *testing.T) {
		now = now.Add(time.Second)
		if !gate.Allow() {
			t.Fatal("Allow after full interval should return true")
		}
		if gate.Allow() {
			t.Fatal("timer must reset on the opening call")
		}
	})

	t.Run("remaining counts down", func(t *testing.T) {
		now = now.Add(time.Second)
		if rem := gate.Remaining(); rem != 2*time.Second {
			t.Errorf("Remaining = %v, want 2s", rem)
		}
	})
}

func TestTrackerStreakResets(t *testing.T) {
	tr := NewTracker(3, 5)

	tr.Observe(true)
	tr.Observe(false)
	tr.Observe(false)
	if tr.Streak() != 2 {
		t.Errorf("streak after 2 no-ball frames: got %d", tr.Streak())
	}

	tr.Observe(true)
	if tr.Streak() != 0 {
		t.Errorf("streak must reset to 0 on a ball frame, got %d", tr.Streak())
	}
}

func TestTrackerBigPlayScenario(t *testing.T) {
	// Frames 1-2: ball present. Frames 3-6: no ball (streak reaches 4).
	// Big play fires on the frame the streak crosses the threshold, once.
	// Frame 7: ball reappears, exactly one play_result, streak resets.
	tr := NewTracker(3, 5)

	if ev := tr.Observe(true); ev.Type != EventRoutine {
		t.Fatalf("frame 1: got %q", ev.Type)
	}
	if ev := tr.Observe(true); ev.Type != EventRoutine {
		t.Fatalf("frame 2: got %q", ev.Type)
	}

	if ev := tr.Observe(false); ev.Type != EventNone {
		t.Fatalf("frame 3: got %q, want none", ev.Type)
	}
	if ev := tr.Observe(false); ev.Type != EventNone {
		t.Fatalf("frame 4: got %q, want none", ev.Type)
	}
	if ev := tr.Observe(false); ev.Type != EventNone {
		t.Fatalf("frame 5 (streak at threshold): got %q, want none", ev.Type)
	}
	if ev := tr.Observe(false); ev.Type != EventBigPlay {
		t.Fatalf("frame 6 (streak exceeds threshold): got %q, want big_play", ev.Type)
	}
	if tr.Streak() != 4 {
		t.Errorf("streak after frame 6: got %d, want 4", tr.Streak())
	}

	ev := tr.Observe(true)
	if ev.Type != EventPlayResult {
		t.Fatalf("frame 7: got %q, want play_result", ev.Type)
	}
	if tr.Streak() != 0 {
		t.Errorf("streak after reappearance: got %d, want 0", tr.Streak())
	}

	// The latch cleared, so a new absence episode can fire again.
	tr.Observe(false)
	tr.Observe(false)
	tr.Observe(false)
	if ev := tr.Observe(false); ev.Type != EventBigPlay {
		t.Errorf("new absence episode should fire again, got %q", ev.Type)
	}
}

func TestTrackerReappearanceAfterThresholdAbsence(t *testing.T) {
	// Three no-ball frames reach the threshold without firing a big play;
	// the reappearance event still fires when the ball returns.
	tr := NewTracker(3, 5)
	tr.Observe(true)
	tr.Observe(false)
	tr.Observe(false)
	tr.Observe(false)

	ev := tr.Observe(true)
	if ev.Type != EventPlayResult {
		t.Fatalf("got %q, want play_result", ev.Type)
	}
	if tr.Streak() != 0 {
		t.Errorf("streak: got %d, want 0", tr.Streak())
	}
}

func TestTrackerNoBigPlayBeforeBallSeen(t *testing.T) {
	tr := NewTracker(3, 5)
	for i := 0; i < 10; i++ {
		if ev := tr.Observe(false); ev.Type != EventNone {
			t.Fatalf("frame %d: big play must not fire before the ball was ever seen, got %q", i+1, ev.Type)
		}
	}
}

func TestTriggerEventMode(t *testing.T) {
	trig := New(ModeEvent, time.Nanosecond, 3, 5)

	t.Run("routine event passes when gate open", func(t *testing.T) {
		ev, speak := trig.Decide(true)
		if !speak || ev.Type != EventRoutine {
			t.Fatalf("got speak=%v type=%q", speak, ev.Type)
		}
	})

	t.Run("no event means no turn even with open gate", func(t *testing.T) {
		time.Sleep(time.Microsecond)
		// Ball was present, so one absent frame is below threshold.
		_, speak := trig.Decide(false)
		if speak {
			t.Fatal("expected no turn on a no-event frame")
		}
	})
}

func TestTriggerEventModeRespectsCooldown(t *testing.T) {
	trig := New(ModeEvent, time.Hour, 3, 5)

	if _, speak := trig.Decide(true); !speak {
		t.Fatal("first routine event should speak")
	}
	if _, speak := trig.Decide(true); speak {
		t.Fatal("second event within cooldown must be suppressed")
	}
}

func TestTriggerTimerMode(t *testing.T) {
	trig := New(ModeTimer, time.Hour, 3, 5)

	t.Run("first tick speaks with no ball ever seen", func(t *testing.T) {
		ev, speak := trig.Decide(false)
		if !speak {
			t.Fatal("timer mode should speak on the tick regardless of ball state")
		}
		if ev.Type != EventRoutine {
			t.Errorf("got %q, want synthesized routine event", ev.Type)
		}
		if ev.Seed == "" {
			t.Error("expected a prompt seed")
		}
	})

	t.Run("within cooldown stays quiet", func(t *testing.T) {
		if _, speak := trig.Decide(true); speak {
			t.Fatal("timer mode must still respect the cooldown")
		}
	})
}
