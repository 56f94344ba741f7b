package config

import "testing"

func TestValidate(t *testing.T) {
	valid := Config{
		CommentaryMode:      ModeEventGated,
		DetectionFPS:        5,
		DetectionConfidence: 0.5,
		CommentaryCooldown:  5.0,
	}

	t.Run("valid config passes", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("timer mode passes", func(t *testing.T) {
		cfg := valid
		cfg.CommentaryMode = ModeTimerGated
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		cfg := valid
		cfg.CommentaryMode = "sometimes"
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for unknown mode")
		}
	})

	t.Run("zero fps rejected", func(t *testing.T) {
		cfg := valid
		cfg.DetectionFPS = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for zero fps")
		}
	})

	t.Run("confidence above 1 rejected", func(t *testing.T) {
		cfg := valid
		cfg.DetectionConfidence = 1.5
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for confidence > 1")
		}
	})

	t.Run("negative cooldown rejected", func(t *testing.T) {
		cfg := valid
		cfg.CommentaryCooldown = -1
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for negative cooldown")
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DetectionFPS != 5 {
		t.Errorf("default fps: got %d, want 5", cfg.DetectionFPS)
	}
	if cfg.CommentaryMode != ModeEventGated {
		t.Errorf("default mode: got %q, want %q", cfg.CommentaryMode, ModeEventGated)
	}
	if cfg.Sport != "soccer" {
		t.Errorf("default sport: got %q, want soccer", cfg.Sport)
	}
	if cfg.MaxVideoDuration != 700 {
		t.Errorf("default max duration: got %d, want 700", cfg.MaxVideoDuration)
	}
}
