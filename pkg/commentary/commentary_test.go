package commentary

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/PreritO/cartesia-hackathon/pkg/llm"
	"github.com/PreritO/cartesia-hackathon/pkg/persona"
	"github.com/PreritO/cartesia-hackathon/pkg/tts"
)

func TestParseEmotion(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantEmotion string
		wantText    string
	}{
		{"tagged", "[EMOTION:excited] What a goal!", "excited", "What a goal!"},
		{"no tag", "Just a quiet moment here.", "neutral", "Just a quiet moment here."},
		{"tag without space", "[EMOTION:tense]Here we go.", "tense", "Here we go."},
		{"malformed tag kept as text", "[EMOTION excited] Big play!", "neutral", "[EMOTION excited] Big play!"},
		{"mid-text tag stripped", "Goal! [EMOTION:celebratory] Incredible!", "neutral", "Goal! Incredible!"},
		{"tag only", "[EMOTION:urgent]", "urgent", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emotion, text := ParseEmotion(tt.in)
			if emotion != tt.wantEmotion {
				t.Errorf("emotion: got %q, want %q", emotion, tt.wantEmotion)
			}
			if text != tt.wantText {
				t.Errorf("text: got %q, want %q", text, tt.wantText)
			}
		})
	}
}

func TestSpeedFor(t *testing.T) {
	tests := []struct {
		emotion string
		want    float64
	}{
		{"excited", 1.2},
		{"tense", 1.1},
		{"thoughtful", 0.9},
		{"celebratory", 1.15},
		{"disappointed", 0.85},
		{"urgent", 1.2},
		{"neutral", 1.0},
		{"bogus", 1.0},
	}
	for _, tt := range tests {
		if got := SpeedFor(tt.emotion); got != tt.want {
			t.Errorf("SpeedFor(%q) = %v, want %v", tt.emotion, got, tt.want)
		}
	}
}

func TestHistory(t *testing.T) {
	var h History

	t.Run("empty recent", func(t *testing.T) {
		if got := h.Recent(3); got != nil {
			t.Errorf("got %v", got)
		}
	})

	t.Run("bounded to five", func(t *testing.T) {
		for _, text := range []string{"one", "two", "three", "four", "five", "six", "seven"} {
			h.Append("Danny", text)
		}
		if h.Len() != 5 {
			t.Fatalf("len: got %d, want 5", h.Len())
		}
		recent := h.Recent(3)
		if len(recent) != 3 {
			t.Fatalf("recent: got %d lines", len(recent))
		}
		if recent[2] != "Danny: seven" {
			t.Errorf("newest line: got %q", recent[2])
		}
		if recent[0] != "Danny: five" {
			t.Errorf("oldest of recent: got %q", recent[0])
		}
	})
}

func testPersona() *persona.Persona {
	return &persona.Persona{
		Key:           persona.KeyDefault,
		Label:         "Danny",
		StyleFragment: "You are Danny.",
		VoiceID:       "voice-danny",
	}
}

func TestComposeHappyPath(t *testing.T) {
	llmMock := llm.NewMock("[EMOTION:excited] A rocket into the top corner!")
	ttsMock := tts.NewMock()
	c := NewComposer(llmMock, ttsMock, "soccer", slog.Default())

	turn, err := c.Compose(context.Background(), Input{
		Seed:      "Play is in progress.",
		SceneText: "Active play in progress, 8 players visible, ball at center midfield",
		Persona:   testPersona(),
		FrameTS:   12.5,
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if turn == nil {
		t.Fatal("expected a turn")
	}
	if turn.Text != "A rocket into the top corner!" {
		t.Errorf("text: got %q", turn.Text)
	}
	if turn.Emotion != "excited" {
		t.Errorf("emotion: got %q", turn.Emotion)
	}
	if len(turn.Audio) == 0 {
		t.Error("expected audio")
	}
	if turn.FrameTS != 12.5 {
		t.Errorf("frame ts: got %v", turn.FrameTS)
	}

	synth := ttsMock.LastCall("Synthesize")
	if synth.Text != "A rocket into the top corner!" {
		t.Errorf("synthesized text must be cleaned: got %q", synth.Text)
	}
	if synth.Speed != 1.2 {
		t.Errorf("speed: got %v, want 1.2", synth.Speed)
	}
	if synth.VoiceID != "voice-danny" {
		t.Errorf("voice: got %q", synth.VoiceID)
	}

	gen := llmMock.LastCall("Generate")
	if !strings.Contains(gen.Prompt, "center midfield") {
		t.Errorf("prompt missing scene text: %q", gen.Prompt)
	}
	if !strings.Contains(gen.System, "You are Danny.") {
		t.Errorf("system missing persona style: %q", gen.System)
	}

	if c.History().Len() != 1 {
		t.Errorf("history: got %d lines", c.History().Len())
	}
}

func TestComposeSkipNeverSynthesizes(t *testing.T) {
	ttsMock := tts.NewMock()
	c := NewComposer(llm.NewMock(SkipSentinel), ttsMock, "soccer", nil)

	turn, err := c.Compose(context.Background(), Input{Persona: testPersona()})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if turn != nil {
		t.Errorf("expected nil turn on skip, got %+v", turn)
	}
	if ttsMock.CallCount("Synthesize") != 0 {
		t.Error("synthesizer must not be called on skip")
	}
	if c.History().Len() != 0 {
		t.Error("skipped turns must not enter history")
	}
}

func TestComposeLLMErrorDropsTurn(t *testing.T) {
	ttsMock := tts.NewMock()
	c := NewComposer(llm.NewMockWithError(errors.New("boom")), ttsMock, "soccer", nil)

	turn, err := c.Compose(context.Background(), Input{Persona: testPersona()})
	if err == nil {
		t.Fatal("expected error")
	}
	if turn != nil {
		t.Errorf("expected nil turn, got %+v", turn)
	}
	if ttsMock.CallCount("Synthesize") != 0 {
		t.Error("synthesizer must not run after a generation failure")
	}
}

func TestComposeTTSErrorDropsTurn(t *testing.T) {
	c := NewComposer(
		llm.NewMock("[EMOTION:neutral] Quiet spell here."),
		tts.NewMockWithError(errors.New("boom")),
		"soccer", nil)

	turn, err := c.Compose(context.Background(), Input{Persona: testPersona()})
	if err == nil {
		t.Fatal("expected error")
	}
	if turn != nil {
		t.Errorf("expected nil turn, got %+v", turn)
	}
	if c.History().Len() != 0 {
		t.Error("failed turns must not enter history")
	}
}

func TestComposeAntiRepetitionClause(t *testing.T) {
	llmMock := llm.NewMock("[EMOTION:neutral] Another look at the midfield.")
	c := NewComposer(llmMock, tts.NewMock(), "soccer", nil)

	p := testPersona()
	c.History().Append(p.Label, "First line.")
	c.History().Append(p.Label, "Second line.")

	if _, err := c.Compose(context.Background(), Input{Persona: p}); err != nil {
		t.Fatalf("Compose: %v", err)
	}

	prompt := llmMock.LastCall("Generate").Prompt
	if !strings.Contains(prompt, "First line.") || !strings.Contains(prompt, "Second line.") {
		t.Errorf("prompt missing recent lines: %q", prompt)
	}
	if !strings.Contains(prompt, SkipSentinel) {
		t.Errorf("prompt missing skip instruction: %q", prompt)
	}
}

func TestComposeProfileInSystemPrompt(t *testing.T) {
	llmMock := llm.NewMock("[EMOTION:excited] Yamal is cooking!")
	c := NewComposer(llmMock, tts.NewMock(), "soccer", nil)

	_, err := c.Compose(context.Background(), Input{
		Persona: testPersona(),
		Profile: persona.PredefinedProfiles["casual_fan"],
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	system := llmMock.LastCall("Generate").System
	if !strings.Contains(system, "Barcelona") {
		t.Errorf("system prompt missing profile: %q", system)
	}
}

func TestSportInstructions(t *testing.T) {
	if !strings.Contains(SportInstructions("football"), "end zone") {
		t.Error("football instructions should use football terms")
	}
	if SportInstructions("cricket") != SportInstructions("soccer") {
		t.Error("unknown sport should fall back to soccer")
	}
	if !KnownSport("soccer") || KnownSport("cricket") {
		t.Error("KnownSport misreporting")
	}
}

// SetSport arrives from the control goroutine while Compose runs on the
// session goroutine.
func TestComposerConcurrentSportSwitch(t *testing.T) {
	c := NewComposer(llm.NewMock("[EMOTION:excited] Great play!"), tts.NewMock(), "soccer", slog.Default())
	speaker := &persona.Persona{Key: "danny", VoiceID: "voice-1"}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if i%2 == 0 {
				c.SetSport("football")
			} else {
				c.SetSport("soccer")
			}
		}
	}()

	for i := 0; i < 100; i++ {
		if _, err := c.Compose(context.Background(), Input{
			Seed:    "Describe the action.",
			Persona: speaker,
		}); err != nil {
			t.Fatalf("Compose: %v", err)
		}
	}
	wg.Wait()
}
