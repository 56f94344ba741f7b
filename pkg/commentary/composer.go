package commentary

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/PreritO/cartesia-hackathon/pkg/llm"
	"github.com/PreritO/cartesia-hackathon/pkg/persona"
	"github.com/PreritO/cartesia-hackathon/pkg/tts"
)

// recentLines is how many prior lines feed the anti-repetition clause.
const recentLines = 3

// Turn is one finished commentary turn, ready for the transport.
type Turn struct {
	Text    string
	Emotion string
	Persona *persona.Persona
	Audio   []byte
	FrameTS float64
}

// Input carries everything the composer needs for one turn.
type Input struct {
	// Seed is the trigger event's prompt seed.
	Seed string

	// SceneText is the detection-derived scene summary. Empty in
	// skip-detection mode.
	SceneText string

	// ImageJPEG optionally attaches the current frame for the model.
	ImageJPEG []byte

	// Persona is the speaker for this turn.
	Persona *persona.Persona

	// Profile personalizes the system prompt. May be nil.
	Profile *persona.Profile

	// FrameTS echoes the client's capture timestamp, 0 if unknown.
	FrameTS float64
}

// Composer builds the prompt, calls the model, parses the response, and
// synthesizes speech. Per-session; owns the rolling history.
type Composer struct {
	llm     llm.Provider
	tts     tts.Provider
	history History
	rng     *rand.Rand
	logger  *slog.Logger

	// sport is switched from the control goroutine while Compose runs on
	// the session goroutine.
	mu    sync.RWMutex
	sport string
}

// NewComposer creates a composer for one session.
func NewComposer(llmProvider llm.Provider, ttsProvider tts.Provider, sport string, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		llm:    llmProvider,
		tts:    ttsProvider,
		sport:  sport,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger.With("component", "commentary.composer"),
	}
}

// SetSport switches the active instruction set mid-session.
func (c *Composer) SetSport(sport string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sport = sport
}

// Sport returns the active sport.
func (c *Composer) Sport() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sport
}

// History exposes the rolling history, mainly for tests.
func (c *Composer) History() *History {
	return &c.history
}

// Compose generates one commentary turn. Returns (nil, nil) when the
// model skips; the session treats any error as "no commentary this turn".
func (c *Composer) Compose(ctx context.Context, in Input) (*Turn, error) {
	system := c.buildSystemPrompt(in)
	prompt := c.buildUserPrompt(in)

	resp, err := c.llm.Generate(ctx, &llm.Request{
		System:    system,
		Prompt:    prompt,
		ImageJPEG: in.ImageJPEG,
	})
	if err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(resp.Text)
	if raw == "" || raw == SkipSentinel {
		c.logger.Debug("model skipped the turn")
		return nil, nil
	}

	emotion, text := ParseEmotion(raw)
	if text == "" {
		return nil, nil
	}

	result, err := c.tts.Synthesize(ctx, &tts.Request{
		Text:    text,
		VoiceID: in.Persona.VoiceID,
		Speed:   SpeedFor(emotion),
	})
	if err != nil {
		return nil, err
	}

	c.history.Append(in.Persona.Label, text)

	c.logger.Info("commentary composed",
		"persona", in.Persona.Key,
		"emotion", emotion,
		"chars", len(text),
	)

	return &Turn{
		Text:    text,
		Emotion: emotion,
		Persona: in.Persona,
		Audio:   result.Audio,
		FrameTS: in.FrameTS,
	}, nil
}

// buildSystemPrompt assembles sport instructions, persona style, and the
// viewer personalization block.
func (c *Composer) buildSystemPrompt(in Input) string {
	var b strings.Builder
	b.WriteString(SportInstructions(c.Sport()))
	b.WriteString("\n\n")
	b.WriteString(in.Persona.StyleFragment)

	if in.Profile != nil {
		b.WriteString("\n")
		b.WriteString(in.Profile.PromptBlock())
	}

	return b.String()
}

// buildUserPrompt assembles scene text, the trigger seed, a topic prompt,
// and the anti-repetition clause.
func (c *Composer) buildUserPrompt(in Input) string {
	var parts []string

	if in.SceneText != "" {
		parts = append(parts, "What the camera shows: "+in.SceneText+".")
	}
	if in.Seed != "" {
		parts = append(parts, in.Seed)
	}
	parts = append(parts, topicPrompt(c.rng, in.Persona.Key))

	if recent := c.history.Recent(recentLines); len(recent) > 0 {
		parts = append(parts, antiRepetitionClause(recent))
	}

	return strings.Join(parts, "\n\n")
}
