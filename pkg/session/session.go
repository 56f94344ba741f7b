package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PreritO/cartesia-hackathon/internal/store"
	"github.com/PreritO/cartesia-hackathon/pkg/commentary"
	"github.com/PreritO/cartesia-hackathon/pkg/detect"
	"github.com/PreritO/cartesia-hackathon/pkg/llm"
	"github.com/PreritO/cartesia-hackathon/pkg/persona"
	"github.com/PreritO/cartesia-hackathon/pkg/protocol"
	"github.com/PreritO/cartesia-hackathon/pkg/scene"
	"github.com/PreritO/cartesia-hackathon/pkg/tts"
	"github.com/PreritO/cartesia-hackathon/pkg/trigger"
)

// Emitter sends outbound messages to the client. *Conn satisfies it; the
// tests use a recording fake.
type Emitter interface {
	Send(v interface{}) bool
}

// Options configures a session.
type Options struct {
	SessionID string
	Sport     string

	// Mode selects event-gated or timer-gated commentary.
	Mode     trigger.Mode
	Cooldown time.Duration

	// FPS is the detection sampling rate, used to phrase durations.
	FPS int

	// SkipDetection sends frames straight to the composer, trading
	// grounded commentary for lower latency. Timer gating applies.
	SkipDetection bool

	Source   Source
	Detector detect.Detector
	Registry *persona.Registry
	LLM      llm.Provider
	TTS      tts.Provider
	Emitter  Emitter

	// Store optionally archives spoken turns. Nil disables archiving.
	Store *store.Store

	Logger *slog.Logger
}

// Session drives one commentary session. One sequential control flow per
// session: frame, detect, summarize, maybe compose, maybe synthesize,
// emit.
type Session struct {
	opts Options
	id   string

	pool       *Pool
	summarizer *scene.Summarizer
	trigger    *trigger.Trigger
	selector   *persona.Selector
	composer   *commentary.Composer
	logger     *slog.Logger

	mu      sync.Mutex
	profile *persona.Profile
	frameTS float64
	cancel  context.CancelFunc
}

// New creates a session from options.
func New(opts Options) *Session {
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.Sport == "" {
		opts.Sport = "soccer"
	}
	if opts.Mode == "" {
		opts.Mode = trigger.ModeEvent
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 5 * time.Second
	}
	if opts.FPS <= 0 {
		opts.FPS = 5
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	mode := opts.Mode
	if opts.SkipDetection || opts.Detector == nil {
		// Without detections there are no events to gate on.
		mode = trigger.ModeTimer
	}

	return &Session{
		opts:       opts,
		id:         opts.SessionID,
		pool:       NewPool(1),
		summarizer: scene.NewSummarizer(opts.Sport),
		trigger:    trigger.New(mode, opts.Cooldown, trigger.DefaultNoBallThreshold, opts.FPS),
		selector:   persona.NewSelector(opts.Registry),
		composer:   commentary.NewComposer(opts.LLM, opts.TTS, opts.Sport, opts.Logger),
		profile:    persona.DefaultProfile(),
		logger:     opts.Logger.With("component", "session", "session_id", opts.SessionID),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Run drives the frame loop until the source ends, the context is
// cancelled, or Stop is called. No error inside the loop is fatal; a
// failed turn is skipped and the next debounce tick tries again.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()
	defer s.opts.Source.Stop()

	if err := s.opts.Source.Start(ctx); err != nil {
		return err
	}

	s.status("Starting commentary...")

	for {
		frame, err := s.opts.Source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.status("Video finished.")
				s.logger.Info("source exhausted")
				return nil
			}
			if errors.Is(err, context.Canceled) {
				s.logger.Info("session cancelled")
				return nil
			}
			return err
		}

		s.processFrame(ctx, frame)

		select {
		case <-ctx.Done():
			s.logger.Info("session cancelled")
			return nil
		default:
		}
	}
}

// Stop interrupts the frame loop before the next detection call.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// processFrame runs one frame through detect, summarize, trigger, and
// compose.
func (s *Session) processFrame(ctx context.Context, frame *Frame) {
	var objects []detect.Object
	var summary scene.Summary

	if !s.opts.SkipDetection {
		if s.opts.Detector != nil {
			detected, err := s.pool.Detect(ctx, s.opts.Detector, frame.JPEG)
			if err != nil {
				s.logger.Warn("detection failed", "error", err)
			} else {
				objects = detected
			}
		}
		// A missing or failed detector degrades to an empty frame;
		// summarization still reports no players.
		summary = s.summarizer.Summarize(objects, frame.Width, frame.Height)
	}

	ev, speak := s.trigger.Decide(summary.BallPresent)
	if !speak {
		return
	}

	profile := s.Profile()
	speaker := s.selector.Next(summary.Label, profile)

	turn, err := s.composer.Compose(ctx, commentary.Input{
		Seed:      ev.Seed,
		SceneText: summary.Text,
		ImageJPEG: frame.JPEG,
		Persona:   speaker,
		Profile:   profile,
		FrameTS:   s.FrameTS(),
	})
	if err != nil {
		s.logger.Warn("commentary turn dropped", "error", err)
		return
	}
	if turn == nil {
		return
	}

	var annotated []byte
	if len(objects) > 0 {
		annotated = Annotate(frame.JPEG, objects)
	}

	s.opts.Emitter.Send(protocol.NewCommentary(
		turn.Text, turn.Emotion, speaker.Key, turn.Audio, annotated, turn.FrameTS))

	s.archive(ctx, turn)
}

// archive persists the spoken turn when a store is configured.
func (s *Session) archive(ctx context.Context, turn *commentary.Turn) {
	if s.opts.Store == nil {
		return
	}
	err := s.opts.Store.AppendTurn(ctx, store.TurnRecord{
		SessionID: s.id,
		Persona:   turn.Persona.Key,
		Emotion:   turn.Emotion,
		Text:      turn.Text,
	})
	if err != nil {
		s.logger.Warn("archive turn", "error", err)
	}
}

// HandleControl applies one inbound control message. Unknown or invalid
// messages are logged and ignored; the session continues.
func (s *Session) HandleControl(msg *protocol.Control) {
	switch msg.Type {
	case protocol.TypeStop:
		s.logger.Info("stop requested by client")
		s.Stop()

	case protocol.TypeSetProfile:
		var profile persona.Profile
		if err := json.Unmarshal(msg.Profile, &profile); err != nil {
			s.logger.Warn("ignoring malformed profile", "error", err)
			return
		}
		s.SetProfile(&profile)
		s.status("Profile updated for " + profile.Name)

	case protocol.TypeSetPersona:
		profile, ok := persona.PredefinedProfiles[msg.Persona]
		if !ok {
			s.logger.Warn("unknown persona preset", "persona", msg.Persona)
			return
		}
		s.SetProfile(profile)
		s.status("Persona: " + profile.Name)

	case protocol.TypeSetSport:
		if !commentary.KnownSport(msg.Sport) {
			s.logger.Warn("unknown sport", "sport", msg.Sport)
			return
		}
		s.SetSport(msg.Sport)
		s.status("Sport: " + msg.Sport)

	case protocol.TypeFrameTS:
		s.SetFrameTS(msg.TS)

	default:
		s.logger.Warn("ignoring unknown control message", "type", string(msg.Type))
	}
}

// SetProfile replaces the viewer profile.
func (s *Session) SetProfile(p *persona.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// Profile returns the current viewer profile.
func (s *Session) Profile() *persona.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetSport switches the instruction and summary vocabulary.
func (s *Session) SetSport(sport string) {
	s.summarizer.SetSport(sport)
	s.composer.SetSport(sport)
}

// SetFrameTS records the client's capture timestamp, echoed with the
// next commentary turn.
func (s *Session) SetFrameTS(ts float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameTS = ts
}

// FrameTS returns the most recent capture timestamp.
func (s *Session) FrameTS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameTS
}

// status sends a status notice to the client.
func (s *Session) status(message string) {
	s.opts.Emitter.Send(protocol.NewStatus(message))
}
