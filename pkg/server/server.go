// Package server exposes the commentary pipeline over HTTP and
// WebSocket. Clients start a session against a downloaded video or push
// live frames over the socket; commentary turns stream back as JSON.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/PreritO/cartesia-hackathon/internal/store"
	"github.com/PreritO/cartesia-hackathon/pkg/detect"
	"github.com/PreritO/cartesia-hackathon/pkg/llm"
	"github.com/PreritO/cartesia-hackathon/pkg/persona"
	"github.com/PreritO/cartesia-hackathon/pkg/protocol"
	"github.com/PreritO/cartesia-hackathon/pkg/session"
	"github.com/PreritO/cartesia-hackathon/pkg/trigger"
	"github.com/PreritO/cartesia-hackathon/pkg/tts"
	"github.com/PreritO/cartesia-hackathon/pkg/video"
)

const version = "1.0.0"

// Fetcher resolves a video URL to a playable file. *video.Manager
// satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*video.Info, error)
}

// Options configures the server.
type Options struct {
	Port      int
	VideosDir string

	Sport    string
	Mode     trigger.Mode
	Cooldown time.Duration
	FPS      int

	// SkipDetection runs sessions without object detection.
	SkipDetection bool

	Registry  *persona.Registry
	LLM       llm.Provider
	TTS       tts.Provider
	Detectors *detect.Cache
	Videos    Fetcher

	// Store is optional; it enables transcripts and the video cache.
	Store *store.Store

	Debug  bool
	Logger *slog.Logger
}

// pendingSession is a started-but-not-connected session awaiting its
// WebSocket client.
type pendingSession struct {
	videoPath string
	sport     string
}

// Server is the commentator HTTP/WebSocket server.
type Server struct {
	opts   Options
	app    *fiber.App
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingSession
	active  map[string]*session.Session
}

// New builds the server and registers its routes.
func New(opts Options) *Server {
	if opts.Port <= 0 {
		opts.Port = 8000
	}
	if opts.Sport == "" {
		opts.Sport = "soccer"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		opts:    opts,
		logger:  opts.Logger.With("component", "server"),
		pending: make(map[string]*pendingSession),
		active:  make(map[string]*session.Session),
	}

	app := fiber.New(fiber.Config{
		AppName:               "commentator",
		DisableStartupMessage: true,
		BodyLimit:             4 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if opts.Debug {
		app.Use(logger.New())
	}

	s.registerRoutes(app)
	s.app = app
	return s
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) registerRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/personas", s.handlePersonas)
	api.Post("/start", s.handleStart)
	api.Post("/profile/chat", s.handleProfileChat)
	api.Post("/profile/extract", s.handleProfileExtract)
	api.Get("/sessions/:id/transcript", s.handleTranscript)

	if s.opts.VideosDir != "" {
		app.Static("/videos", s.opts.VideosDir)
	}

	s.registerWebSocket(app)
}

// Listen serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Listen(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", s.opts.Port)
		s.logger.Info("listening", "addr", addr)
		errc <- s.app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.stopAllSessions()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(shutdownCtx)
}

func (s *Server) stopAllSessions() {
	s.mu.Lock()
	sessions := make([]*session.Session, 0, len(s.active))
	for _, sess := range s.active {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Stop()
	}
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	s.mu.Lock()
	active := len(s.active)
	s.mu.Unlock()

	return c.JSON(fiber.Map{
		"status":   "ok",
		"version":  version,
		"sessions": active,
	})
}

func (s *Server) handlePersonas(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"personas": s.opts.Registry.List(),
		"profiles": persona.PredefinedProfiles,
	})
}

type startRequest struct {
	URL   string `json:"url"`
	Sport string `json:"sport"`
}

// handleStart downloads the requested video and reserves a session slot.
// The client then connects to /ws/:session_id to begin commentary.
func (s *Server) handleStart(c *fiber.Ctx) error {
	var req startRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.URL == "" {
		return fiber.NewError(fiber.StatusBadRequest, "url is required")
	}

	sport := req.Sport
	if sport == "" {
		sport = s.opts.Sport
	}

	info, err := s.opts.Videos.Fetch(c.Context(), req.URL)
	if err != nil {
		s.logger.Warn("video fetch failed", "url", req.URL, "error", err)
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	sessionID := info.ID
	s.mu.Lock()
	s.pending[sessionID] = &pendingSession{videoPath: info.Path, sport: sport}
	s.mu.Unlock()

	s.logger.Info("session prepared", "session_id", sessionID, "title", info.Title)
	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"video":      info,
		"video_url":  "/videos/" + filepath.Base(info.Path),
	})
}

func (s *Server) handleTranscript(c *fiber.Ctx) error {
	if s.opts.Store == nil {
		return fiber.NewError(fiber.StatusNotFound, "transcripts disabled")
	}

	turns, err := s.opts.Store.Transcript(c.Context(), c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	type transcriptTurn struct {
		Persona   string    `json:"persona"`
		Emotion   string    `json:"emotion"`
		Text      string    `json:"text"`
		CreatedAt time.Time `json:"created_at"`
	}
	out := make([]transcriptTurn, 0, len(turns))
	for _, turn := range turns {
		out = append(out, transcriptTurn{
			Persona:   turn.Persona,
			Emotion:   turn.Emotion,
			Text:      turn.Text,
			CreatedAt: turn.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"turns": out})
}

// detector resolves the shared detector, degrading to nil (no detection)
// when the backend cannot be constructed. The loading status goes out
// only when this Get is the one that constructs the model.
func (s *Server) detector(conn *session.Conn) detect.Detector {
	if s.opts.SkipDetection || s.opts.Detectors == nil {
		return nil
	}
	if !s.opts.Detectors.Loaded() {
		conn.Send(protocol.NewStatus("Loading detection model..."))
	}
	det, err := s.opts.Detectors.Get()
	if err != nil {
		s.logger.Warn("detector unavailable, running without detection", "error", err)
		return nil
	}
	return det
}
