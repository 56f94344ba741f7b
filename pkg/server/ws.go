package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/PreritO/cartesia-hackathon/pkg/session"
)

// registerWebSocket wires the live and file session endpoints. The /ws/live
// route must be registered before /ws/:session_id so "live" never matches
// as a session ID.
func (s *Server) registerWebSocket(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/live", websocket.New(s.handleLive))
	app.Get("/ws/:session_id", websocket.New(s.handleSession))
}

// handleLive runs a session fed by JPEG frames the client pushes over the
// socket.
func (s *Server) handleLive(ws *websocket.Conn) {
	conn := session.NewConn(ws, s.opts.Logger)
	source := session.NewLiveSource()

	sess := session.New(session.Options{
		Sport:         s.opts.Sport,
		Mode:          s.opts.Mode,
		Cooldown:      s.opts.Cooldown,
		FPS:           s.opts.FPS,
		SkipDetection: s.opts.SkipDetection,
		Source:        source,
		Detector:      s.detector(conn),
		Registry:      s.opts.Registry,
		LLM:           s.opts.LLM,
		TTS:           s.opts.TTS,
		Emitter:       conn,
		Store:         s.opts.Store,
		Logger:        s.opts.Logger,
	})

	s.runSession(sess, conn, source.Push)
}

// handleSession runs a session against a video prepared by /api/start.
func (s *Server) handleSession(ws *websocket.Conn) {
	sessionID := ws.Params("session_id")

	s.mu.Lock()
	prep, ok := s.pending[sessionID]
	s.mu.Unlock()
	if !ok {
		s.logger.Warn("unknown session", "session_id", sessionID)
		ws.Close()
		return
	}

	conn := session.NewConn(ws, s.opts.Logger)

	sess := session.New(session.Options{
		SessionID:     sessionID,
		Sport:         prep.sport,
		Mode:          s.opts.Mode,
		Cooldown:      s.opts.Cooldown,
		FPS:           s.opts.FPS,
		SkipDetection: s.opts.SkipDetection,
		Source:        session.NewFileSource(prep.videoPath, s.opts.FPS),
		Detector:      s.detector(conn),
		Registry:      s.opts.Registry,
		LLM:           s.opts.LLM,
		TTS:           s.opts.TTS,
		Emitter:       conn,
		Store:         s.opts.Store,
		Logger:        s.opts.Logger,
	})

	s.runSession(sess, conn, nil)
}

// runSession registers the session, drives its frame loop, and blocks on
// the connection until the client leaves. A reconnect with the same ID
// replaces the previous session.
func (s *Server) runSession(sess *session.Session, conn *session.Conn, onFrame session.FrameHandler) {
	s.mu.Lock()
	if prev, ok := s.active[sess.ID()]; ok {
		prev.Stop()
	}
	s.active[sess.ID()] = sess
	s.mu.Unlock()

	defer func() {
		sess.Stop()
		s.mu.Lock()
		if s.active[sess.ID()] == sess {
			delete(s.active, sess.ID())
		}
		s.mu.Unlock()
		s.logger.Info("session closed", "session_id", sess.ID())
	}()

	go func() {
		if err := sess.Run(context.Background()); err != nil {
			s.logger.Error("session run", "session_id", sess.ID(), "error", err)
		}
	}()

	// Blocks until the client disconnects.
	conn.Run(sess.HandleControl, onFrame)
}
