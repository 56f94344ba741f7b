package server

import (
	"encoding/base64"

	"github.com/gofiber/fiber/v2"

	"github.com/PreritO/cartesia-hackathon/pkg/commentary"
	"github.com/PreritO/cartesia-hackathon/pkg/persona"
)

type profileChatRequest struct {
	Messages []commentary.ChatMessage `json:"messages"`
}

// handleProfileChat drives the pre-game onboarding conversation with the
// default commentator to build a viewer profile.
func (s *Server) handleProfileChat(c *fiber.Ctx) error {
	var req profileChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var voiceID string
	if p, err := s.opts.Registry.Get(persona.KeyDefault); err == nil {
		voiceID = p.VoiceID
	}

	result, err := commentary.ProfileChat(c.Context(), s.opts.LLM, s.opts.TTS, voiceID, req.Messages)
	if err != nil {
		s.logger.Warn("profile chat failed", "error", err)
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	var audio string
	if len(result.Audio) > 0 {
		audio = base64.StdEncoding.EncodeToString(result.Audio)
	}
	return c.JSON(fiber.Map{
		"text":    result.Text,
		"audio":   audio,
		"done":    result.Done,
		"profile": result.Profile,
	})
}

type profileExtractRequest struct {
	Transcript string `json:"transcript"`
}

// handleProfileExtract derives a structured profile from a free-form
// conversation transcript.
func (s *Server) handleProfileExtract(c *fiber.Ctx) error {
	var req profileExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Transcript == "" {
		return fiber.NewError(fiber.StatusBadRequest, "transcript is required")
	}

	profile, err := commentary.ExtractProfile(c.Context(), s.opts.LLM, req.Transcript)
	if err != nil {
		s.logger.Warn("profile extraction failed", "error", err)
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(fiber.Map{"profile": profile})
}
