// Package protocol defines the WebSocket message types exchanged with the
// frontend. Outbound messages are flat JSON objects the player consumes
// directly; inbound control messages share one envelope keyed by type.
package protocol

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// MessageType identifies a WebSocket message.
type MessageType string

const (
	// Server → client messages
	TypeCommentary MessageType = "commentary" // one commentary turn
	TypeStatus     MessageType = "status"     // free-text progress notice

	// Client → server control messages
	TypeStop       MessageType = "stop"        // end the session
	TypeSetProfile MessageType = "set_profile" // replace the viewer profile
	TypeSetPersona MessageType = "set_persona" // select a predefined profile
	TypeSetSport   MessageType = "set_sport"   // switch the instruction set
	TypeFrameTS    MessageType = "frame_ts"    // record a capture timestamp
)

// Commentary is one commentary turn on the wire. Audio and AnnotatedFrame
// are base64; either may be absent.
type Commentary struct {
	Type           MessageType `json:"type"`
	Text           string      `json:"text"`
	Emotion        string      `json:"emotion"`
	Persona        string      `json:"persona,omitempty"`
	Audio          string      `json:"audio,omitempty"`
	AnnotatedFrame string      `json:"annotated_frame,omitempty"`
	FrameTS        float64     `json:"frame_ts,omitempty"`
}

// NewCommentary builds a commentary message, base64-encoding the audio
// and annotated frame.
func NewCommentary(text, emotion, personaKey string, audio, annotatedJPEG []byte, frameTS float64) *Commentary {
	msg := &Commentary{
		Type:    TypeCommentary,
		Text:    text,
		Emotion: emotion,
		Persona: personaKey,
		FrameTS: frameTS,
	}
	if len(audio) > 0 {
		msg.Audio = base64.StdEncoding.EncodeToString(audio)
	}
	if len(annotatedJPEG) > 0 {
		msg.AnnotatedFrame = base64.StdEncoding.EncodeToString(annotatedJPEG)
	}
	return msg
}

// Status is a free-text progress notice, e.g. model loading.
type Status struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// NewStatus builds a status message.
func NewStatus(message string) *Status {
	return &Status{Type: TypeStatus, Message: message}
}

// Control is the inbound control envelope. Fields beyond Type are
// populated depending on the message type.
type Control struct {
	Type    MessageType     `json:"type"`
	Profile json.RawMessage `json:"profile,omitempty"`
	Persona string          `json:"persona,omitempty"`
	Sport   string          `json:"sport,omitempty"`
	TS      float64         `json:"ts,omitempty"`
}

// ParseControl parses an inbound control message.
func ParseControl(data []byte) (*Control, error) {
	var msg Control
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("parse control message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("control message missing type")
	}
	return &msg, nil
}
