// Package tts synthesizes commentary speech through the Cartesia API.
//
// Cartesia implements one-shot synthesis over HTTP; CartesiaWS streams
// chunks over a WebSocket for lower latency. Both return MP3 audio at
// 44100 Hz / 128 kbps, which the transport forwards to the browser as is.
package tts

import (
	"context"
	"time"
)

// Request is one synthesis call.
type Request struct {
	// Text is the cleaned commentary line (emotion tag already stripped).
	Text string

	// VoiceID selects the persona's voice. Empty uses the configured
	// default voice.
	VoiceID string

	// Speed is the speech-rate multiplier derived from the emotion tag.
	// 0 means normal speed.
	Speed float64
}

// AudioResult is the synthesized audio plus call metadata.
type AudioResult struct {
	// Audio is the full MP3 payload.
	Audio []byte

	// Container, SampleRate, and BitRate describe the fixed output
	// format.
	Container  string
	SampleRate int
	BitRate    int

	CharCount int
	LatencyMs int64
	Duration  time.Duration
}

// Provider is the interface for speech synthesis backends.
type Provider interface {
	// Synthesize converts text to speech.
	Synthesize(ctx context.Context, req *Request) (*AudioResult, error)

	// Health checks API connectivity.
	Health(ctx context.Context) error

	// Close releases resources.
	Close() error
}
