// Package llm generates commentary text through a hosted language model.
//
// Two providers implement the Provider interface: Anthropic (the messages
// API) and OpenAI (any chat-completions-compatible endpoint). Both accept
// an optional JPEG frame so the model can ground its commentary in what
// the camera actually shows.
package llm

import "context"

// Request is one generation call.
type Request struct {
	// System is the system prompt: sport instructions, persona style,
	// and viewer personalization.
	System string

	// Prompt is the user message: scene summary, topic prompt, and
	// anti-repetition clause.
	Prompt string

	// ImageJPEG optionally attaches the current frame.
	ImageJPEG []byte

	// MaxTokens caps the response length. 0 uses the provider default.
	MaxTokens int

	// Temperature > 0 overrides the provider default.
	Temperature float64
}

// Response is the generated text plus call metadata.
type Response struct {
	Text      string
	Model     string
	LatencyMs int64
}

// Provider is the interface for language model backends.
type Provider interface {
	// Generate produces commentary text for the request.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Health checks API connectivity.
	Health(ctx context.Context) error

	// Close releases resources.
	Close() error
}
