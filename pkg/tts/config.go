package tts

import (
	"log/slog"
	"time"
)

// Fixed output format. The frontend expects MP3 it can hand straight to
// an <audio> element.
const (
	outputContainer  = "mp3"
	outputSampleRate = 44100
	outputBitRate    = 128000
)

// Config holds provider configuration.
type Config struct {
	APIKey     string
	BaseURL    string
	WSBaseURL  string
	ModelID    string
	VoiceID    string
	Language   string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// Option is a functional option for configuring providers.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL overrides the HTTP API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithWSBaseURL overrides the WebSocket API base URL.
func WithWSBaseURL(url string) Option {
	return func(c *Config) { c.WSBaseURL = url }
}

// WithModelID sets the synthesis model.
func WithModelID(id string) Option {
	return func(c *Config) { c.ModelID = id }
}

// WithVoiceID sets the default voice.
func WithVoiceID(id string) Option {
	return func(c *Config) { c.VoiceID = id }
}

// WithLanguage sets the synthesis language.
func WithLanguage(lang string) Option {
	return func(c *Config) { c.Language = lang }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithRetry configures retry behavior.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Config) {
		c.MaxRetries = maxRetries
		c.RetryDelay = delay
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://api.cartesia.ai",
		WSBaseURL:  "wss://api.cartesia.ai",
		ModelID:    "sonic-3",
		Language:   "en",
		Timeout:    20 * time.Second,
		MaxRetries: 1,
		RetryDelay: 200 * time.Millisecond,
		Logger:     slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
