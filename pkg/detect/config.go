package detect

import (
	"log/slog"
	"time"
)

// Config holds detector configuration.
type Config struct {
	// Hosted inference
	APIKey  string
	BaseURL string
	ModelID string

	// Local inference
	ModelPath  string
	InputWidth int // square model input; 640 for most detection models

	// Shared
	ConfidenceThresh float64
	Timeout          time.Duration
	MaxRetries       int
	RetryDelay       time.Duration
	Logger           *slog.Logger
}

// Option is a functional option for configuring detectors.
type Option func(*Config)

// WithAPIKey sets the hosted-inference API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL overrides the hosted-inference base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithModelID sets the hosted model identifier, e.g. "football-detection".
func WithModelID(id string) Option {
	return func(c *Config) { c.ModelID = id }
}

// WithModelPath sets the local ONNX model path.
func WithModelPath(path string) Option {
	return func(c *Config) { c.ModelPath = path }
}

// WithConfidence sets the minimum confidence for a detection to count.
func WithConfidence(thresh float64) Option {
	return func(c *Config) { c.ConfidenceThresh = thresh }
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
		BaseURL:          "https://detect.roboflow.com",
		ModelID:          "football-detection",
		InputWidth:       640,
		ConfidenceThresh: 0.5,
		Timeout:          5 * time.Second,
		MaxRetries:       2,
		RetryDelay:       100 * time.Millisecond,
		Logger:           slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
