package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PreritO/cartesia-hackathon/internal/httpc"
)

const (
	providerCartesia   = "cartesia"
	cartesiaAPIVersion = "2025-04-16"
)

// Cartesia implements Provider with one-shot HTTP synthesis against the
// Cartesia bytes endpoint.
type Cartesia struct {
	baseURL string
	config  *Config
	http    *http.Client
	logger  *slog.Logger
}

// NewCartesia creates a Cartesia HTTP provider.
func NewCartesia(opts ...Option) (*Cartesia, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	return &Cartesia{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		config:  cfg,
		http:    httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "tts.cartesia"),
	}, nil
}

// Synthesize converts text to MP3 speech.
func (c *Cartesia) Synthesize(ctx context.Context, req *Request) (*AudioResult, error) {
	start := time.Now()

	if req.Text == "" {
		return nil, ErrEmptyText
	}
	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = c.config.VoiceID
	}
	if voiceID == "" {
		return nil, ErrNoVoice
	}

	payload := map[string]interface{}{
		"model_id":   c.config.ModelID,
		"transcript": req.Text,
		"voice": map[string]string{
			"mode": "id",
			"id":   voiceID,
		},
		"output_format": map[string]interface{}{
			"container":   outputContainer,
			"sample_rate": outputSampleRate,
			"bit_rate":    outputBitRate,
		},
		"language": c.config.Language,
	}
	if req.Speed > 0 && req.Speed != 1.0 {
		payload["generation_config"] = map[string]interface{}{"speed": req.Speed}
	}

	resp, err := c.doWithRetry(ctx, "/tts/bytes", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(providerCartesia, fmt.Errorf("read audio: %w", err))
	}

	latency := time.Since(start)
	c.logger.Debug("synthesis complete",
		"chars", len(req.Text),
		"bytes", len(audio),
		"latency_ms", latency.Milliseconds(),
	)

	return &AudioResult{
		Audio:      audio,
		Container:  outputContainer,
		SampleRate: outputSampleRate,
		BitRate:    outputBitRate,
		CharCount:  len(req.Text),
		LatencyMs:  latency.Milliseconds(),
		Duration:   estimateDuration(len(audio)),
	}, nil
}

// Health checks API connectivity.
func (c *Cartesia) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/voices", nil)
	if err != nil {
		return WrapError(providerCartesia, err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return WrapError(providerCartesia, fmt.Errorf("health check: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}
	return nil
}

// Close releases resources.
func (c *Cartesia) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Cartesia) setHeaders(req *http.Request) {
	req.Header.Set("X-API-Key", c.config.APIKey)
	req.Header.Set("Cartesia-Version", cartesiaAPIVersion)
	req.Header.Set("Content-Type", "application/json")
}

// doWithRetry posts the payload with retry on retryable statuses.
func (c *Cartesia) doWithRetry(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(providerCartesia, fmt.Errorf("marshal request: %w", err))
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, WrapError(providerCartesia, fmt.Errorf("create request: %w", err))
		}
		c.setHeaders(req)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = WrapError(providerCartesia, err)
			continue
		}

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: "retryable status", Provider: providerCartesia}
			c.logger.Warn("retrying synthesis request",
				"attempt", attempt+1,
				"status", resp.StatusCode,
			)
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

// parseError reads and parses an error response.
func (c *Cartesia) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error string `json:"error"`
	}

	message := string(body)
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		message = errResp.Error
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Provider:   providerCartesia,
	}
}

// estimateDuration approximates playback time from the MP3 size at the
// fixed bit rate.
func estimateDuration(audioBytes int) time.Duration {
	bits := float64(audioBytes) * 8
	seconds := bits / float64(outputBitRate)
	return time.Duration(seconds * float64(time.Second))
}

// Verify Cartesia implements Provider at compile time.
var _ Provider = (*Cartesia)(nil)
