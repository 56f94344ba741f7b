package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PreritO/cartesia-hackathon/internal/httpc"
)

const (
	providerAnthropic   = "anthropic"
	anthropicBaseURL    = "https://api.anthropic.com/v1"
	anthropicAPIVersion = "2023-06-01"
)

// Anthropic implements Provider against the Anthropic messages API.
type Anthropic struct {
	baseURL string
	config  *Config
	http    *http.Client
	logger  *slog.Logger
}

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(opts ...Option) (*Anthropic, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}

	return &Anthropic{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		config:  cfg,
		http:    httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "llm.anthropic"),
	}, nil
}

// Generate produces commentary text through the messages API.
func (a *Anthropic) Generate(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = a.config.MaxTokens
	}

	content := []map[string]interface{}{}
	if len(req.ImageJPEG) > 0 {
		content = append(content, map[string]interface{}{
			"type": "image",
			"source": map[string]string{
				"type":       "base64",
				"media_type": "image/jpeg",
				"data":       base64.StdEncoding.EncodeToString(req.ImageJPEG),
			},
		})
	}
	content = append(content, map[string]interface{}{
		"type": "text",
		"text": req.Prompt,
	})

	payload := map[string]interface{}{
		"model":      a.config.Model,
		"max_tokens": maxTokens,
		"system":     req.System,
		"messages": []map[string]interface{}{{
			"role":    "user",
			"content": content,
		}},
	}
	if req.Temperature > 0 {
		payload["temperature"] = req.Temperature
	} else if a.config.Temperature > 0 {
		payload["temperature"] = a.config.Temperature
	}

	resp, err := a.doWithRetry(ctx, "/messages", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, a.parseError(resp)
	}

	var result anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, WrapError(providerAnthropic, fmt.Errorf("decode response: %w", err))
	}

	text := ""
	for _, block := range result.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, WrapError(providerAnthropic, ErrEmptyResponse)
	}

	a.logger.Debug("generation complete",
		"model", result.Model,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return &Response{
		Text:      text,
		Model:     result.Model,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// Health checks API connectivity with a minimal request.
func (a *Anthropic) Health(ctx context.Context) error {
	_, err := a.Generate(ctx, &Request{Prompt: "ping", MaxTokens: 1})
	if err != nil {
		// A rate limit still proves connectivity and auth.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsRateLimited() {
			return nil
		}
		return err
	}
	return nil
}

// Close releases resources.
func (a *Anthropic) Close() error {
	a.http.CloseIdleConnections()
	return nil
}

// doWithRetry posts the payload with retry on retryable statuses.
func (a *Anthropic) doWithRetry(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(providerAnthropic, fmt.Errorf("marshal request: %w", err))
	}

	var lastErr error
	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.config.RetryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, WrapError(providerAnthropic, fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", a.config.APIKey)
		req.Header.Set("anthropic-version", anthropicAPIVersion)

		resp, err := a.http.Do(req)
		if err != nil {
			lastErr = WrapError(providerAnthropic, err)
			continue
		}

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: "retryable status", Provider: providerAnthropic}
			a.logger.Warn("retrying generation request",
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
func (a *Anthropic) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	message := string(body)
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Provider:   providerAnthropic,
	}
}

// anthropicResponse is the messages API response shape.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
}

// Verify Anthropic implements Provider at compile time.
var _ Provider = (*Anthropic)(nil)
