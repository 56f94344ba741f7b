package llm

import (
	"bytes"
	"context"
	"encoding/base64"
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
	providerOpenAI = "openai"
	openAIBaseURL  = "https://api.openai.com/v1"
)

// OpenAI implements Provider against any chat-completions-compatible API
// (OpenAI, Together, Groq, vLLM, Ollama).
type OpenAI struct {
	baseURL string
	config  *Config
	http    *http.Client
	logger  *slog.Logger
}

// NewOpenAI creates an OpenAI-compatible provider.
func NewOpenAI(opts ...Option) (*OpenAI, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	if cfg.Model == DefaultConfig().Model {
		cfg.Model = "gpt-4o-mini"
	}

	return &OpenAI{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		config:  cfg,
		http:    httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "llm.openai"),
	}, nil
}

// Generate produces commentary text through the chat completions API.
func (o *OpenAI) Generate(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = o.config.MaxTokens
	}

	var userContent interface{} = req.Prompt
	if len(req.ImageJPEG) > 0 {
		userContent = []map[string]interface{}{
			{"type": "text", "text": req.Prompt},
			{
				"type": "image_url",
				"image_url": map[string]string{
					"url": "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(req.ImageJPEG),
				},
			},
		}
	}

	messages := []map[string]interface{}{}
	if req.System != "" {
		messages = append(messages, map[string]interface{}{
			"role": "system", "content": req.System,
		})
	}
	messages = append(messages, map[string]interface{}{
		"role": "user", "content": userContent,
	})

	payload := map[string]interface{}{
		"model":      o.config.Model,
		"messages":   messages,
		"max_tokens": maxTokens,
	}
	if req.Temperature > 0 {
		payload["temperature"] = req.Temperature
	} else if o.config.Temperature > 0 {
		payload["temperature"] = o.config.Temperature
	}

	resp, err := o.doWithRetry(ctx, "/chat/completions", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, o.parseError(resp)
	}

	var result chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, WrapError(providerOpenAI, fmt.Errorf("decode response: %w", err))
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return nil, WrapError(providerOpenAI, ErrEmptyResponse)
	}

	return &Response{
		Text:      result.Choices[0].Message.Content,
		Model:     result.Model,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// Health checks API connectivity.
func (o *OpenAI) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", o.baseURL+"/models", nil)
	if err != nil {
		return WrapError(providerOpenAI, err)
	}
	req.Header.Set("Authorization", "Bearer "+o.config.APIKey)

	resp, err := o.http.Do(req)
	if err != nil {
		return WrapError(providerOpenAI, fmt.Errorf("health check: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return o.parseError(resp)
	}
	return nil
}

// Close releases resources.
func (o *OpenAI) Close() error {
	o.http.CloseIdleConnections()
	return nil
}

// doWithRetry posts the payload with retry on retryable statuses.
func (o *OpenAI) doWithRetry(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(providerOpenAI, fmt.Errorf("marshal request: %w", err))
	}

	var lastErr error
	for attempt := 0; attempt <= o.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.config.RetryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, WrapError(providerOpenAI, fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+o.config.APIKey)

		resp, err := o.http.Do(req)
		if err != nil {
			lastErr = WrapError(providerOpenAI, err)
			continue
		}

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: "retryable status", Provider: providerOpenAI}
			o.logger.Warn("retrying generation request",
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
func (o *OpenAI) parseError(resp *http.Response) error {
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
		Provider:   providerOpenAI,
	}
}

// chatCompletionResponse is the chat completions response shape.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
}

// Verify OpenAI implements Provider at compile time.
var _ Provider = (*OpenAI)(nil)
