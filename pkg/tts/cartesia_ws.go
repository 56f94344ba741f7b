package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const wsHandshakeTimeout = 10 * time.Second

// CartesiaWS implements Provider over the Cartesia streaming WebSocket.
// The connection is dialed lazily on first use and kept open across
// requests; one in-flight synthesis at a time.
type CartesiaWS struct {
	config *Config
	logger *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewCartesiaWS creates a streaming Cartesia provider.
func NewCartesiaWS(opts ...Option) (*CartesiaWS, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	return &CartesiaWS{
		config: cfg,
		logger: cfg.Logger.With("component", "tts.cartesia_ws"),
	}, nil
}

// Synthesize streams the synthesis and returns the assembled audio.
func (c *CartesiaWS) Synthesize(ctx context.Context, req *Request) (*AudioResult, error) {
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

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.ensureConn(ctx)
	if err != nil {
		return nil, err
	}

	contextID := uuid.NewString()
	payload := map[string]interface{}{
		"context_id": contextID,
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

	if err := conn.WriteJSON(payload); err != nil {
		c.dropConn()
		return nil, WrapError(providerCartesia, fmt.Errorf("send request: %w", err))
	}

	var audio []byte
	for {
		if deadline, ok := ctx.Deadline(); ok {
			conn.SetReadDeadline(deadline)
		} else {
			conn.SetReadDeadline(time.Now().Add(c.config.Timeout))
		}

		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			c.dropConn()
			return nil, WrapError(providerCartesia, fmt.Errorf("read chunk: %w", err))
		}
		if msg.ContextID != "" && msg.ContextID != contextID {
			// Stale chunk from an abandoned request.
			continue
		}

		switch msg.Type {
		case "chunk":
			chunk, err := base64.StdEncoding.DecodeString(msg.Data)
			if err != nil {
				c.dropConn()
				return nil, WrapError(providerCartesia, fmt.Errorf("decode chunk: %w", err))
			}
			audio = append(audio, chunk...)
		case "done":
			latency := time.Since(start)
			c.logger.Debug("streaming synthesis complete",
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
		case "error":
			c.dropConn()
			return nil, WrapError(providerCartesia, fmt.Errorf("server error: %s", msg.Error))
		}
	}
}

// Health dials the WebSocket to verify connectivity.
func (c *CartesiaWS) Health(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.ensureConn(ctx)
	return err
}

// Close terminates the connection.
func (c *CartesiaWS) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// ensureConn dials the WebSocket if not already connected. Caller holds
// the mutex.
func (c *CartesiaWS) ensureConn(ctx context.Context) (*websocket.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}

	url := fmt.Sprintf("%s/tts/websocket?api_key=%s&cartesia_version=%s",
		strings.TrimSuffix(c.config.WSBaseURL, "/"), c.config.APIKey, cartesiaAPIVersion)

	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, url, http.Header{})
	if err != nil {
		if resp != nil {
			return nil, WrapError(providerCartesia,
				fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err))
		}
		return nil, WrapError(providerCartesia, fmt.Errorf("websocket dial failed: %w", err))
	}

	c.logger.Info("websocket connected", "model", c.config.ModelID)
	c.conn = conn
	return conn, nil
}

// dropConn discards a broken connection so the next call redials. Caller
// holds the mutex.
func (c *CartesiaWS) dropConn() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// wsMessage is the streaming response shape.
type wsMessage struct {
	Type      string `json:"type"`
	ContextID string `json:"context_id"`
	Data      string `json:"data"`
	Error     string `json:"error"`
	Done      bool   `json:"done"`
}

// Verify CartesiaWS implements Provider at compile time.
var _ Provider = (*CartesiaWS)(nil)
