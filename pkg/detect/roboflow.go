package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/PreritO/cartesia-hackathon/internal/httpc"
)

const backendRoboflow = "roboflow"

// Roboflow implements Detector against the Roboflow hosted inference API.
type Roboflow struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

// NewRoboflow creates a hosted-inference detector.
func NewRoboflow(opts ...Option) (*Roboflow, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	return &Roboflow{
		config: cfg,
		client: httpc.NewClient(cfg.Timeout),
		logger: cfg.Logger.With("component", "detect.roboflow"),
	}, nil
}

// Detect sends the JPEG frame to the hosted model and parses predictions.
func (r *Roboflow) Detect(ctx context.Context, jpeg []byte) ([]Object, error) {
	url := fmt.Sprintf("%s/%s?api_key=%s&confidence=%d",
		r.config.BaseURL, r.config.ModelID, r.config.APIKey,
		int(r.config.ConfidenceThresh*100))

	body, contentType, err := encodeFrameForm(jpeg)
	if err != nil {
		return nil, WrapError(backendRoboflow, fmt.Errorf("encode form: %w", err))
	}

	resp, err := r.doWithRetry(ctx, url, contentType, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, r.parseError(resp)
	}

	var result roboflowResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, WrapError(backendRoboflow, fmt.Errorf("decode response: %w", err))
	}

	objects := r.parsePredictions(result)

	r.logger.Debug("detection complete",
		"objects", len(objects),
		"model", r.config.ModelID,
	)

	return objects, nil
}

// Close releases resources.
func (r *Roboflow) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

// encodeFrameForm builds the multipart body the hosted API expects.
func encodeFrameForm(jpeg []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(jpeg); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// doWithRetry performs the request with retry logic.
func (r *Roboflow) doWithRetry(ctx context.Context, url, contentType string, body []byte) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.config.RetryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
		if err != nil {
			return nil, WrapError(backendRoboflow, fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := r.client.Do(req)
		if err != nil {
			lastErr = WrapError(backendRoboflow, err)
			continue
		}

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: "retryable status", Backend: backendRoboflow}
			r.logger.Warn("retrying inference request",
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
func (r *Roboflow) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Message string `json:"message"`
	}

	message := string(body)
	if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
		message = errResp.Message
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Backend:    backendRoboflow,
	}
}

// parsePredictions converts the API response to Object boxes. The hosted
// API reports center x/y plus width/height in pixels.
func (r *Roboflow) parsePredictions(result roboflowResponse) []Object {
	var objects []Object
	for _, p := range result.Predictions {
		if p.Confidence < r.config.ConfidenceThresh {
			continue
		}
		halfW := p.Width / 2
		halfH := p.Height / 2
		objects = append(objects, Object{
			Label:      strings.ToLower(p.Class),
			Confidence: p.Confidence,
			X1:         int(p.X - halfW),
			Y1:         int(p.Y - halfH),
			X2:         int(p.X + halfW),
			Y2:         int(p.Y + halfH),
		})
	}
	return objects
}

// roboflowResponse is the hosted inference API response shape.
type roboflowResponse struct {
	Predictions []struct {
		Class      string  `json:"class"`
		Confidence float64 `json:"confidence"`
		X          float64 `json:"x"`
		Y          float64 `json:"y"`
		Width      float64 `json:"width"`
		Height     float64 `json:"height"`
	} `json:"predictions"`
}

// Verify Roboflow implements Detector at compile time.
var _ Detector = (*Roboflow)(nil)
