package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestCartesiaRequiresAPIKey(t *testing.T) {
	if _, err := NewCartesia(); err != ErrNoAPIKey {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
	if _, err := NewCartesiaWS(); err != ErrNoAPIKey {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestCartesiaSynthesize(t *testing.T) {
	mp3 := []byte("ID3-fake-mp3-payload")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tts/bytes" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Error("missing X-API-Key header")
		}
		if r.Header.Get("Cartesia-Version") == "" {
			t.Error("missing Cartesia-Version header")
		}

		var payload struct {
			ModelID    string `json:"model_id"`
			Transcript string `json:"transcript"`
			Voice      struct {
				Mode string `json:"mode"`
				ID   string `json:"id"`
			} `json:"voice"`
			OutputFormat struct {
				Container  string `json:"container"`
				SampleRate int    `json:"sample_rate"`
				BitRate    int    `json:"bit_rate"`
			} `json:"output_format"`
			GenerationConfig struct {
				Speed float64 `json:"speed"`
			} `json:"generation_config"`
		}
		json.NewDecoder(r.Body).Decode(&payload)

		if payload.ModelID != "sonic-3" {
			t.Errorf("model: got %q", payload.ModelID)
		}
		if payload.Voice.Mode != "id" || payload.Voice.ID != "voice-danny" {
			t.Errorf("voice: got %+v", payload.Voice)
		}
		if payload.OutputFormat.Container != "mp3" ||
			payload.OutputFormat.SampleRate != 44100 ||
			payload.OutputFormat.BitRate != 128000 {
			t.Errorf("output format: got %+v", payload.OutputFormat)
		}
		if payload.GenerationConfig.Speed != 1.2 {
			t.Errorf("speed: got %v", payload.GenerationConfig.Speed)
		}

		w.Write(mp3)
	}))
	defer server.Close()

	provider, err := NewCartesia(WithAPIKey("test-key"), WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewCartesia: %v", err)
	}
	defer provider.Close()

	result, err := provider.Synthesize(context.Background(), &Request{
		Text:    "What a goal!",
		VoiceID: "voice-danny",
		Speed:   1.2,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(result.Audio) != string(mp3) {
		t.Error("audio payload mismatch")
	}
	if result.Container != "mp3" || result.SampleRate != 44100 {
		t.Errorf("result format: %+v", result)
	}
}

func TestCartesiaNormalSpeedOmitsGenerationConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		if _, present := payload["generation_config"]; present {
			t.Error("generation_config should be omitted at normal speed")
		}
		w.Write([]byte("mp3"))
	}))
	defer server.Close()

	provider, _ := NewCartesia(WithAPIKey("k"), WithBaseURL(server.URL), WithVoiceID("v"))
	defer provider.Close()

	if _, err := provider.Synthesize(context.Background(), &Request{Text: "Kickoff."}); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
}

func TestCartesiaValidation(t *testing.T) {
	provider, _ := NewCartesia(WithAPIKey("k"))
	defer provider.Close()

	if _, err := provider.Synthesize(context.Background(), &Request{Text: ""}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
	if _, err := provider.Synthesize(context.Background(), &Request{Text: "hi"}); !errors.Is(err, ErrNoVoice) {
		t.Errorf("expected ErrNoVoice, got %v", err)
	}
}

func TestCartesiaRetriesOn500(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("mp3"))
	}))
	defer server.Close()

	provider, _ := NewCartesia(
		WithAPIKey("k"),
		WithBaseURL(server.URL),
		WithVoiceID("v"),
		WithRetry(2, 0),
	)
	defer provider.Close()

	if _, err := provider.Synthesize(context.Background(), &Request{Text: "go"}); err != nil {
		t.Fatalf("Synthesize after retry: %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("attempts: got %d, want 2", got)
	}
}

func TestCartesiaAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{"error": "out of credits"})
	}))
	defer server.Close()

	provider, _ := NewCartesia(WithAPIKey("k"), WithBaseURL(server.URL), WithVoiceID("v"))
	defer provider.Close()

	_, err := provider.Synthesize(context.Background(), &Request{Text: "go"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 402 || apiErr.Message != "out of credits" {
		t.Errorf("got %+v", apiErr)
	}
}

func TestEstimateDuration(t *testing.T) {
	// 16000 bytes at 128 kbps is one second.
	if got := estimateDuration(16000); got != time.Second {
		t.Errorf("got %v, want 1s", got)
	}
}

func TestMockRecordsRequest(t *testing.T) {
	m := NewMock()

	result, err := m.Synthesize(context.Background(), &Request{
		Text:    "Unbelievable!",
		VoiceID: "voice-rookie",
		Speed:   0.9,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(result.Audio) == 0 {
		t.Error("expected fake audio")
	}

	last := m.LastCall("Synthesize")
	if last == nil || last.VoiceID != "voice-rookie" || last.Speed != 0.9 {
		t.Errorf("last call: %+v", last)
	}
	if m.CallCount("Synthesize") != 1 {
		t.Errorf("call count: got %d", m.CallCount("Synthesize"))
	}
}

// wsTestServer upgrades the connection and hands it to serve.
func wsTestServer(t *testing.T, serve func(*websocket.Conn, url.Values)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		serve(conn, r.URL.Query())
	}))
}

func TestCartesiaWSSynthesize(t *testing.T) {
	audio := []byte("streamed-mp3-bytes")

	srv := wsTestServer(t, func(conn *websocket.Conn, query url.Values) {
		if query.Get("api_key") != "test-key" {
			t.Errorf("api_key query: got %q", query.Get("api_key"))
		}
		if query.Get("cartesia_version") != "2025-04-16" {
			t.Errorf("cartesia_version query: got %q", query.Get("cartesia_version"))
		}

		var req map[string]interface{}
		if err := conn.ReadJSON(&req); err != nil {
			t.Errorf("read request: %v", err)
			return
		}
		if req["transcript"] != "Goal for the home side!" {
			t.Errorf("transcript: got %v", req["transcript"])
		}
		if req["model_id"] != "sonic-3" {
			t.Errorf("model_id: got %v", req["model_id"])
		}
		contextID, _ := req["context_id"].(string)
		if contextID == "" {
			t.Error("expected a context_id")
		}

		// A stale chunk from an abandoned request must be skipped.
		conn.WriteJSON(map[string]interface{}{
			"type": "chunk", "context_id": "stale-context",
			"data": base64.StdEncoding.EncodeToString([]byte("stale")),
		})
		conn.WriteJSON(map[string]interface{}{
			"type": "chunk", "context_id": contextID,
			"data": base64.StdEncoding.EncodeToString(audio[:8]),
		})
		conn.WriteJSON(map[string]interface{}{
			"type": "chunk", "context_id": contextID,
			"data": base64.StdEncoding.EncodeToString(audio[8:]),
		})
		conn.WriteJSON(map[string]interface{}{
			"type": "done", "context_id": contextID, "done": true,
		})
	})
	defer srv.Close()

	provider, err := NewCartesiaWS(
		WithAPIKey("test-key"),
		WithWSBaseURL("ws"+strings.TrimPrefix(srv.URL, "http")),
	)
	if err != nil {
		t.Fatalf("NewCartesiaWS: %v", err)
	}
	defer provider.Close()

	result, err := provider.Synthesize(context.Background(), &Request{
		Text:    "Goal for the home side!",
		VoiceID: "voice-danny",
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(result.Audio) != string(audio) {
		t.Errorf("audio: got %q, want %q", result.Audio, audio)
	}
	if result.Container != "mp3" || result.SampleRate != 44100 {
		t.Errorf("format: %+v", result)
	}
}

func TestCartesiaWSServerError(t *testing.T) {
	srv := wsTestServer(t, func(conn *websocket.Conn, _ url.Values) {
		var req map[string]interface{}
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		conn.WriteJSON(map[string]interface{}{
			"type": "error", "context_id": req["context_id"],
			"error": "invalid voice id",
		})
	})
	defer srv.Close()

	provider, err := NewCartesiaWS(
		WithAPIKey("test-key"),
		WithWSBaseURL("ws"+strings.TrimPrefix(srv.URL, "http")),
	)
	if err != nil {
		t.Fatalf("NewCartesiaWS: %v", err)
	}
	defer provider.Close()

	_, err = provider.Synthesize(context.Background(), &Request{
		Text:    "hello",
		VoiceID: "bad-voice",
	})
	if err == nil || !strings.Contains(err.Error(), "invalid voice id") {
		t.Errorf("expected server error, got %v", err)
	}
}

func TestCartesiaWSValidatesRequest(t *testing.T) {
	provider, err := NewCartesiaWS(WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("NewCartesiaWS: %v", err)
	}

	if _, err := provider.Synthesize(context.Background(), &Request{VoiceID: "v"}); err != ErrEmptyText {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
	if _, err := provider.Synthesize(context.Background(), &Request{Text: "hi"}); err != ErrNoVoice {
		t.Errorf("expected ErrNoVoice, got %v", err)
	}
}
