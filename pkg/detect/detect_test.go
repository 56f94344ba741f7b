package detect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestObjectClassification(t *testing.T) {
	tests := []struct {
		label    string
		isBall   bool
		isPerson bool
	}{
		{"football", true, false},
		{"sports ball", true, false},
		{"ball", true, false},
		{"player", false, true},
		{"person", false, true},
		{"football-player", false, true},
		{"referee", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			o := Object{Label: tt.label}
			if o.IsBall() != tt.isBall {
				t.Errorf("IsBall() = %v, want %v", o.IsBall(), tt.isBall)
			}
			if o.IsPerson() != tt.isPerson {
				t.Errorf("IsPerson() = %v, want %v", o.IsPerson(), tt.isPerson)
			}
		})
	}
}

func TestObjectCenter(t *testing.T) {
	o := Object{X1: 100, Y1: 50, X2: 300, Y2: 250}

	cx, cy := o.Center()
	if cx != 200 || cy != 150 {
		t.Errorf("Center() = (%d, %d), want (200, 150)", cx, cy)
	}

	nx, ny := o.NormCenter(400, 300)
	if nx != 0.5 || ny != 0.5 {
		t.Errorf("NormCenter() = (%v, %v), want (0.5, 0.5)", nx, ny)
	}

	t.Run("zero frame dimensions", func(t *testing.T) {
		nx, ny := o.NormCenter(0, 0)
		if nx != 0 || ny != 0 {
			t.Errorf("NormCenter(0,0) = (%v, %v), want (0, 0)", nx, ny)
		}
	})
}

func TestHasBall(t *testing.T) {
	objects := []Object{
		{Label: "person"},
		{Label: "person"},
	}
	if HasBall(objects) {
		t.Error("expected no ball")
	}

	objects = append(objects, Object{Label: "football"})
	if !HasBall(objects) {
		t.Error("expected ball present")
	}

	if got := len(Persons(objects)); got != 2 {
		t.Errorf("Persons: got %d, want 2", got)
	}
	if got := len(Balls(objects)); got != 1 {
		t.Errorf("Balls: got %d, want 1", got)
	}
}

func TestRoboflowRequiresAPIKey(t *testing.T) {
	_, err := NewRoboflow()
	if err != ErrNoAPIKey {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestRoboflowDetect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("missing api_key, got query %q", r.URL.RawQuery)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"predictions": []map[string]any{
				{"class": "Player", "confidence": 0.9, "x": 200.0, "y": 150.0, "width": 40.0, "height": 80.0},
				{"class": "football", "confidence": 0.7, "x": 320.0, "y": 240.0, "width": 20.0, "height": 20.0},
				{"class": "player", "confidence": 0.3, "x": 10.0, "y": 10.0, "width": 10.0, "height": 10.0},
			},
		})
	}))
	defer server.Close()

	det, err := NewRoboflow(
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
	)
	if err != nil {
		t.Fatalf("NewRoboflow: %v", err)
	}
	defer det.Close()

	objects, err := det.Detect(context.Background(), []byte("fake-jpeg"))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	// Third prediction is below the 0.5 confidence threshold.
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objects))
	}

	player := objects[0]
	if player.Label != "player" {
		t.Errorf("label not lowercased: got %q", player.Label)
	}
	if player.X1 != 180 || player.Y1 != 110 || player.X2 != 220 || player.Y2 != 190 {
		t.Errorf("box conversion wrong: got (%d,%d,%d,%d)", player.X1, player.Y1, player.X2, player.Y2)
	}

	if !objects[1].IsBall() {
		t.Errorf("expected ball, got %q", objects[1].Label)
	}
}

func TestRoboflowRetriesOn500(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"predictions": []map[string]any{}})
	}))
	defer server.Close()

	det, err := NewRoboflow(
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
		WithRetry(2, 0),
	)
	if err != nil {
		t.Fatalf("NewRoboflow: %v", err)
	}
	defer det.Close()

	objects, err := det.Detect(context.Background(), []byte("fake-jpeg"))
	if err != nil {
		t.Fatalf("Detect after retry: %v", err)
	}
	if len(objects) != 0 {
		t.Errorf("expected empty detections, got %d", len(objects))
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestRoboflowAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid key"})
	}))
	defer server.Close()

	det, err := NewRoboflow(WithAPIKey("bad-key"), WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewRoboflow: %v", err)
	}
	defer det.Close()

	_, err = det.Detect(context.Background(), []byte("fake-jpeg"))
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 403 {
		t.Errorf("status: got %d, want 403", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid key" {
		t.Errorf("message: got %q", apiErr.Message)
	}
	if apiErr.IsRetryable() {
		t.Error("403 should not be retryable")
	}
}

func TestCacheLoaded(t *testing.T) {
	cache := NewCache(func() (Detector, error) {
		return NewMock(), nil
	})
	defer cache.Close()

	if cache.Loaded() {
		t.Error("Loaded must be false before the first Get")
	}
	if _, err := cache.Get(); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !cache.Loaded() {
		t.Error("Loaded must be true after a successful Get")
	}

	cache.Close()
	if cache.Loaded() {
		t.Error("Loaded must be false after Close")
	}
}

func TestCacheLoadsOnce(t *testing.T) {
	var constructed atomic.Int32
	cache := NewCache(func() (Detector, error) {
		constructed.Add(1)
		return NewMock(), nil
	})
	defer cache.Close()

	first, err := cache.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := cache.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first != second {
		t.Error("expected same detector instance")
	}
	if got := constructed.Load(); got != 1 {
		t.Errorf("factory called %d times, want 1", got)
	}
}

func TestCacheRetriesFailedLoad(t *testing.T) {
	var calls atomic.Int32
	cache := NewCache(func() (Detector, error) {
		if calls.Add(1) == 1 {
			return nil, ErrBackendUnavailable
		}
		return NewMock(), nil
	})
	defer cache.Close()

	if _, err := cache.Get(); err == nil {
		t.Fatal("expected first load to fail")
	}
	if _, err := cache.Get(); err != nil {
		t.Fatalf("expected second load to succeed: %v", err)
	}
}

func TestMockRecordsCalls(t *testing.T) {
	m := NewMock(Object{Label: "person", Confidence: 0.9})

	objects, err := m.Detect(context.Background(), []byte("abc"))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(objects))
	}

	if m.CallCount("Detect") != 1 {
		t.Errorf("Detect call count: got %d, want 1", m.CallCount("Detect"))
	}
	if calls := m.Calls(); calls[0].FrameSize != 3 {
		t.Errorf("frame size: got %d, want 3", calls[0].FrameSize)
	}

	m.Reset()
	if m.CallCount("Detect") != 0 {
		t.Error("expected no calls after Reset")
	}
}
