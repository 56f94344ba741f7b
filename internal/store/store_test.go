package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestVideoCache(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	t.Run("missing video returns nil", func(t *testing.T) {
		rec, err := s.GetVideo(ctx, "nope")
		if err != nil {
			t.Fatalf("GetVideo: %v", err)
		}
		if rec != nil {
			t.Errorf("expected nil record, got %+v", rec)
		}
	})

	t.Run("put then get", func(t *testing.T) {
		want := VideoRecord{
			ID:       "abc123",
			URL:      "https://example.com/watch?v=x",
			Title:    "Cup Final Highlights",
			Duration: 432,
			Path:     "/videos/abc123.mp4",
		}
		if err := s.PutVideo(ctx, want); err != nil {
			t.Fatalf("PutVideo: %v", err)
		}

		got, err := s.GetVideo(ctx, "abc123")
		if err != nil {
			t.Fatalf("GetVideo: %v", err)
		}
		if got == nil {
			t.Fatal("expected record")
		}
		if got.Title != want.Title || got.Duration != want.Duration || got.Path != want.Path {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("upsert replaces", func(t *testing.T) {
		if err := s.PutVideo(ctx, VideoRecord{ID: "abc123", URL: "u", Title: "New Title", Duration: 10, Path: "p"}); err != nil {
			t.Fatalf("PutVideo: %v", err)
		}
		got, err := s.GetVideo(ctx, "abc123")
		if err != nil {
			t.Fatalf("GetVideo: %v", err)
		}
		if got.Title != "New Title" {
			t.Errorf("title after upsert: got %q, want %q", got.Title, "New Title")
		}
	})
}

func TestTranscript(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	turns := []TurnRecord{
		{SessionID: "s1", Persona: "danny", Emotion: "excited", Text: "What a run!"},
		{SessionID: "s1", Persona: "coach_kay", Emotion: "thoughtful", Text: "Watch the back line."},
		{SessionID: "s2", Persona: "danny", Emotion: "neutral", Text: "Kickoff."},
	}
	for _, turn := range turns {
		if err := s.AppendTurn(ctx, turn); err != nil {
			t.Fatalf("AppendTurn: %v", err)
		}
	}

	got, err := s.Transcript(ctx, "s1")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got))
	}
	if got[0].Text != "What a run!" {
		t.Errorf("first turn: got %q", got[0].Text)
	}
	if got[1].Persona != "coach_kay" {
		t.Errorf("second persona: got %q", got[1].Persona)
	}
}
