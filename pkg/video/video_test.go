package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PreritO/cartesia-hackathon/internal/store"
)

// fakeDownloader scripts metadata and records downloads.
type fakeDownloader struct {
	title     string
	duration  int
	metaErr   error
	downloads []string
}

func (f *fakeDownloader) Metadata(ctx context.Context, url string) (string, int, error) {
	return f.title, f.duration, f.metaErr
}

func (f *fakeDownloader) Download(ctx context.Context, url, dest string) error {
	f.downloads = append(f.downloads, url)
	return os.WriteFile(dest, []byte("mp4"), 0o644)
}

func TestVideoID(t *testing.T) {
	a := VideoID("https://youtube.com/watch?v=abc")
	b := VideoID("https://youtube.com/watch?v=abc")
	c := VideoID("https://youtube.com/watch?v=xyz")

	if a != b {
		t.Error("same URL must hash to the same ID")
	}
	if a == c {
		t.Error("different URLs must hash to different IDs")
	}
	if len(a) != 12 {
		t.Errorf("ID length: got %d, want 12", len(a))
	}
}

func TestParseYouTubeID(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/abc123", "abc123", true},
		{"https://vimeo.com/12345", "", false},
		{"not a url ://", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseYouTubeID(tt.url)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseYouTubeID(%q) = %q, %v; want %q, %v", tt.url, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"PT3M20S", 200, false},
		{"PT1H2M3S", 3723, false},
		{"PT45S", 45, false},
		{"PT2H", 7200, false},
		{"3m20s", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseISODuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseISODuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseISODuration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFetchDownloads(t *testing.T) {
	dir := t.TempDir()
	dl := &fakeDownloader{title: "Highlights", duration: 300}
	m := NewManager(dir, 700, dl, nil, nil)

	info, err := m.Fetch(context.Background(), "https://example.com/clip")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if info.Title != "Highlights" || info.Duration != 300 {
		t.Errorf("info: %+v", info)
	}
	if filepath.Dir(info.Path) != dir {
		t.Errorf("path %q not under %q", info.Path, dir)
	}
	if _, err := os.Stat(info.Path); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
	if len(dl.downloads) != 1 {
		t.Errorf("downloads: got %d, want 1", len(dl.downloads))
	}
}

func TestFetchRejectsLongVideo(t *testing.T) {
	dl := &fakeDownloader{title: "Full Match", duration: 6000}
	m := NewManager(t.TempDir(), 700, dl, nil, nil)

	_, err := m.Fetch(context.Background(), "https://example.com/match")
	if !errors.Is(err, ErrTooLong) {
		t.Errorf("expected ErrTooLong, got %v", err)
	}
	if len(dl.downloads) != 0 {
		t.Error("rejected video must not be downloaded")
	}
}

func TestFetchMetadataError(t *testing.T) {
	dl := &fakeDownloader{metaErr: errors.New("video unavailable")}
	m := NewManager(t.TempDir(), 700, dl, nil, nil)

	if _, err := m.Fetch(context.Background(), "https://example.com/gone"); err == nil {
		t.Error("expected error")
	}
}

func TestFetchUsesCache(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	dl := &fakeDownloader{title: "Highlights", duration: 300}
	m := NewManager(dir, 700, dl, st, nil)

	url := "https://example.com/clip"
	first, err := m.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}

	second, err := m.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if len(dl.downloads) != 1 {
		t.Errorf("cached fetch must not re-download; downloads = %d", len(dl.downloads))
	}
	if second.Path != first.Path || second.Title != first.Title {
		t.Errorf("cache mismatch: %+v vs %+v", second, first)
	}

	// A missing file invalidates the cache entry.
	if err := os.Remove(first.Path); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Fetch(context.Background(), url); err != nil {
		t.Fatalf("re-fetch after eviction: %v", err)
	}
	if len(dl.downloads) != 2 {
		t.Errorf("expected re-download after file removal; downloads = %d", len(dl.downloads))
	}
}

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("mp4"), 0o644); err != nil {
		t.Fatal(err)
	}

	dl := &fakeDownloader{}
	m := NewManager(t.TempDir(), 700, dl, nil, nil)

	info, err := m.Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if info.Path != path {
		t.Errorf("path: got %q, want %q", info.Path, path)
	}
	if info.Title != "clip.mp4" {
		t.Errorf("title: got %q", info.Title)
	}
	if len(dl.downloads) != 0 {
		t.Error("local file must not trigger a download")
	}
}
