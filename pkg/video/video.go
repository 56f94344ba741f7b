// Package video fetches source footage for commentary sessions. Videos
// are downloaded with yt-dlp, capped at a maximum duration, and cached on
// disk keyed by a hash of the source URL.
package video

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/PreritO/cartesia-hackathon/internal/store"
)

var (
	// ErrTooLong is returned when the source exceeds the duration cap.
	ErrTooLong = errors.New("video: source exceeds maximum duration")

	// ErrNoDownloader is returned when yt-dlp is not installed.
	ErrNoDownloader = errors.New("video: yt-dlp not found in PATH")
)

// Info describes a fetched video ready for playback.
type Info struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration int    `json:"duration"` // seconds
	Path     string `json:"path"`
}

// Downloader resolves metadata for and downloads a remote video.
type Downloader interface {
	// Metadata returns the title and duration in seconds without
	// downloading.
	Metadata(ctx context.Context, url string) (title string, duration int, err error)

	// Download fetches the video to dest.
	Download(ctx context.Context, url, dest string) error
}

// Manager fetches and caches videos.
type Manager struct {
	dir         string
	maxDuration int
	downloader  Downloader
	store       *store.Store
	logger      *slog.Logger
}

// NewManager creates a manager storing videos under dir. maxDuration
// caps accepted sources in seconds; zero or negative disables the cap.
// The store is optional; without it every fetch downloads fresh.
func NewManager(dir string, maxDuration int, dl Downloader, st *store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		dir:         dir,
		maxDuration: maxDuration,
		downloader:  dl,
		store:       st,
		logger:      logger.With("component", "video"),
	}
}

// VideoID derives a stable short identifier from the source URL.
func VideoID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:12]
}

// Fetch returns the video for url, downloading it if it is not cached.
// Local file paths are passed through untouched.
func (m *Manager) Fetch(ctx context.Context, url string) (*Info, error) {
	if info, ok := m.localFile(url); ok {
		return info, nil
	}

	id := VideoID(url)
	if info := m.cached(ctx, id); info != nil {
		m.logger.Info("video cache hit", "video_id", id)
		return info, nil
	}

	title, duration, err := m.downloader.Metadata(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("resolve video metadata: %w", err)
	}
	if m.maxDuration > 0 && duration > m.maxDuration {
		return nil, fmt.Errorf("%w: %ds > %ds", ErrTooLong, duration, m.maxDuration)
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create videos dir: %w", err)
	}

	dest := filepath.Join(m.dir, id+".mp4")
	m.logger.Info("downloading video", "video_id", id, "title", title, "duration_s", duration)
	if err := m.downloader.Download(ctx, url, dest); err != nil {
		return nil, fmt.Errorf("download video: %w", err)
	}

	info := &Info{ID: id, Title: title, Duration: duration, Path: dest}
	if m.store != nil {
		err := m.store.PutVideo(ctx, store.VideoRecord{
			ID:       info.ID,
			URL:      url,
			Title:    info.Title,
			Duration: info.Duration,
			Path:     info.Path,
		})
		if err != nil {
			m.logger.Warn("cache video record", "error", err)
		}
	}
	return info, nil
}

// localFile treats an existing file path as an already-fetched video.
func (m *Manager) localFile(url string) (*Info, bool) {
	fi, err := os.Stat(url)
	if err != nil || fi.IsDir() {
		return nil, false
	}
	return &Info{
		ID:    VideoID(url),
		Title: filepath.Base(url),
		Path:  url,
	}, true
}

// cached returns the stored record when both the row and the file on disk
// still exist.
func (m *Manager) cached(ctx context.Context, id string) *Info {
	if m.store == nil {
		return nil
	}
	rec, err := m.store.GetVideo(ctx, id)
	if err != nil {
		m.logger.Warn("video cache lookup", "error", err)
		return nil
	}
	if rec == nil {
		return nil
	}
	if _, err := os.Stat(rec.Path); err != nil {
		return nil
	}
	return &Info{ID: rec.ID, Title: rec.Title, Duration: rec.Duration, Path: rec.Path}
}
