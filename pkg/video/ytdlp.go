package video

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// ytdlpFormat prefers a single-file mp4 at or below 720p so the frame
// reader never needs a remux step.
const ytdlpFormat = "best[ext=mp4][height<=720]/best[ext=mp4]/best"

// YtDlp downloads videos by shelling out to yt-dlp.
type YtDlp struct {
	logger *slog.Logger
}

// NewYtDlp verifies yt-dlp is installed and returns a downloader.
func NewYtDlp(logger *slog.Logger) (*YtDlp, error) {
	if _, err := exec.LookPath("yt-dlp"); err != nil {
		return nil, ErrNoDownloader
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &YtDlp{logger: logger.With("component", "ytdlp")}, nil
}

// Metadata resolves the title and duration without downloading.
func (y *YtDlp) Metadata(ctx context.Context, url string) (string, int, error) {
	out, err := y.run(ctx,
		"--no-playlist",
		"--skip-download",
		"--print", "%(title)s",
		"--print", "%(duration)s",
		url,
	)
	if err != nil {
		return "", 0, err
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return "", 0, fmt.Errorf("unexpected yt-dlp output: %q", out)
	}

	title := strings.TrimSpace(lines[0])
	duration, err := strconv.Atoi(strings.TrimSpace(lines[1]))
	if err != nil {
		// Live streams report "NA"; treat them as unbounded.
		duration = 0
	}
	return title, duration, nil
}

// Download fetches the video to dest.
func (y *YtDlp) Download(ctx context.Context, url, dest string) error {
	_, err := y.run(ctx,
		"--no-playlist",
		"-f", ytdlpFormat,
		"-o", dest,
		url,
	)
	return err
}

func (y *YtDlp) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "yt-dlp", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	y.logger.Debug("running yt-dlp", "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("yt-dlp: %s", msg)
	}
	return stdout.String(), nil
}

// Verify YtDlp implements Downloader at compile time.
var _ Downloader = (*YtDlp)(nil)
