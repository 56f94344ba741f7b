package session

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// FileSource reads frames from a video file, sampled down to the target
// FPS and paced in real time so commentary lands while the viewer watches
// the same moment.
type FileSource struct {
	path string
	fps  int

	mu       sync.Mutex
	capture  *gocv.VideoCapture
	img      gocv.Mat
	skip     int
	interval time.Duration
	stopped  bool
}

// NewFileSource creates a source over the video at path, sampling at fps.
func NewFileSource(path string, fps int) *FileSource {
	if fps <= 0 {
		fps = 5
	}
	return &FileSource{path: path, fps: fps}
}

// Start opens the video file.
func (f *FileSource) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	capture, err := gocv.OpenVideoCapture(f.path)
	if err != nil {
		return fmt.Errorf("open video %s: %w", f.path, err)
	}

	nativeFPS := capture.Get(gocv.VideoCaptureFPS)
	if nativeFPS <= 0 {
		nativeFPS = 30
	}

	f.capture = capture
	f.img = gocv.NewMat()
	f.skip = int(nativeFPS) / f.fps
	if f.skip < 1 {
		f.skip = 1
	}
	f.interval = time.Second / time.Duration(f.fps)
	return nil
}

// Next decodes the next sampled frame as JPEG. Paces reads to the target
// FPS in wall-clock time.
func (f *FileSource) Next(ctx context.Context) (*Frame, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(f.interval):
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stopped || f.capture == nil {
		return nil, io.EOF
	}

	// Skip the frames between samples.
	for i := 0; i < f.skip; i++ {
		if ok := f.capture.Read(&f.img); !ok {
			return nil, io.EOF
		}
	}
	if f.img.Empty() {
		return nil, io.EOF
	}

	buf, err := gocv.IMEncode(".jpg", f.img)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	jpeg := make([]byte, len(buf.GetBytes()))
	copy(jpeg, buf.GetBytes())

	return &Frame{
		JPEG:   jpeg,
		Width:  f.img.Cols(),
		Height: f.img.Rows(),
	}, nil
}

// Stop closes the capture.
func (f *FileSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stopped {
		return nil
	}
	f.stopped = true

	var err error
	if f.capture != nil {
		err = f.capture.Close()
		f.capture = nil
	}
	if f.img.Ptr() != nil {
		f.img.Close()
	}
	return err
}

// Verify FileSource implements Source at compile time.
var _ Source = (*FileSource)(nil)
