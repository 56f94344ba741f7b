package session

import (
	"bytes"
	"context"
	"image"
	"io"
	"sync"

	_ "image/jpeg" // registers the decoder used to read frame dimensions
)

// liveBuffer bounds the pending live frames. When the client pushes
// faster than the pipeline consumes, the oldest frame is dropped; stale
// frames are worthless for live commentary.
const liveBuffer = 4

// LiveSource accepts JPEG frames pushed by the client over the socket.
type LiveSource struct {
	frames chan *Frame

	mu      sync.Mutex
	stopped bool
}

// NewLiveSource creates a push-based source.
func NewLiveSource() *LiveSource {
	return &LiveSource{frames: make(chan *Frame, liveBuffer)}
}

// Start is a no-op; the source is ready as soon as it exists.
func (l *LiveSource) Start(ctx context.Context) error {
	return nil
}

// Push enqueues a frame, dropping the oldest pending frame when full.
// Frames pushed after Stop are discarded. The mutex is held across the
// send so a concurrent Stop cannot close the channel mid-push; the inner
// loop never blocks, so holding it is safe.
func (l *LiveSource) Push(jpeg []byte) {
	frame := &Frame{JPEG: jpeg}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(jpeg)); err == nil {
		frame.Width = cfg.Width
		frame.Height = cfg.Height
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}

	for {
		select {
		case l.frames <- frame:
			return
		default:
			select {
			case <-l.frames:
			default:
			}
		}
	}
}

// Next blocks until a frame arrives. Returns io.EOF after Stop drains the
// channel.
func (l *LiveSource) Next(ctx context.Context) (*Frame, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame, ok := <-l.frames:
		if !ok {
			return nil, io.EOF
		}
		return frame, nil
	}
}

// Stop closes the source; pending frames are still delivered.
func (l *LiveSource) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return nil
	}
	l.stopped = true
	close(l.frames)
	return nil
}

// Verify LiveSource implements Source at compile time.
var _ Source = (*LiveSource)(nil)
