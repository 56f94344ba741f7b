// Package session runs one commentary session: it pulls frames from a
// source, runs detection, decides when to speak, composes turns, and
// forwards them over the client's WebSocket.
package session

import "context"

// Frame is one sampled video frame.
type Frame struct {
	// JPEG is the encoded image.
	JPEG []byte

	// Width and Height are the decoded dimensions in pixels.
	Width, Height int
}

// Source supplies frames to a session. File playback pulls frames at the
// configured rate; live sessions have frames pushed by the client.
type Source interface {
	// Start prepares the source.
	Start(ctx context.Context) error

	// Next blocks until the next frame is available. Returns io.EOF when
	// the source is exhausted or stopped.
	Next(ctx context.Context) (*Frame, error)

	// Stop releases the source. Safe to call more than once.
	Stop() error
}
