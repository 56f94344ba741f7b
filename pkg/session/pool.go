package session

import (
	"context"

	"github.com/PreritO/cartesia-hackathon/pkg/detect"
)

// Pool serializes detection inference. Inference is CPU-bound and must
// not overlap with itself, so the pool holds a single slot; the frame
// loop still respects cancellation while waiting for it.
type Pool struct {
	slots chan struct{}
}

// NewPool creates a pool with the given number of slots. size <= 0 means
// one slot.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Detect runs detection through the pool, blocking until a slot is free
// or the context is cancelled.
func (p *Pool) Detect(ctx context.Context, det detect.Detector, jpeg []byte) ([]detect.Object, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case p.slots <- struct{}{}:
	}
	defer func() { <-p.slots }()

	return det.Detect(ctx, jpeg)
}
