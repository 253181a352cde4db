package realtime

import (
	"fmt"
	"sync"
)

// Outbox is a bounded FIFO of serialized frames waiting to be written to one
// connection. Enqueue never blocks.
type Outbox struct {
	mu     sync.Mutex
	frames chan []byte
	closed bool
}

// NewOutbox creates an outbox holding at most size frames.
func NewOutbox(size int) *Outbox {
	if size < 1 {
		size = 1
	}
	return &Outbox{frames: make(chan []byte, size)}
}

// Enqueue adds a frame to the queue.
// Returns ErrOutboxFull or ErrOutboxClosed instead of waiting.
func (o *Outbox) Enqueue(frame []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrOutboxClosed
	}

	select {
	case o.frames <- frame:
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrOutboxFull, cap(o.frames))
	}
}

// Close stops further enqueues. Frames already queued remain readable.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.closed {
		o.closed = true
		close(o.frames)
	}
}

// Frames returns the channel the writer drains.
func (o *Outbox) Frames() <-chan []byte {
	return o.frames
}

// Len reports the number of queued frames.
func (o *Outbox) Len() int {
	return len(o.frames)
}
