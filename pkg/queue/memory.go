package queue

import "context"

// MemoryDriver is a buffered in-process queue. Default driver; also used in
// tests. Jobs are lost on process exit — use the Redis driver in production.
type MemoryDriver struct {
	ch chan []byte
}

// NewMemoryDriver returns a memory driver with a 1024-job buffer.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, 1024)}
}

// Push enqueues a payload; returns immediately unless the buffer is full.
func (d *MemoryDriver) Push(payload []byte) error {
	d.ch <- payload
	return nil
}

// Pop blocks until a payload arrives or ctx is cancelled.
func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.ch:
		return payload, nil
	}
}
