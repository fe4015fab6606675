package log

import (
	"fmt"
	"io"
	"sync"
)

// DefaultBufferCapacity is used when a non-positive capacity is requested.
const DefaultBufferCapacity = 100

// CircularBuffer is an [io.Writer] that keeps the most recent writes.
// It holds log output while an interactive prompt owns the terminal.
type CircularBuffer struct {
	entries [][]byte
	start   int
	mu      sync.Mutex
}

// NewCircularBuffer creates a [CircularBuffer] holding up to capacity writes.
func NewCircularBuffer(capacity int) *CircularBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}

	return &CircularBuffer{
		entries: make([][]byte, 0, capacity),
	}
}

// Write stores a copy of p, dropping the oldest entry when full.
func (cb *CircularBuffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	entry := append([]byte(nil), p...)

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if len(cb.entries) < cap(cb.entries) {
		cb.entries = append(cb.entries, entry)
	} else {
		cb.entries[cb.start] = entry
		cb.start = (cb.start + 1) % len(cb.entries)
	}

	return len(p), nil
}

// Entries returns the stored entries, oldest first.
func (cb *CircularBuffer) Entries() [][]byte {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.ordered()
}

// Len returns the number of stored entries.
func (cb *CircularBuffer) Len() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return len(cb.entries)
}

// Capacity returns the maximum number of stored entries.
func (cb *CircularBuffer) Capacity() int {
	return cap(cb.entries)
}

// Flush writes the stored entries to w, oldest first, and clears the buffer.
func (cb *CircularBuffer) Flush(w io.Writer) error {
	cb.mu.Lock()
	entries := cb.ordered()
	cb.entries = cb.entries[:0]
	cb.start = 0
	cb.mu.Unlock()

	for _, e := range entries {
		_, err := w.Write(e)
		if err != nil {
			return fmt.Errorf("flush log buffer: %w", err)
		}
	}

	return nil
}

func (cb *CircularBuffer) ordered() [][]byte {
	if len(cb.entries) == 0 {
		return nil
	}

	out := make([][]byte, 0, len(cb.entries))
	out = append(out, cb.entries[cb.start:]...)
	out = append(out, cb.entries[:cb.start]...)

	return out
}
