// Package clipboard reads and writes clipboard text.
package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no system clipboard is available.
var ErrUnsupported = errors.New("clipboard is not supported on this system")

// Clipboard reads and writes text.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// System is the operating system clipboard.
type System struct{}

// NewSystem returns the system [Clipboard].
func NewSystem() *System {
	return &System{}
}

// Read returns the clipboard contents.
func (System) Read() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnsupported
	}

	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}

	return text, nil
}

// Write replaces the clipboard contents.
func (System) Write(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}

	err := clipboard.WriteAll(text)
	if err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}

	return nil
}

// Memory is an in-process [Clipboard].
type Memory struct {
	text   string
	mu     sync.Mutex
	writes int
}

// NewMemory returns a [Memory] clipboard holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.text, nil
}

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.text = text
	m.writes++

	return nil
}

// Writes returns the number of writes.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.writes
}
