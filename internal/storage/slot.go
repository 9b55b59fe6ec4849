// Package storage provides the durable key-value slot the overlay persists
// into: one opaque blob per namespace.
package storage

import (
	"errors"
	"sync"
)

// ErrAbsent is returned by Read when nothing has been written under the
// namespace yet. Callers treat it as "start empty", never as fatal.
var ErrAbsent = errors.New("storage: namespace absent")

// Slot reads and writes a single serialized blob per namespace.
type Slot interface {
	Read(namespace string) ([]byte, error)
	Write(namespace string, blob []byte) error
}

// MemorySlot is an in-memory Slot used by tests and one-shot tools.
type MemorySlot struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{blobs: make(map[string][]byte)}
}

func (m *MemorySlot) Read(namespace string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[namespace]
	if !ok {
		return nil, ErrAbsent
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

func (m *MemorySlot) Write(namespace string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(blob))
	copy(stored, blob)
	m.blobs[namespace] = stored
	return nil
}
