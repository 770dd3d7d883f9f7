// Package storage persists the planner's task collection in a named
// key-value slot and converts it to and from export files.
package storage

import (
	"maps"
	"sync"
)

// KV is a flat key-value store holding opaque values.
type KV interface {
	// Get returns the value stored under key. ok is false when the key is
	// absent.
	Get(key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Clear deletes every key.
	Clear() error
}

// MemoryKV keeps values in memory. Errors can be injected to simulate a
// slot that rejects writes.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte

	// GetErr, SetErr and RemoveErr are returned by the matching method
	// when non-nil.
	GetErr    error
	SetErr    error
	RemoveErr error
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	delete(m.values, key)
	return nil
}

func (m *MemoryKV) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	clear(m.values)
	return nil
}

// Snapshot returns a copy of every stored key and value.
func (m *MemoryKV) Snapshot() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return maps.Clone(m.values)
}
