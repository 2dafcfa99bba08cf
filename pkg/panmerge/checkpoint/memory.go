package checkpoint

import "sync"

// MemoryStore is an in-memory checkpoint store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	done   map[string]struct{}
	closed bool
}

// NewMemoryStore creates a new in-memory checkpoint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{done: make(map[string]struct{})}
}

// Load implements Store. The returned set is a copy.
func (m *MemoryStore) Load() (map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	done := make(map[string]struct{}, len(m.done))
	for name := range m.done {
		done[name] = struct{}{}
	}
	return done, nil
}

// Append implements Store.
func (m *MemoryStore) Append(sample string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	m.done[sample] = struct{}{}
	return nil
}

// Reset implements Store.
func (m *MemoryStore) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	m.done = make(map[string]struct{})
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.done = nil
	return nil
}

// Len returns the number of completed samples. Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.done)
}
