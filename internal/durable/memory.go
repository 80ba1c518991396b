package durable

import (
	"fmt"
	"sync"
)

// MemoryBackend is an in-process medium shared by any number of keyed
// MemoryStores. A non-zero capacity caps the size of a single payload.
type MemoryBackend struct {
	mu       sync.RWMutex
	entries  map[string][]byte
	capacity int
}

// NewMemoryBackend creates an empty backend. capacity <= 0 means unlimited.
func NewMemoryBackend(capacity int) *MemoryBackend {
	return &MemoryBackend{
		entries:  make(map[string][]byte),
		capacity: capacity,
	}
}

// Store returns the Store bound to key.
func (b *MemoryBackend) Store(key string) Store {
	return &MemoryStore{backend: b, key: key}
}

// Keys returns the keys currently holding a snapshot.
func (b *MemoryBackend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	return keys
}

// MemoryStore is a Store kept in process memory. It does not survive a
// restart; it backs tests and single-process deployments.
type MemoryStore struct {
	backend *MemoryBackend
	key     string
}

// NewMemoryStore creates a standalone MemoryStore under DefaultKey.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{backend: NewMemoryBackend(capacity), key: DefaultKey}
}

// Read returns a copy of the stored snapshot.
func (s *MemoryStore) Read() ([]byte, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	raw, ok := s.backend.entries[s.key]
	if !ok {
		return nil, NewStoreError(OpRead, s.key, ErrNotFound)
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// Write stores a copy of raw, rejecting payloads over capacity.
func (s *MemoryStore) Write(raw []byte) error {
	if s.backend.capacity > 0 && len(raw) > s.backend.capacity {
		return NewStoreError(OpWrite, s.key,
			fmt.Errorf("%w: %d bytes exceeds %d", ErrQuotaExceeded, len(raw), s.backend.capacity))
	}

	buf := make([]byte, len(raw))
	copy(buf, raw)

	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.entries[s.key] = buf
	return nil
}

// Erase deletes the stored snapshot.
func (s *MemoryStore) Erase() error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	delete(s.backend.entries, s.key)
	return nil
}
