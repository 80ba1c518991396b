package durable

import "sync"

// MockStore implements Store with overridable behavior for testing. The
// default functions keep the snapshot in memory.
type MockStore struct {
	mu      sync.Mutex
	data    []byte
	present bool

	ReadFn  func() ([]byte, error)
	WriteFn func(raw []byte) error
	EraseFn func() error

	Reads  int
	Writes int
	Erases int
}

// NewMockStore creates a MockStore with default in-memory implementations.
func NewMockStore() *MockStore {
	s := &MockStore{}

	s.ReadFn = func() ([]byte, error) {
		if !s.present {
			return nil, NewStoreError(OpRead, DefaultKey, ErrNotFound)
		}
		out := make([]byte, len(s.data))
		copy(out, s.data)
		return out, nil
	}

	s.WriteFn = func(raw []byte) error {
		s.data = append(s.data[:0:0], raw...)
		s.present = true
		return nil
	}

	s.EraseFn = func() error {
		s.data = nil
		s.present = false
		return nil
	}

	return s
}

// NewMockStoreWith creates a MockStore preloaded with raw.
func NewMockStoreWith(raw []byte) *MockStore {
	s := NewMockStore()
	_ = s.WriteFn(raw)
	return s
}

// Read delegates to ReadFn.
func (s *MockStore) Read() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++
	return s.ReadFn()
}

// Write delegates to WriteFn.
func (s *MockStore) Write(raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Writes++
	return s.WriteFn(raw)
}

// Erase delegates to EraseFn.
func (s *MockStore) Erase() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Erases++
	return s.EraseFn()
}

// Raw returns the snapshot currently held by the default implementation.
func (s *MockStore) Raw() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, s.present
}
