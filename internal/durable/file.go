package durable

import (
	"encoding/base32"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps the snapshot in a JSON file named after the key.
type FileStore struct {
	path     string
	key      string
	capacity int
}

// NewFileStore creates a FileStore for key under dir. capacity <= 0 means
// unlimited.
func NewFileStore(dir, key string, capacity int) *FileStore {
	return &FileStore{
		path:     filepath.Join(dir, fileName(key)),
		key:      key,
		capacity: capacity,
	}
}

// FileFactory returns a Factory producing FileStores under dir.
func FileFactory(dir string, capacity int) Factory {
	return func(key string) Store {
		return NewFileStore(dir, key, capacity)
	}
}

// Path returns the file backing this store.
func (s *FileStore) Path() string {
	return s.path
}

// Read returns the file contents.
func (s *FileStore) Read() ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewStoreError(OpRead, s.key, ErrNotFound)
		}
		return nil, NewStoreError(OpRead, s.key, fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	return raw, nil
}

// Write replaces the file atomically via a temp file and rename.
func (s *FileStore) Write(raw []byte) error {
	if s.capacity > 0 && len(raw) > s.capacity {
		return NewStoreError(OpWrite, s.key,
			fmt.Errorf("%w: %d bytes exceeds %d", ErrQuotaExceeded, len(raw), s.capacity))
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewStoreError(OpWrite, s.key, fmt.Errorf("%w: %v", ErrUnavailable, err))
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return NewStoreError(OpWrite, s.key, fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return NewStoreError(OpWrite, s.key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return NewStoreError(OpWrite, s.key, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return NewStoreError(OpWrite, s.key, err)
	}
	return nil
}

// Erase removes the file; a missing file is not an error.
func (s *FileStore) Erase() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return NewStoreError(OpErase, s.key, err)
	}
	return nil
}

// fileNameEncoding is lowercase base32hex without padding. Distinct keys get
// distinct names, even on case-insensitive file systems, and a 128-byte
// context id still fits the 255-byte name limit.
var fileNameEncoding = base32.HexEncoding.WithPadding(base32.NoPadding)

// fileName maps a key to a file name holding only [0-9a-v].
func fileName(key string) string {
	return strings.ToLower(fileNameEncoding.EncodeToString([]byte(key))) + ".json"
}
