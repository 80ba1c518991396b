package durable

// DefaultKey is the well-known key under which the workflow snapshot is stored.
const DefaultKey = "generate_state"

// Store is a key-scoped persistence surface for one raw snapshot.
type Store interface {
	// Read returns the raw snapshot. It returns an error wrapping ErrNotFound
	// when nothing has been written yet.
	Read() ([]byte, error)

	// Write replaces the stored snapshot.
	Write(raw []byte) error

	// Erase removes the stored snapshot. Erasing an absent snapshot succeeds.
	Erase() error
}

// Factory builds the Store for one execution context.
type Factory func(key string) Store

// ContextKey derives the storage key for an execution context. The empty
// context id maps to DefaultKey.
func ContextKey(contextID string) string {
	if contextID == "" {
		return DefaultKey
	}
	return DefaultKey + ":" + contextID
}
