// Package session maps execution contexts to their own task manager.
//
// Each context identifier gets one generate.Manager backed by a store keyed
// with durable.ContextKey. Managers are created on first use and restored
// from their store at that point.
package session

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/phrazzld/genflow/internal/durable"
	"github.com/phrazzld/genflow/internal/events"
	"github.com/phrazzld/genflow/internal/generate"
)

// Registry holds one Manager per execution context.
type Registry struct {
	mu       sync.Mutex
	factory  durable.Factory
	logger   *slog.Logger
	emitter  events.EventEmitter
	opts     []generate.Option
	managers map[string]*generate.Manager
}

// NewRegistry creates a Registry whose managers persist through stores built
// by factory. opts are applied to every manager.
func NewRegistry(
	factory durable.Factory,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...generate.Option,
) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		factory:  factory,
		logger:   logger.With("component", "session_registry"),
		emitter:  emitter,
		opts:     opts,
		managers: make(map[string]*generate.Manager),
	}
}

// Manager returns the manager of contextID, creating and loading it on first
// use. The empty context id addresses the default key.
func (r *Registry) Manager(contextID string) *generate.Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.managers[contextID]; ok {
		return m
	}

	key := durable.ContextKey(contextID)
	opts := append([]generate.Option{}, r.opts...)
	if r.emitter != nil {
		opts = append(opts, generate.WithEmitter(r.emitter))
	}

	m := generate.NewManager(r.factory(key), r.logger.With("context_id", contextID, "key", key), opts...)
	r.managers[contextID] = m
	r.logger.Debug("opened context", "context_id", contextID, "key", key)
	return m
}

// Loaded reports whether the manager of contextID has been created.
func (r *Registry) Loaded(contextID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.managers[contextID]
	return ok
}

// Contexts returns the ids of all open contexts, sorted.
func (r *Registry) Contexts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.managers))
	for id := range r.managers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Forget drops the in-memory manager of contextID. The persisted snapshot is
// left untouched and is loaded again on the next call to Manager.
func (r *Registry) Forget(contextID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.managers, contextID)
}
