package generate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/genflow/internal/durable"
	"github.com/phrazzld/genflow/internal/events"
)

// DefaultHistoryLimit is the number of finished tasks kept in history.
const DefaultHistoryLimit = 10

// Option configures a Manager.
type Option func(*Manager)

// WithHistoryLimit overrides the history bound. Values below 1 are ignored.
func WithHistoryLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.historyLimit = n
		}
	}
}

// WithClock sets the time source used for task ids and start times.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithEmitter publishes lifecycle events to emitter.
func WithEmitter(emitter events.EventEmitter) Option {
	return func(m *Manager) {
		m.emitter = emitter
	}
}

// Manager tracks the current generation task, the history of finished tasks
// and the workflow snapshot for one execution context.
//
// All operations are synchronous and run to completion under the manager's
// lock. Persistence failures are logged and never returned: the in-memory
// state stays authoritative for the rest of the session.
type Manager struct {
	mu           sync.Mutex
	store        durable.Store
	logger       *slog.Logger
	emitter      events.EventEmitter
	now          func() time.Time
	historyLimit int

	current *Task
	history []Task
	state   WorkflowSnapshot

	// unsaved is set while the store lags behind memory after a failed
	// write or erase.
	unsaved bool
}

// NewManager creates a Manager backed by store and restores any persisted
// state from it.
func NewManager(store durable.Store, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		store:        store,
		logger:       logger.With("component", "generate_manager"),
		now:          time.Now,
		historyLimit: DefaultHistoryLimit,
		history:      []Task{},
		state:        DefaultSnapshot(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.LoadState()
	return m
}

// StartTask begins tracking a new running task and makes it current.
// A task that is still running is replaced without being recorded; callers
// are expected to check CurrentTask first.
func (m *Manager) StartTask(kind Kind, workflowID string) Task {
	m.mu.Lock()

	if m.current != nil && m.current.Status == StatusRunning {
		m.logger.Warn("replacing task that is still running",
			"previous_task_id", m.current.ID,
			"previous_progress", m.current.Progress)
	}

	now := m.now()
	task := Task{
		ID:         NewTaskID(kind, now),
		Kind:       kind,
		Status:     StatusRunning,
		Progress:   0,
		Message:    InitialMessage,
		WorkflowID: workflowID,
		StartedAt:  now.UnixMilli(),
	}
	m.current = &task
	m.persistLocked()
	out := task.clone()
	m.mu.Unlock()

	m.logger.Info("task started", "task_id", out.ID, "task_type", out.Kind, "project_id", workflowID)
	m.emit(events.TaskStarted, out.ID, out)
	return out
}

// UpdateTask records progress and the current step message of the running
// task and returns the updated task. It does nothing, returning false, when
// there is no running task.
func (m *Manager) UpdateTask(progress int, message string) (Task, bool) {
	m.mu.Lock()

	if !m.runningLocked("update") {
		m.mu.Unlock()
		return Task{}, false
	}

	m.current.Progress = progress
	m.current.Message = message
	m.persistLocked()
	out := m.current.clone()
	m.mu.Unlock()

	m.emit(events.TaskUpdated, out.ID, out)
	return out, true
}

// CompleteTask marks the running task completed with the given result and
// records it in history. The task stays current until ClearTask. It returns
// false when there was no running task to complete.
func (m *Manager) CompleteTask(result json.RawMessage) (Task, bool) {
	m.mu.Lock()

	if !m.runningLocked("complete") {
		m.mu.Unlock()
		return Task{}, false
	}

	if len(result) > 0 && !json.Valid(result) {
		m.logger.Warn("discarding task result that is not valid JSON",
			"task_id", m.current.ID,
			"result_bytes", len(result))
		result = nil
	}

	m.current.Status = StatusCompleted
	m.current.Progress = 100
	m.current.Result = nil
	if len(result) > 0 {
		m.current.Result = append(json.RawMessage(nil), result...)
	}
	m.recordLocked(*m.current)
	m.persistLocked()
	out := m.current.clone()
	m.mu.Unlock()

	m.logger.Info("task completed", "task_id", out.ID, "task_type", out.Kind)
	m.emit(events.TaskCompleted, out.ID, out)
	return out, true
}

// FailTask marks the running task failed with errMsg and records it in
// history. The task stays current until ClearTask. It returns false when
// there was no running task to fail.
func (m *Manager) FailTask(errMsg string) (Task, bool) {
	m.mu.Lock()

	if !m.runningLocked("fail") {
		m.mu.Unlock()
		return Task{}, false
	}

	m.current.Status = StatusFailed
	m.current.Error = errMsg
	m.recordLocked(*m.current)
	m.persistLocked()
	out := m.current.clone()
	m.mu.Unlock()

	m.logger.Info("task failed", "task_id", out.ID, "task_type", out.Kind, "task_error", errMsg)
	m.emit(events.TaskFailed, out.ID, out)
	return out, true
}

// ClearTask dismisses the current task. It refuses, returning false, while
// the current task is running.
func (m *Manager) ClearTask() bool {
	m.mu.Lock()

	if m.current != nil && m.current.Status == StatusRunning {
		m.logger.Debug("refusing to clear running task", "task_id", m.current.ID)
		m.mu.Unlock()
		return false
	}

	var clearedID string
	if m.current != nil {
		clearedID = m.current.ID
	}
	m.current = nil
	m.persistLocked()
	m.mu.Unlock()

	if clearedID != "" {
		m.emit(events.TaskCleared, clearedID, nil)
	}
	return true
}

// SaveState merges patch into the workflow snapshot.
func (m *Manager) SaveState(patch SnapshotPatch) {
	m.mu.Lock()
	defer m.mu.Unlock()

	patch.applyTo(&m.state)
	m.persistLocked()
}

// LoadState restores state from the store and returns the full workflow
// snapshot. A missing or unreadable snapshot yields the defaults. A persisted
// current task is restored only while it is still running.
//
// While a previous write has failed, memory is newer than the store: the
// in-memory state is kept and written again instead of being replaced.
func (m *Manager) LoadState() WorkflowSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unsaved {
		m.logger.Warn("store is behind in-memory state, keeping unsaved state")
		m.persistLocked()
		return m.state.clone()
	}

	raw, err := m.store.Read()
	if err != nil {
		if durable.IsNotFound(err) {
			m.state = DefaultSnapshot()
			return m.state.clone()
		}
		// The medium is unreachable; keep whatever is in memory.
		m.logger.Error("failed to load state", "operation", durable.OpRead, "error", err)
		return m.state.clone()
	}

	current, state, history, err := decodeState(raw)
	if err != nil {
		m.logger.Warn("discarding unreadable state snapshot",
			"error", err,
			"snapshot_bytes", len(raw))
		m.state = DefaultSnapshot()
		return m.state.clone()
	}

	m.state = state
	m.history = m.boundHistory(history)
	if current != nil && current.Status == StatusRunning {
		restored := current.clone()
		m.current = &restored
		m.logger.Info("resumed running task",
			"task_id", restored.ID,
			"task_type", restored.Kind,
			"progress", restored.Progress)
	}

	return m.state.clone()
}

// ClearState resets the workflow snapshot, drops the current task whatever
// its status and erases the stored snapshot.
func (m *Manager) ClearState() {
	m.mu.Lock()

	m.state = DefaultSnapshot()
	m.current = nil
	m.unsaved = false
	if err := m.store.Erase(); err != nil {
		m.unsaved = true
		m.logger.Error("failed to erase state", "operation", durable.OpErase, "error", err)
	}
	m.mu.Unlock()

	m.emit(events.StateCleared, "", nil)
}

// CurrentTask returns a copy of the current task, if any.
func (m *Manager) CurrentTask() (Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Task{}, false
	}
	return m.current.clone(), true
}

// Running reports whether the current task is running.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil && m.current.Status == StatusRunning
}

// History returns the finished tasks, newest first.
func (m *Manager) History() []Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Task, len(m.history))
	for i, t := range m.history {
		out[i] = t.clone()
	}
	return out
}

// State returns the workflow snapshot held in memory.
func (m *Manager) State() WorkflowSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// runningLocked reports whether op may mutate the current task. Terminal
// tasks are never transitioned again.
func (m *Manager) runningLocked(op string) bool {
	if m.current == nil {
		m.logger.Debug("no current task, ignoring", "operation", op)
		return false
	}
	if m.current.Status.Terminal() {
		m.logger.Debug("task already finished, ignoring",
			"operation", op,
			"task_id", m.current.ID,
			"status", m.current.Status)
		return false
	}
	return true
}

// recordLocked inserts a copy of task at the head of history.
func (m *Manager) recordLocked(task Task) {
	m.history = append([]Task{task.clone()}, m.history...)
	m.history = m.boundHistory(m.history)
}

func (m *Manager) boundHistory(history []Task) []Task {
	if history == nil {
		return []Task{}
	}
	if len(history) > m.historyLimit {
		history = history[:m.historyLimit]
	}
	out := make([]Task, len(history))
	for i, t := range history {
		out[i] = t.clone()
	}
	return out
}

// persistLocked writes the full state to the store, logging any failure.
func (m *Manager) persistLocked() {
	raw, err := encodeState(m.current, m.state, m.history)
	if err != nil {
		m.unsaved = true
		m.logger.Error("failed to save state", "operation", durable.OpWrite, "error", err)
		return
	}

	m.unsaved = false
	if err := m.store.Write(raw); err != nil {
		m.unsaved = true
		attrs := []any{"operation", durable.OpWrite, "error", err, "snapshot_bytes", len(raw)}
		if errors.Is(err, durable.ErrQuotaExceeded) {
			attrs = append(attrs, "quota_exceeded", true)
		}
		m.logger.Error("failed to save state", attrs...)
	}
}

// emit publishes a lifecycle event. Must be called without holding m.mu so
// handlers may call back into the manager.
func (m *Manager) emit(eventType, taskID string, task any) {
	if m.emitter == nil {
		return
	}

	var payload any
	if t, ok := task.(Task); ok {
		payload = t
	}

	event, err := events.NewTaskEvent(eventType, taskID, payload)
	if err != nil {
		m.logger.Error("failed to build lifecycle event", "event_type", eventType, "error", err)
		return
	}
	if err := m.emitter.EmitEvent(context.Background(), event); err != nil {
		m.logger.Warn("lifecycle event handler failed",
			"event_type", eventType,
			"task_id", taskID,
			"error", err)
	}
}
