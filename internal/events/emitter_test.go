package events

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmitEvent_NoHandlers(t *testing.T) {
	emitter := NewInMemoryEventEmitter(discardLogger())
	event, err := NewTaskEvent(TaskStarted, "function_points_1", nil)
	require.NoError(t, err)

	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	assert.Zero(t, emitter.Handlers())
}

func TestEmitEvent_DeliversInOrder(t *testing.T) {
	emitter := NewInMemoryEventEmitter(discardLogger())

	var order []string
	record := func(name string) EventHandler {
		return HandlerFunc(func(ctx context.Context, event *TaskEvent) error {
			order = append(order, name+":"+event.Type)
			return nil
		})
	}
	emitter.RegisterHandler(record("first"))
	emitter.RegisterHandler(record("second"))
	require.Equal(t, 2, emitter.Handlers())

	event, err := NewTaskEvent(TaskCompleted, "function_points_1", nil)
	require.NoError(t, err)
	require.NoError(t, emitter.EmitEvent(context.Background(), event))

	assert.Equal(t, []string{"first:task.completed", "second:task.completed"}, order)
}

func TestEmitEvent_FailingHandlers(t *testing.T) {
	emitter := NewInMemoryEventEmitter(discardLogger())

	errA := errors.New("handler a")
	errB := errors.New("handler b")
	delivered := 0

	emitter.RegisterHandler(HandlerFunc(func(context.Context, *TaskEvent) error { return errA }))
	emitter.RegisterHandler(HandlerFunc(func(context.Context, *TaskEvent) error {
		delivered++
		return nil
	}))
	emitter.RegisterHandler(HandlerFunc(func(context.Context, *TaskEvent) error { return errB }))

	event, err := NewTaskEvent(TaskFailed, "test_cases_1", nil)
	require.NoError(t, err)

	err = emitter.EmitEvent(context.Background(), event)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, 1, delivered, "a failing handler does not stop delivery")
}

func TestEmitEvent_PanickingHandler(t *testing.T) {
	emitter := NewInMemoryEventEmitter(discardLogger())

	delivered := false
	emitter.RegisterHandler(HandlerFunc(func(context.Context, *TaskEvent) error {
		panic("listener bug")
	}))
	emitter.RegisterHandler(HandlerFunc(func(context.Context, *TaskEvent) error {
		delivered = true
		return nil
	}))

	event, err := NewTaskEvent(TaskUpdated, "test_cases_1", nil)
	require.NoError(t, err)

	err = emitter.EmitEvent(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listener bug")
	assert.True(t, delivered)
}

func TestNewInMemoryEventEmitter_NilLogger(t *testing.T) {
	emitter := NewInMemoryEventEmitter(nil)
	emitter.RegisterHandler(NewLogHandler(nil))

	event, err := NewTaskEvent(StateCleared, "", nil)
	require.NoError(t, err)
	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	event, err := NewTaskEvent(TaskCleared, "test_cases_42", nil)
	require.NoError(t, err)

	require.NoError(t, NewLogHandler(logger).HandleEvent(context.Background(), event))

	out := buf.String()
	assert.Contains(t, out, "task lifecycle event")
	assert.Contains(t, out, `"event_type":"task.cleared"`)
	assert.Contains(t, out, `"task_id":"test_cases_42"`)
	assert.Contains(t, out, `"component":"task_activity"`)
}
