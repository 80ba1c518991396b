package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskEvent(t *testing.T) {
	type taskPayload struct {
		ID       string `json:"id"`
		Progress int    `json:"progress"`
	}

	event, err := NewTaskEvent(TaskUpdated, "test_cases_1", taskPayload{ID: "test_cases_1", Progress: 40})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TaskUpdated, event.Type)
	assert.Equal(t, "test_cases_1", event.TaskID)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded taskPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, 40, decoded.Progress)
}

func TestNewTaskEvent_NilPayload(t *testing.T) {
	event, err := NewTaskEvent(StateCleared, "", nil)
	require.NoError(t, err)
	assert.Nil(t, event.Payload)
	assert.Empty(t, event.TaskID)
}

func TestNewTaskEvent_UnencodablePayload(t *testing.T) {
	_, err := NewTaskEvent(TaskStarted, "x", make(chan int))
	assert.Error(t, err)
}

func TestHandlerFunc(t *testing.T) {
	var got *TaskEvent
	handler := HandlerFunc(func(ctx context.Context, event *TaskEvent) error {
		got = event
		return errors.New("boom")
	})

	event, err := NewTaskEvent(TaskFailed, "a", nil)
	require.NoError(t, err)

	err = handler.HandleEvent(context.Background(), event)
	assert.EqualError(t, err, "boom")
	assert.Same(t, event, got)
}
