package generate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// persistedState is the layout of the single snapshot written to the store.
type persistedState struct {
	CurrentTask *Task            `json:"currentTask"`
	SavedState  WorkflowSnapshot `json:"savedState"`
	TaskHistory []Task           `json:"taskHistory"`
}

// storedState mirrors persistedState for decoding; the workflow snapshot is
// kept raw so it can be merged over the defaults.
type storedState struct {
	CurrentTask *Task           `json:"currentTask"`
	SavedState  json.RawMessage `json:"savedState"`
	TaskHistory []Task          `json:"taskHistory"`
}

// encodeState serializes the three pieces of manager state together.
func encodeState(current *Task, state WorkflowSnapshot, history []Task) ([]byte, error) {
	if history == nil {
		history = []Task{}
	}
	raw, err := json.Marshal(persistedState{
		CurrentTask: current,
		SavedState:  state,
		TaskHistory: history,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode state snapshot: %w", err)
	}
	return raw, nil
}

// decodeState parses a stored snapshot. The returned workflow snapshot is the
// stored fields merged over DefaultSnapshot.
func decodeState(raw []byte) (*Task, WorkflowSnapshot, []Task, error) {
	var stored storedState
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, WorkflowSnapshot{}, nil, fmt.Errorf("failed to decode state snapshot: %w", err)
	}

	state := DefaultSnapshot()
	if len(stored.SavedState) > 0 && !bytes.Equal(bytes.TrimSpace(stored.SavedState), []byte("null")) {
		if err := json.Unmarshal(stored.SavedState, &state); err != nil {
			return nil, WorkflowSnapshot{}, nil, fmt.Errorf("failed to decode workflow snapshot: %w", err)
		}
	}
	state.normalize()

	return stored.CurrentTask, state, stored.TaskHistory, nil
}
