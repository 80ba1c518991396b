package generate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the workflow a task belongs to.
type Kind string

// Supported task kinds
const (
	// KindFunctionPoints extracts function points from uploaded documents
	KindFunctionPoints Kind = "function_points"

	// KindTestCases generates test cases from function points
	KindTestCases Kind = "test_cases"
)

// Kinds lists every supported Kind.
var Kinds = []Kind{KindFunctionPoints, KindTestCases}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind converts s to a Kind, rejecting unknown values.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Status represents the lifecycle state of a task
type Status string

// Possible task status values
const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// InitialMessage is the message of a freshly started task.
const InitialMessage = "Initializing..."

// Task is one tracked generation run. JSON field names match the snapshot
// layout written by the browser client.
type Task struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"type"`
	Status     Status          `json:"status"`
	Progress   int             `json:"progress"`
	Message    string          `json:"message"`
	WorkflowID string          `json:"projectId"`
	StartedAt  int64           `json:"startTime"` // unix milliseconds
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// NewTaskID derives a task id from its kind and creation instant.
func NewTaskID(kind Kind, at time.Time) string {
	return string(kind) + "_" + strconv.FormatInt(at.UnixMilli(), 10)
}

// Started returns the creation instant.
func (t Task) Started() time.Time {
	return time.UnixMilli(t.StartedAt)
}

// clone returns a copy that shares no memory with t.
func (t Task) clone() Task {
	if t.Result != nil {
		t.Result = append(json.RawMessage(nil), t.Result...)
	}
	return t
}
