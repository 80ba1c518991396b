package api

import (
	"encoding/json"
	"net/http"

	"github.com/phrazzld/genflow/internal/api/shared"
	"github.com/phrazzld/genflow/internal/generate"
)

// Managers resolves the task manager of an execution context.
// *session.Registry satisfies it.
type Managers interface {
	Manager(contextID string) *generate.Manager
}

// StartTaskRequest is the body of POST /api/tasks.
type StartTaskRequest struct {
	Kind      string `json:"kind" validate:"required,oneof=function_points test_cases"`
	ProjectID string `json:"projectId" validate:"required,max=256"`
}

// UpdateTaskRequest is the body of PATCH /api/tasks/current.
type UpdateTaskRequest struct {
	Progress *int   `json:"progress" validate:"required,gte=0,lte=100"`
	Message  string `json:"message" validate:"max=2048"`
}

// CompleteTaskRequest is the optional body of POST /api/tasks/current/complete.
type CompleteTaskRequest struct {
	Result json.RawMessage `json:"result"`
}

// FailTaskRequest is the body of POST /api/tasks/current/fail.
type FailTaskRequest struct {
	Error string `json:"error" validate:"required,max=4096"`
}

// TaskHandler serves the task lifecycle of the caller's execution context.
type TaskHandler struct {
	managers Managers
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(managers Managers) *TaskHandler {
	return &TaskHandler{managers: managers}
}

// manager resolves the manager of the authenticated context, answering 401
// itself when the context is missing.
func (h *TaskHandler) manager(w http.ResponseWriter, r *http.Request) (*generate.Manager, bool) {
	return managerFor(h.managers, w, r)
}

// StartTask handles POST /api/tasks.
func (h *TaskHandler) StartTask(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	var req StartTaskRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}

	kind, err := generate.ParseKind(req.Kind)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	task := m.StartTask(kind, req.ProjectID)
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// GetCurrentTask handles GET /api/tasks/current.
func (h *TaskHandler) GetCurrentTask(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	task, ok := m.CurrentTask()
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "No current task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateTask handles PATCH /api/tasks/current.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}

	task, applied := m.UpdateTask(*req.Progress, req.Message)
	respondWithTaskIfApplied(w, r, task, applied)
}

// CompleteTask handles POST /api/tasks/current/complete.
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	var req CompleteTaskRequest
	if !decodeAndValidate(w, r, &req, true) {
		return
	}

	if string(req.Result) == "null" {
		req.Result = nil
	}
	task, applied := m.CompleteTask(req.Result)
	respondWithTaskIfApplied(w, r, task, applied)
}

// FailTask handles POST /api/tasks/current/fail.
func (h *TaskHandler) FailTask(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	var req FailTaskRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}

	task, applied := m.FailTask(req.Error)
	respondWithTaskIfApplied(w, r, task, applied)
}

// ClearTask handles DELETE /api/tasks/current.
func (h *TaskHandler) ClearTask(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	if !m.ClearTask() {
		shared.RespondWithError(w, r, http.StatusConflict, "Task is still running")
		return
	}
	shared.RespondNoContent(w)
}

// GetHistory handles GET /api/tasks/history.
func (h *TaskHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, m.History())
}

// respondWithTaskIfApplied answers with the transitioned task, or 204 when
// there was no running task and the operation was a no-op.
func respondWithTaskIfApplied(w http.ResponseWriter, r *http.Request, task generate.Task, applied bool) {
	if !applied {
		shared.RespondNoContent(w)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}
