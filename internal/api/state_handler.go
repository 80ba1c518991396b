package api

import (
	"net/http"

	"github.com/phrazzld/genflow/internal/api/shared"
	"github.com/phrazzld/genflow/internal/generate"
)

// StateHandler serves the workflow snapshot of the caller's execution context.
type StateHandler struct {
	managers Managers
}

// NewStateHandler creates a new StateHandler.
func NewStateHandler(managers Managers) *StateHandler {
	return &StateHandler{managers: managers}
}

// LoadState handles GET /api/state. The manager loaded the store when the
// context was first used, so this serves the in-memory snapshot.
func (h *StateHandler) LoadState(w http.ResponseWriter, r *http.Request) {
	m, ok := managerFor(h.managers, w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, m.State())
}

// SaveState handles PATCH /api/state. The body is a partial snapshot; absent
// fields keep their value.
func (h *StateHandler) SaveState(w http.ResponseWriter, r *http.Request) {
	m, ok := managerFor(h.managers, w, r)
	if !ok {
		return
	}

	var patch generate.SnapshotPatch
	if !decodeAndValidate(w, r, &patch, false) {
		return
	}

	m.SaveState(patch)
	shared.RespondWithJSON(w, r, http.StatusOK, m.State())
}

// ClearState handles DELETE /api/state.
func (h *StateHandler) ClearState(w http.ResponseWriter, r *http.Request) {
	m, ok := managerFor(h.managers, w, r)
	if !ok {
		return
	}

	m.ClearState()
	shared.RespondNoContent(w)
}
