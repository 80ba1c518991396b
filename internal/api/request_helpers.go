package api

import (
	"net/http"

	"github.com/phrazzld/genflow/internal/api/middleware"
	"github.com/phrazzld/genflow/internal/api/shared"
	"github.com/phrazzld/genflow/internal/generate"
)

// managerFor resolves the manager of the authenticated context. It writes a
// 401 and returns false when the request carries no context.
func managerFor(managers Managers, w http.ResponseWriter, r *http.Request) (*generate.Manager, bool) {
	contextID, ok := middleware.GetContextID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Execution context not found")
		return nil, false
	}
	return managers.Manager(contextID), true
}

// decodeAndValidate decodes the JSON body into v and validates it, writing
// the error response itself on failure. An empty body is accepted only when
// optional is set.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}, optional bool) bool {
	shared.LimitBody(w, r)

	decode := shared.DecodeJSON
	if optional {
		decode = shared.DecodeOptionalJSON
	}
	if err := decode(r, v); err != nil {
		respondWithMappedError(w, r, err)
		return false
	}

	if err := shared.ValidateRequest(v); err != nil {
		respondWithMappedError(w, r, err)
		return false
	}
	return true
}

// respondWithMappedError writes err with the status and message chosen by
// MapErrorToStatusCode and GetSafeErrorMessage.
func respondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
