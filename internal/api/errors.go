package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/genflow/internal/api/shared"
	"github.com/phrazzld/genflow/internal/generate"
	"github.com/phrazzld/genflow/internal/service/auth"
)

// MapErrorToStatusCode maps request and service errors to HTTP status codes
// without leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var maxBytesErr *http.MaxBytesError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge

	case errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		errors.As(err, &validationErrs),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, shared.ErrTrailingData),
		errors.Is(err, generate.ErrUnknownKind):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return "Validation error: " + formatValidationErrors(validationErrs)
	}

	switch MapErrorToStatusCode(err) {
	case http.StatusUnauthorized:
		return "Invalid token"
	case http.StatusRequestEntityTooLarge:
		return "Request body too large"
	case http.StatusBadRequest:
		if errors.Is(err, generate.ErrUnknownKind) {
			return "Unknown task kind"
		}
		return "Invalid request format"
	default:
		return "An unexpected error occurred"
	}
}

// formatValidationErrors renders field errors as "field: tag" pairs.
func formatValidationErrors(errs validator.ValidationErrors) string {
	out := ""
	for i, fe := range errs {
		if i > 0 {
			out += "; "
		}
		out += fe.Field() + " failed " + fe.Tag()
		if fe.Param() != "" {
			out += "=" + fe.Param()
		}
	}
	return out
}
