package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/genflow/internal/api/shared"
	"github.com/phrazzld/genflow/internal/platform/logger"
	"github.com/phrazzld/genflow/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()

	log, buf := logger.GetTestLogger(t)

	var traceID string
	var ctxLogger bool
	handler := NewTraceMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		ctxLogger = logger.FromContextOrDefault(r.Context(), nil) != nil
		logger.FromContext(r.Context()).Info("inside handler")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.NotEmpty(t, traceID)
	assert.True(t, ctxLogger, "a request-scoped logger is installed")

	entries := buf.EntriesWithMessage(t, "inside handler")
	require.Len(t, entries, 1)
	assert.Equal(t, traceID, entries[0]["trace_id"])
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		validate   func(ctx context.Context, token string) (*auth.Claims, error)
		wantStatus int
		wantCtx    string
	}{
		{
			name:   "valid token",
			header: "Bearer good",
			validate: func(_ context.Context, token string) (*auth.Claims, error) {
				return &auth.Claims{ContextID: "ctx-" + token}, nil
			},
			wantStatus: http.StatusOK,
			wantCtx:    "ctx-good",
		},
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "lowercase scheme",
			header: "bearer good",
			validate: func(_ context.Context, token string) (*auth.Claims, error) {
				return &auth.Claims{ContextID: "ctx-" + token}, nil
			},
			wantStatus: http.StatusOK,
			wantCtx:    "ctx-good",
		},
		{
			name:       "token with spaces",
			header:     "Bearer a b",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "scheme only",
			header:     "Bearer",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "expired",
			header: "Bearer old",
			validate: func(context.Context, string) (*auth.Claims, error) {
				return nil, auth.ErrExpiredToken
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "not yet valid",
			header: "Bearer early",
			validate: func(context.Context, string) (*auth.Claims, error) {
				return nil, auth.ErrTokenNotYetValid
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "unexpected failure",
			header: "Bearer x",
			validate: func(context.Context, string) (*auth.Claims, error) {
				return nil, errors.New("keystore offline")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mw := NewAuthMiddleware(&auth.MockJWTService{ValidateTokenFunc: tt.validate})

			var gotCtx string
			handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotCtx, _ = GetContextID(r)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCtx, gotCtx)
		})
	}
}
