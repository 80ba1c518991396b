package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	apimiddleware "github.com/phrazzld/genflow/internal/api/middleware"
	"github.com/phrazzld/genflow/internal/api/shared"
	"github.com/phrazzld/genflow/internal/service/auth"
)

// RequestTimeout bounds every request handled by the router.
const RequestTimeout = 30 * time.Second

// NewRouter creates the application router with all routes and middleware.
func NewRouter(managers Managers, jwtService auth.JWTService, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(RequestTimeout))
	r.Use(apimiddleware.NewTraceMiddleware(logger))

	taskHandler := NewTaskHandler(managers)
	stateHandler := NewStateHandler(managers)
	authMiddleware := apimiddleware.NewAuthMiddleware(jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", taskHandler.StartTask)
			r.Get("/history", taskHandler.GetHistory)

			r.Get("/current", taskHandler.GetCurrentTask)
			r.Patch("/current", taskHandler.UpdateTask)
			r.Delete("/current", taskHandler.ClearTask)
			r.Post("/current/complete", taskHandler.CompleteTask)
			r.Post("/current/fail", taskHandler.FailTask)
		})

		r.Get("/state", stateHandler.LoadState)
		r.Patch("/state", stateHandler.SaveState)
		r.Delete("/state", stateHandler.ClearState)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
