package handlers_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/miwanzo/internal/api/handlers"
	"github.com/hugh/miwanzo/internal/api/middleware"
	"github.com/hugh/miwanzo/internal/auth"
	"github.com/hugh/miwanzo/internal/planner"
	"github.com/hugh/miwanzo/internal/testutil"
)

type envelope[T any] struct {
	Success bool              `json:"success"`
	Data    T                 `json:"data"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupPlannerRouter mounts the work area, section and task handlers behind
// the real auth middleware.
func setupPlannerRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	t.Helper()

	tc := testutil.NewTestContext(t)
	logger := discardLogger()
	authService := auth.NewService(tc.DB, tc.JWTService, logger)
	services := planner.NewServices(tc.DB, logger)

	workAreas := handlers.NewWorkAreaHandler(services.WorkAreas, logger, false)
	sections := handlers.NewSectionHandler(services.Sections, logger, false)
	tasks := handlers.NewTaskHandler(services.Tasks, logger, false)

	r := chi.NewRouter()
	r.Use(middleware.Auth(authService))
	r.Route("/api/work-areas", func(r chi.Router) {
		r.Get("/", workAreas.List)
		r.Post("/", workAreas.Create)
		r.Put("/reorder", workAreas.Reorder)
		r.Get("/{id}", workAreas.Get)
		r.Put("/{id}", workAreas.Update)
		r.Delete("/{id}", workAreas.Delete)
	})
	r.Route("/api/sections", func(r chi.Router) {
		r.Get("/", sections.List)
		r.Post("/", sections.Create)
		r.Put("/reorder", sections.Reorder)
		r.Get("/{id}", sections.Get)
		r.Put("/{id}", sections.Update)
		r.Delete("/{id}", sections.Delete)
	})
	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", tasks.List)
		r.Post("/", tasks.Create)
		r.Put("/reorder", tasks.Reorder)
		r.Get("/{id}", tasks.Get)
		r.Put("/{id}", tasks.Update)
		r.Delete("/{id}", tasks.Delete)
	})

	return r, tc
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, testutil.AuthenticatedRequest(t, method, path, body, token))
	return rr
}
