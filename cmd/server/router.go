package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskpulse/internal/api"
	apiMiddleware "github.com/phrazzld/taskpulse/internal/api/middleware"
	"github.com/phrazzld/taskpulse/internal/api/shared"
	"github.com/phrazzld/taskpulse/internal/realtime"
)

// WebsocketPath is where clients open their task event stream.
const WebsocketPath = "/ws/tasks/"

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status   string                 `json:"status"`
	Database string                 `json:"database"`
	Realtime realtime.RegistryStats `json:"realtime"`
}

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Route("/tasks", taskHandler.Routes)
	})

	// The websocket handshake authenticates with the token query parameter,
	// so it sits outside the Bearer-protected group.
	r.Method(http.MethodGet, WebsocketPath, app.gateway)
	r.Method(http.MethodGet, "/ws/tasks", app.gateway)

	r.Get("/health", app.handleHealth)

	return r
}

func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Database: "ok",
		Realtime: app.registry.Stats(),
	}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := app.db.PingContext(ctx); err != nil {
		app.logger.Warn("health check database ping failed", "error", err)
		resp.Status = "degraded"
		resp.Database = "unavailable"
		status = http.StatusServiceUnavailable
	}

	shared.RespondWithJSON(w, r, status, resp)
}
