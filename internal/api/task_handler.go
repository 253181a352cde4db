package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskpulse/internal/api/shared"
	"github.com/phrazzld/taskpulse/internal/platform/logger"
	"github.com/phrazzld/taskpulse/internal/service"
)

// TaskHandler handles task CRUD requests. Every successful mutation is
// announced to connected websocket clients by the task service.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// Routes mounts the task endpoints on r.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateTask)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetTask)
		r.Put("/", h.ReplaceTask)
		r.Patch("/", h.PatchTask)
		r.Delete("/", h.DeleteTask)
	})
}

// CreateTask handles POST /api/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), req.toInput(userID))
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("task created", slog.Int64("task_id", task.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	_, taskID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), taskID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ReplaceTask handles PUT /api/tasks/{id} requests.
func (h *TaskHandler) ReplaceTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	_, taskID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	var req ReplaceTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), taskID, req.toInput())
	if err != nil {
		handleError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// PatchTask handles PATCH /api/tasks/{id} requests.
func (h *TaskHandler) PatchTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	_, taskID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	var req PatchTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), taskID, req.toInput())
	if err != nil {
		handleError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	_, taskID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), taskID); err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("task deleted", slog.Int64("task_id", taskID))
	w.WriteHeader(http.StatusNoContent)
}
