package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskpulse/internal/domain"
	"github.com/phrazzld/taskpulse/internal/events"
	"github.com/phrazzld/taskpulse/internal/platform/logger"
	"github.com/phrazzld/taskpulse/internal/store"
)

// Command types accepted from clients.
const CommandTaskUpdate = "task_update"

// Error messages sent back to the client that issued a bad command.
const (
	MsgInvalidJSON    = "Invalid JSON"
	MsgInvalidCommand = "Invalid task_update command"
	MsgUpdateFailed   = "Failed to update task"
)

// FrameHandler processes one inbound frame from a connection.
type FrameHandler interface {
	Handle(ctx context.Context, c *Connection, frame []byte)
}

// StatusUpdater applies a status change and announces it.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, taskID int64, status domain.TaskStatus) (domain.TaskSnapshot, error)
}

type commandEnvelope struct {
	Type string `json:"type"`
}

// TaskUpdateCommand asks for a task's status to change. TaskID only has to be
// present; ids that match no task are resolved by the store like any other
// missing task.
type TaskUpdateCommand struct {
	Type   string `json:"type"`
	TaskID *int64 `json:"task_id" validate:"required"`
	Status string `json:"status" validate:"required,oneof=todo in_progress review completed cancelled"`
}

// CommandHandler dispatches client commands. A bad frame is answered with an
// error event on the same connection and never closes it.
type CommandHandler struct {
	tasks    StatusUpdater
	validate *validator.Validate
	logger   *slog.Logger
}

// Ensure CommandHandler implements FrameHandler interface
var _ FrameHandler = (*CommandHandler)(nil)

// NewCommandHandler creates a CommandHandler that applies status changes through tasks.
func NewCommandHandler(tasks StatusUpdater, logger *slog.Logger) *CommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandHandler{
		tasks:    tasks,
		validate: validator.New(),
		logger:   logger.With("component", "command_handler"),
	}
}

// Handle implements FrameHandler.
func (h *CommandHandler) Handle(ctx context.Context, c *Connection, frame []byte) {
	log := logger.FromContextOrDefault(ctx, h.logger)

	var envelope commandEnvelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		log.Debug("rejected unparseable frame", "error", err)
		h.reply(ctx, c, MsgInvalidJSON)
		return
	}

	switch envelope.Type {
	case CommandTaskUpdate:
		h.handleTaskUpdate(ctx, log, c, frame)
	default:
		log.Debug("ignoring unknown command", "type", envelope.Type)
	}
}

func (h *CommandHandler) handleTaskUpdate(ctx context.Context, log *slog.Logger, c *Connection, frame []byte) {
	var cmd TaskUpdateCommand
	if err := json.Unmarshal(frame, &cmd); err != nil {
		log.Debug("rejected malformed task_update", "error", err)
		h.reply(ctx, c, MsgInvalidCommand)
		return
	}
	if err := h.validate.Struct(cmd); err != nil {
		log.Debug("rejected invalid task_update", "error", err)
		h.reply(ctx, c, MsgInvalidCommand)
		return
	}

	taskID := *cmd.TaskID
	_, err := h.tasks.UpdateStatus(ctx, taskID, domain.TaskStatus(cmd.Status))
	switch {
	case err == nil:
		log.Info("task status updated over websocket",
			"task_id", taskID,
			"status", cmd.Status)
	case errors.Is(err, store.ErrTaskNotFound):
		log.Debug("task_update for missing task ignored", "task_id", taskID)
	default:
		log.Error("failed to apply task_update",
			"task_id", taskID,
			"status", cmd.Status,
			"error", err)
		h.reply(ctx, c, MsgUpdateFailed)
	}
}

func (h *CommandHandler) reply(ctx context.Context, c *Connection, message string) {
	log := logger.FromContextOrDefault(ctx, h.logger)

	frame, err := json.Marshal(events.NewErrorEvent(message))
	if err != nil {
		log.Error("failed to serialize error event", "error", err)
		return
	}
	if err := c.Send(frame); err != nil {
		log.Warn("could not queue error event", "error", err)
	}
}
