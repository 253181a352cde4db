package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/taskpulse/internal/domain"
)

// Sender delivers an event to every member of a group. Delivery is
// fire-and-forget; implementations handle and log their own failures.
type Sender interface {
	Send(ctx context.Context, group string, event *Event)
}

// Watcher reacts to committed task mutations by notifying the task's
// recipients. It has no error return: a failed notification never fails
// the mutation that caused it.
type Watcher struct {
	sender Sender
	logger *slog.Logger
}

// NewWatcher creates a Watcher that delivers through sender.
func NewWatcher(sender Sender, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		sender: sender,
		logger: logger.With("component", "mutation_watcher"),
	}
}

// TaskStatusChanged announces a status change made over the realtime command protocol.
func (w *Watcher) TaskStatusChanged(ctx context.Context, snap domain.TaskSnapshot) {
	w.dispatch(ctx, snap, NewStatusUpdateEvent(snap))
}

// TaskSaved announces a task created or updated through the CRUD path.
func (w *Watcher) TaskSaved(ctx context.Context, snap domain.TaskSnapshot, created bool) {
	action := ActionUpdated
	if created {
		action = ActionCreated
	}
	w.dispatch(ctx, snap, NewNotificationEvent(snap, action))
}

// TaskDeleted announces a deletion. snap must be taken before the row was removed.
func (w *Watcher) TaskDeleted(ctx context.Context, snap domain.TaskSnapshot) {
	w.dispatch(ctx, snap, NewNotificationEvent(snap, ActionDeleted))
}

func (w *Watcher) dispatch(ctx context.Context, snap domain.TaskSnapshot, event *Event) {
	groups := RecipientGroups(snap)

	w.logger.DebugContext(ctx, "dispatching task event",
		"event_id", event.ID,
		"event_type", event.Kind,
		"task_id", snap.ID,
		"recipient_count", len(groups))

	if len(groups) == 0 {
		return
	}
	if w.sender == nil {
		w.logger.WarnContext(ctx, "no sender configured for task event",
			"event_id", event.ID,
			"event_type", event.Kind)
		return
	}

	for _, group := range groups {
		w.sender.Send(ctx, group, event)
	}
}
