package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/phrazzld/taskpulse/internal/events"
)

// Broadcaster fans events out to every member of a group.
type Broadcaster struct {
	registry *Registry
	logger   *slog.Logger
}

// Ensure Broadcaster implements events.Sender interface
var _ events.Sender = (*Broadcaster)(nil)

// NewBroadcaster creates a Broadcaster over registry.
func NewBroadcaster(registry *Registry, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		registry: registry,
		logger:   logger.With("component", "broadcaster"),
	}
}

// Send serializes event once and queues it on each live member of group.
// A member that cannot take the frame is logged and skipped.
func (b *Broadcaster) Send(ctx context.Context, group string, event *events.Event) {
	members := b.registry.MembersOf(group)
	if len(members) == 0 {
		b.logger.DebugContext(ctx, "no connections in group",
			"group", group,
			"event_id", event.ID)
		return
	}

	frame, err := json.Marshal(event)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to serialize event",
			"group", group,
			"event_id", event.ID,
			"event_type", event.Kind,
			"error", err)
		return
	}

	delivered := 0
	for _, c := range members {
		if err := c.Send(frame); err != nil {
			b.logger.WarnContext(ctx, "dropped event for connection",
				"group", group,
				"event_id", event.ID,
				"connection_id", c.ID(),
				"error", err)
			continue
		}
		delivered++
	}

	b.logger.DebugContext(ctx, "event broadcast",
		"group", group,
		"event_id", event.ID,
		"event_type", event.Kind,
		"member_count", len(members),
		"delivered", delivered)
}
