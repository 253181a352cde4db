package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse/internal/domain"
)

// Kind is the "type" field of an outbound frame.
type Kind string

// Outbound frame kinds.
const (
	KindTaskStatusUpdate Kind = "task_status_update"
	KindTaskNotification Kind = "task_notification"
	KindError            Kind = "error"
)

// Action labels the CRUD mutation behind a task_notification.
type Action string

// Mutation actions.
const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event is a transient notification built for one broadcast.
// ID and CreatedAt exist for log correlation and are not part of the wire format.
type Event struct {
	ID        uuid.UUID
	Kind      Kind
	Task      domain.TaskSnapshot
	Action    Action
	Message   string
	CreatedAt time.Time
}

func newEvent(kind Kind) *Event {
	return &Event{
		ID:        uuid.New(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}

// NewStatusUpdateEvent builds the event sent when a task status was changed
// over the realtime command protocol.
func NewStatusUpdateEvent(snap domain.TaskSnapshot) *Event {
	e := newEvent(KindTaskStatusUpdate)
	e.Task = snap
	return e
}

// NewNotificationEvent builds the event sent for a CRUD mutation.
func NewNotificationEvent(snap domain.TaskSnapshot, action Action) *Event {
	e := newEvent(KindTaskNotification)
	e.Task = snap
	e.Action = action
	e.Message = fmt.Sprintf("Task '%s' was %s", snap.Title, action)
	return e
}

// NewErrorEvent builds an error frame addressed to a single connection.
func NewErrorEvent(message string) *Event {
	e := newEvent(KindError)
	e.Message = message
	return e
}

type statusUpdateFrame struct {
	Type     Kind                `json:"type"`
	TaskID   int64               `json:"task_id"`
	Status   domain.TaskStatus   `json:"status"`
	TaskData domain.TaskSnapshot `json:"task_data"`
}

type notificationFrame struct {
	Type      Kind               `json:"type"`
	Message   string             `json:"message"`
	TaskID    int64              `json:"task_id"`
	TaskTitle string             `json:"task_title"`
	Status    *domain.TaskStatus `json:"status"`
	Action    Action             `json:"action"`
}

type errorFrame struct {
	Type    Kind   `json:"type"`
	Message string `json:"message"`
}

// MarshalJSON encodes the event in the wire schema of its kind.
// A deleted task has no status, so task_notification frames for deletions
// carry "status": null.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindTaskStatusUpdate:
		return json.Marshal(statusUpdateFrame{
			Type:     e.Kind,
			TaskID:   e.Task.ID,
			Status:   e.Task.Status,
			TaskData: e.Task,
		})
	case KindTaskNotification:
		frame := notificationFrame{
			Type:      e.Kind,
			Message:   e.Message,
			TaskID:    e.Task.ID,
			TaskTitle: e.Task.Title,
			Action:    e.Action,
		}
		if e.Action != ActionDeleted {
			status := e.Task.Status
			frame.Status = &status
		}
		return json.Marshal(frame)
	case KindError:
		return json.Marshal(errorFrame{Type: e.Kind, Message: e.Message})
	}
	return nil, fmt.Errorf("cannot marshal event of unknown kind %q", e.Kind)
}
