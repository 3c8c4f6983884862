// Package notify defines the event boundary for observers of task state.
//
// Events are emitted strictly after a successful commit and delivery is
// fire-and-forget: a sink failure is logged and never surfaces to the caller
// or rolls back the state change that produced the event.
package notify

import (
	"log"
	"time"

	"github.com/google/uuid"
)

// Event names emitted by the lifecycle controller and reconciliation engine.
const (
	EventTaskCreated    = "task_created"
	EventTaskStarted    = "task_started"
	EventTaskPaused     = "task_paused"
	EventTaskResumed    = "task_resumed"
	EventTaskCompleted  = "task_completed"
	EventTaskReopened   = "task_reopened"
	EventTaskAssigned   = "task_assigned"
	EventTasksGenerated = "tasks_generated"
)

// Event is the payload delivered to observers.
type Event struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	TaskID      string            `json:"task_id,omitempty"`
	DayID       string            `json:"day_id"`
	ActorID     string            `json:"actor_id,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Status      string            `json:"status,omitempty"`
	Description string            `json:"description,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
}

// NewEvent builds an event with a fresh ID.
func NewEvent(name, dayID, taskID, actorID string, at time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Name:      name,
		TaskID:    taskID,
		DayID:     dayID,
		ActorID:   actorID,
		Timestamp: at,
	}
}

// Notifier delivers events to one observer channel.
type Notifier interface {
	Publish(event Event) error
}

// Broadcaster fans events out to multiple sinks. Sink failures are logged
// and swallowed; Publish never returns an error.
type Broadcaster struct {
	sinks []Notifier
	logf  func(format string, args ...any)
}

// NewBroadcaster creates a broadcaster over the given sinks.
func NewBroadcaster(sinks ...Notifier) *Broadcaster {
	return &Broadcaster{sinks: sinks, logf: log.Printf}
}

// Publish delivers the event to every sink.
func (b *Broadcaster) Publish(event Event) error {
	for _, sink := range b.sinks {
		if err := sink.Publish(event); err != nil {
			b.logf("notify: deliver %s event: %v", event.Name, err)
		}
	}
	return nil
}
