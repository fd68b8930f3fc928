// Package events carries live orchestration events to the reconciler.
//
// Only task creation triggers a refresh today, but the event shape is
// generic. A [Feed] hands each subscriber its own channel; the channel is
// closed when the subscription context ends.
//
// Two feeds exist: [Bus], an in-process fan-out used by the HTTP webhook and
// tests, and redisfeed.Feed, which listens on a Redis pub/sub channel.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type names an event.
type Type string

const (
	TaskCreated Type = "task_created"
	TaskUpdated Type = "task_updated"
)

// Event is a live notification from the orchestrator.
type Event struct {
	ID     string    `json:"id"`
	Type   Type      `json:"type"`
	Scope  string    `json:"scope,omitempty"`
	TaskID string    `json:"task_id,omitempty"`
	At     time.Time `json:"at,omitzero"`
}

// New returns an event with a fresh ID and the current time.
func New(t Type, scope, taskID string) Event {
	return Event{ID: uuid.NewString(), Type: t, Scope: scope, TaskID: taskID, At: time.Now()}
}

// Matches reports whether the event concerns scope. An empty scope on either
// side matches everything.
func (e Event) Matches(scope string) bool {
	return e.Scope == "" || scope == "" || e.Scope == scope
}

// Decode parses a JSON event. Events without a type are rejected; a missing
// ID is filled in.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return Event{}, fmt.Errorf("decode event: missing type")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return e, nil
}

// Feed delivers events to subscribers.
type Feed interface {
	Subscribe(ctx context.Context) (<-chan Event, error)
}
