package devtools

import "time"

// EventType identifies an inspector event.
type EventType string

const (
	// EventSnapshot carries the state of one store when a client connects.
	EventSnapshot EventType = "snapshot"
	// EventStore is sent when a store is built.
	EventStore EventType = "store"
	// EventMutation is sent after every state change.
	EventMutation EventType = "mutation"
	// EventAction is sent when an action succeeds.
	EventAction EventType = "action"
	// EventActionError is sent when an action fails, panics or rejects.
	EventActionError EventType = "action_error"
	// EventDispose is sent when a store is disposed.
	EventDispose EventType = "dispose"
)

// Event is one message of the event stream.
type Event struct {
	Type   EventType      `json:"type"`
	Store  string         `json:"store"`
	Action string         `json:"action,omitempty"`
	State  map[string]any `json:"state,omitempty"`
	Result any            `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
	Time   time.Time      `json:"time"`
}
