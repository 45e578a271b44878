// Package progress broadcasts workflow status events for observability.
// Delivery is fire-and-forget: a dropped event must never desynchronize the
// workflow state the store holds, so emit errors are logged and swallowed.
package progress

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the progress notifications the engine emits.
type EventType string

const (
	StepStarted      EventType = "step_started"
	StepProgress     EventType = "step_progress"
	AwaitingApproval EventType = "awaiting_approval"
	StepCompleted    EventType = "step_completed"
	WorkflowComplete EventType = "workflow_complete"
	WorkflowError    EventType = "error"
)

// Event is one typed progress notification keyed by workflow id.
type Event struct {
	WorkflowID uuid.UUID              `json:"workflowId"`
	Type       EventType              `json:"type"`
	Step       string                 `json:"step,omitempty"`
	Detail     map[string]interface{} `json:"detail,omitempty"`
	TS         time.Time              `json:"ts"`
}

// Emitter delivers events to the progress sink.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// NopEmitter discards everything; used when no broker is configured.
type NopEmitter struct{}

func (NopEmitter) Emit(ctx context.Context, ev Event) {}

// MemoryEmitter records events for tests.
type MemoryEmitter struct {
	events []Event
}

func NewMemoryEmitter() *MemoryEmitter {
	return &MemoryEmitter{}
}

func (m *MemoryEmitter) Emit(ctx context.Context, ev Event) {
	m.events = append(m.events, ev)
}

// Events returns everything emitted so far, in order.
func (m *MemoryEmitter) Events() []Event {
	return append([]Event(nil), m.events...)
}

// Types returns just the event types, in order. Handy for assertions.
func (m *MemoryEmitter) Types() []EventType {
	types := make([]EventType, len(m.events))
	for i, ev := range m.events {
		types[i] = ev.Type
	}
	return types
}
