// Package events re-exports the platform event bus and defines the domain
// events exchanged between the search and audit modules.
package events

import (
	"github.com/google/uuid"

	platformevents "opsdesk_backend/platform/events"
	"opsdesk_backend/platform/logger"
)

// Bus is a type alias to the platform Bus interface.
type Bus = platformevents.Bus

// Handler is a type alias to the platform Handler interface.
type Handler = platformevents.Handler

// HandlerFunc is a type alias to the platform HandlerFunc adapter.
type HandlerFunc = platformevents.HandlerFunc

// Event is a type alias to the platform Event interface.
type Event = platformevents.Event

// BaseEvent is a type alias to the platform BaseEvent.
type BaseEvent = platformevents.BaseEvent

// InMemoryBus is a type alias to the platform InMemoryBus.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// NewBaseEvent creates a base event stamped with the current time.
func NewBaseEvent() BaseEvent {
	return platformevents.NewBaseEvent()
}

const (
	// SearchRejectedName identifies SearchRejected events.
	SearchRejectedName = "search.rejected"
	// CorrectionAppliedName identifies CorrectionApplied events.
	CorrectionAppliedName = "search.correction_applied"
)

// SearchRejected is published when the validation pipeline emits a terminal
// rejection the caller wants audited.
type SearchRejected struct {
	BaseEvent
	UserID     uuid.UUID
	Department string
	ErrorType  string
	Input      string
}

// EventName returns the event identifier.
func (SearchRejected) EventName() string { return SearchRejectedName }

// CorrectionApplied is published when a user accepts a suggested correction.
// Reapplying the same correction publishes a duplicate event; the audit trail
// records every acceptance.
type CorrectionApplied struct {
	BaseEvent
	UserID        uuid.UUID
	Department    string
	OriginalText  string
	CorrectedText string
}

// EventName returns the event identifier.
func (CorrectionApplied) EventName() string { return CorrectionAppliedName }
