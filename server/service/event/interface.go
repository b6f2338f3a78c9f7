package event

import (
	"context"
	"time"

	"github.com/gatherly/gatherly/store"
)

// Service defines the core business logic interface for event management.
// Routers and the reminder runner call it directly.
type Service interface {
	// CreateEvent creates a new event definition after validation.
	CreateEvent(ctx context.Context, userID int32, create *CreateEventRequest) (*store.Event, error)

	// GetEvent returns an event definition owned by the user.
	GetEvent(ctx context.Context, userID int32, id int32) (*store.Event, error)

	// ListEvents returns the user's event definitions.
	ListEvents(ctx context.Context, userID int32) ([]*store.Event, error)

	// UpdateEvent applies a partial update to an event definition.
	UpdateEvent(ctx context.Context, userID int32, id int32, update *UpdateEventRequest) (*store.Event, error)

	// DeleteEvent deletes an event definition by ID.
	DeleteEvent(ctx context.Context, userID int32, id int32) error

	// FindOccurrences expands the user's events into concrete occurrences
	// whose start instants fall within the inclusive [start, end] window,
	// sorted by start time.
	FindOccurrences(ctx context.Context, userID int32, start, end time.Time) ([]*Occurrence, error)

	// RunningAt returns the occurrences in progress at the given instant.
	RunningAt(ctx context.Context, userID int32, at time.Time) ([]*Occurrence, error)
}

// Occurrence is a concrete occurrence expanded from an event definition.
// Occurrences are computed on demand and never persisted.
type Occurrence struct {
	EventID  int32
	EventUID string

	Title       string
	Description string
	Location    string

	StartTs  int64
	EndTs    int64
	Timezone string

	// IsRecurring indicates the occurrence came from a recurrence rule
	// rather than a one-off definition.
	IsRecurring bool
}

// CreateEventRequest represents the request to create an event definition.
type CreateEventRequest struct {
	Title       string
	Description string
	Location    string
	StartTs     int64
	EndTs       int64
	Timezone    string
	// RecurrenceRule is the JSON rule; nil or empty means a one-off event.
	RecurrenceRule *string
}

// UpdateEventRequest represents the request to update an event definition.
type UpdateEventRequest struct {
	Title          *string
	Description    *string
	Location       *string
	StartTs        *int64
	EndTs          *int64
	Timezone       *string
	RecurrenceRule *string
	RowStatus      *store.RowStatus
}
