package store

import (
	"context"
	"time"
)

// Event is the object representing an event definition. A definition may
// carry a recurrence rule; concrete occurrences are never persisted, they
// are expanded on demand.
type Event struct {
	ID        int32
	UID       string
	CreatorID int32
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	Title       string
	Description string
	Location    string

	// StartTs and EndTs are the UTC instants of the reference occurrence.
	// EndTs-StartTs is the duration of every expanded occurrence.
	StartTs int64
	EndTs   int64

	// Timezone is the IANA zone recurrence wall-clock values are
	// interpreted in.
	Timezone string

	// RecurrenceRule is the stored JSON rule (freq/by_weekday/times/until).
	// Nil or empty means a one-off event.
	RecurrenceRule *string
}

// FindEvent is the find condition for event.
type FindEvent struct {
	ID        *int32
	UID       *string
	CreatorID *int32

	RowStatus *RowStatus

	// Pagination
	Limit  *int
	Offset *int
}

// UpdateEvent is the update request for event.
type UpdateEvent struct {
	ID             int32
	UpdatedTs      *int64
	RowStatus      *RowStatus
	Title          *string
	Description    *string
	Location       *string
	StartTs        *int64
	EndTs          *int64
	Timezone       *string
	RecurrenceRule *string
}

// DeleteEvent is the delete request for event.
type DeleteEvent struct {
	ID int32
}

// CreateEvent creates a new event definition.
func (s *Store) CreateEvent(ctx context.Context, create *Event) (*Event, error) {
	return s.driver.CreateEvent(ctx, create)
}

// ListEvents lists event definitions with filter.
func (s *Store) ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error) {
	return s.driver.ListEvents(ctx, find)
}

// GetEvent gets a single event definition.
func (s *Store) GetEvent(ctx context.Context, find *FindEvent) (*Event, error) {
	list, err := s.driver.ListEvents(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateEvent updates an event definition.
func (s *Store) UpdateEvent(ctx context.Context, update *UpdateEvent) error {
	return s.driver.UpdateEvent(ctx, update)
}

// DeleteEvent deletes an event definition.
func (s *Store) DeleteEvent(ctx context.Context, delete *DeleteEvent) error {
	return s.driver.DeleteEvent(ctx, delete)
}

// ParseStartTime parses the event start time to time.Time in UTC.
func (e *Event) ParseStartTime() time.Time {
	return time.Unix(e.StartTs, 0).UTC()
}

// ParseEndTime parses the event end time to time.Time in UTC.
func (e *Event) ParseEndTime() time.Time {
	return time.Unix(e.EndTs, 0).UTC()
}
