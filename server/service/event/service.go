// Package event provides event definition management and on-demand
// occurrence expansion.
//
// Definitions are stored once; occurrences are computed per query by
// expanding the recurrence rule inside the requested window. Expansion of
// one event never fails a whole query: events with unreadable rules fall
// back to their reference occurrence, events with unresolvable timezones
// are skipped with a warning.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gatherly/gatherly/internal/profile"
	"github.com/gatherly/gatherly/internal/util"
	"github.com/gatherly/gatherly/server/scheduler/recur"
	"github.com/gatherly/gatherly/server/timezone"
	"github.com/gatherly/gatherly/store"
)

// Errors that can be checked with errors.Is.
var (
	// ErrNotFound is returned when the event does not exist or is not
	// visible to the caller.
	ErrNotFound = fmt.Errorf("event not found")
)

type service struct {
	store Store

	defaultTimezone string
	maxPerEvent     int
}

// Store is the interface for store operations needed by the event service.
type Store interface {
	CreateEvent(ctx context.Context, create *store.Event) (*store.Event, error)
	ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error)
	GetEvent(ctx context.Context, find *store.FindEvent) (*store.Event, error)
	UpdateEvent(ctx context.Context, update *store.UpdateEvent) error
	DeleteEvent(ctx context.Context, delete *store.DeleteEvent) error
}

// NewService creates a new event service configured from the profile.
func NewService(store *store.Store, profile *profile.Profile) Service {
	defaultTimezone := DefaultTimezone
	maxPerEvent := MaxOccurrencesPerEvent
	if profile != nil {
		if profile.DefaultTimezone != "" {
			defaultTimezone = profile.DefaultTimezone
		}
		if profile.MaxOccurrences > 0 {
			maxPerEvent = profile.MaxOccurrences
		}
	}
	return newServiceWithStore(store, defaultTimezone, maxPerEvent)
}

func newServiceWithStore(store Store, defaultTimezone string, maxPerEvent int) Service {
	return &service{
		store:           store,
		defaultTimezone: defaultTimezone,
		maxPerEvent:     maxPerEvent,
	}
}

// CreateEvent creates a new event definition with validation.
func (s *service) CreateEvent(ctx context.Context, userID int32, create *CreateEventRequest) (*store.Event, error) {
	if create.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if create.StartTs <= 0 {
		return nil, fmt.Errorf("start_ts must be a positive timestamp")
	}
	if create.EndTs <= create.StartTs {
		return nil, fmt.Errorf("end_ts must be greater than start_ts")
	}

	tz := create.Timezone
	if tz == "" {
		tz = s.defaultTimezone
	}
	if _, err := timezone.ParseTimezone(tz); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	rule := create.RecurrenceRule
	if rule != nil && *rule != "" {
		parsed, err := recur.ParseRuleJSON(*rule)
		if err != nil {
			return nil, fmt.Errorf("invalid recurrence rule: %w", err)
		}
		// Store the canonical encoding so later reads never re-report
		// entries the parser dropped.
		canonical, err := parsed.JSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode recurrence rule: %w", err)
		}
		rule = &canonical
	} else {
		rule = nil
	}

	evt := &store.Event{
		UID:            util.GenUUID(),
		CreatorID:      userID,
		RowStatus:      store.Normal,
		Title:          create.Title,
		Description:    create.Description,
		Location:       create.Location,
		StartTs:        create.StartTs,
		EndTs:          create.EndTs,
		Timezone:       tz,
		RecurrenceRule: rule,
	}

	created, err := s.store.CreateEvent(ctx, evt)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

// GetEvent returns the event owned by the user.
func (s *service) GetEvent(ctx context.Context, userID int32, id int32) (*store.Event, error) {
	evt, err := s.store.GetEvent(ctx, &store.FindEvent{ID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if evt == nil || evt.CreatorID != userID {
		return nil, ErrNotFound
	}
	return evt, nil
}

// ListEvents returns the user's event definitions.
func (s *service) ListEvents(ctx context.Context, userID int32) ([]*store.Event, error) {
	list, err := s.store.ListEvents(ctx, &store.FindEvent{CreatorID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return list, nil
}

// UpdateEvent applies a partial update after re-validating the result.
func (s *service) UpdateEvent(ctx context.Context, userID int32, id int32, update *UpdateEventRequest) (*store.Event, error) {
	evt, err := s.GetEvent(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	// Validate the definition that would result from the update.
	startTs, endTs := evt.StartTs, evt.EndTs
	if update.StartTs != nil {
		startTs = *update.StartTs
	}
	if update.EndTs != nil {
		endTs = *update.EndTs
	}
	if startTs <= 0 {
		return nil, fmt.Errorf("start_ts must be a positive timestamp")
	}
	if endTs <= startTs {
		return nil, fmt.Errorf("end_ts must be greater than start_ts")
	}
	if update.Title != nil && *update.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if update.Timezone != nil {
		if _, err := timezone.ParseTimezone(*update.Timezone); err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", *update.Timezone, err)
		}
	}

	rule := update.RecurrenceRule
	if rule != nil && *rule != "" {
		parsed, err := recur.ParseRuleJSON(*rule)
		if err != nil {
			return nil, fmt.Errorf("invalid recurrence rule: %w", err)
		}
		canonical, err := parsed.JSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode recurrence rule: %w", err)
		}
		rule = &canonical
	}

	now := time.Now().Unix()
	storeUpdate := &store.UpdateEvent{
		ID:             id,
		UpdatedTs:      &now,
		RowStatus:      update.RowStatus,
		Title:          update.Title,
		Description:    update.Description,
		Location:       update.Location,
		StartTs:        update.StartTs,
		EndTs:          update.EndTs,
		Timezone:       update.Timezone,
		RecurrenceRule: rule,
	}
	if err := s.store.UpdateEvent(ctx, storeUpdate); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return s.GetEvent(ctx, userID, id)
}

// DeleteEvent deletes an event definition by ID.
func (s *service) DeleteEvent(ctx context.Context, userID int32, id int32) error {
	if _, err := s.GetEvent(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteEvent(ctx, &store.DeleteEvent{ID: id}); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// FindOccurrences expands the user's events within the inclusive
// [start, end] window.
func (s *service) FindOccurrences(ctx context.Context, userID int32, start, end time.Time) ([]*Occurrence, error) {
	normalStatus := store.Normal
	list, err := s.store.ListEvents(ctx, &store.FindEvent{
		CreatorID: &userID,
		RowStatus: &normalStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	window := recur.Window{Start: start, End: end}

	var occurrences []*Occurrence
	truncated := false
	for _, evt := range list {
		if len(occurrences) >= MaxTotalOccurrences {
			truncated = true
			break
		}

		expanded, err := s.expandEvent(evt, window)
		if err != nil {
			// One bad definition must not fail the whole query.
			slog.Warn("skipping event with unresolvable timezone",
				"event_uid", evt.UID,
				"timezone", evt.Timezone,
				"error", err)
			continue
		}

		for i := range expanded {
			if len(occurrences) >= MaxTotalOccurrences {
				truncated = true
				break
			}
			occurrences = append(occurrences, occurrenceOf(evt, expanded[i]))
		}
	}

	if truncated {
		slog.Warn("occurrence expansion truncated",
			"count", len(occurrences),
			"limit", MaxTotalOccurrences,
			"user_id", userID)
	}

	sort.SliceStable(occurrences, func(i, j int) bool {
		if occurrences[i].StartTs != occurrences[j].StartTs {
			return occurrences[i].StartTs < occurrences[j].StartTs
		}
		return occurrences[i].EventID < occurrences[j].EventID
	})
	return occurrences, nil
}

// RunningAt returns the occurrences in progress at the given instant.
func (s *service) RunningAt(ctx context.Context, userID int32, at time.Time) ([]*Occurrence, error) {
	normalStatus := store.Normal
	list, err := s.store.ListEvents(ctx, &store.FindEvent{
		CreatorID: &userID,
		RowStatus: &normalStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var running []*Occurrence
	for _, evt := range list {
		// Any occurrence still running at `at` must have started within
		// one event duration before it.
		duration := time.Duration(evt.EndTs-evt.StartTs) * time.Second
		if duration <= 0 {
			continue
		}
		window := recur.Window{Start: at.Add(-duration), End: at}

		expanded, err := s.expandEvent(evt, window)
		if err != nil {
			slog.Warn("skipping event with unresolvable timezone",
				"event_uid", evt.UID,
				"timezone", evt.Timezone,
				"error", err)
			continue
		}

		ts := at.Unix()
		for i := range expanded {
			occ := occurrenceOf(evt, expanded[i])
			if occ.StartTs <= ts && ts < occ.EndTs {
				running = append(running, occ)
			}
		}
	}

	sort.SliceStable(running, func(i, j int) bool {
		if running[i].StartTs != running[j].StartTs {
			return running[i].StartTs < running[j].StartTs
		}
		return running[i].EventID < running[j].EventID
	})
	return running, nil
}

// expandEvent turns a stored definition into concrete occurrences within
// the window. A stored rule that fails to parse downgrades the event to a
// one-off.
func (s *service) expandEvent(evt *store.Event, window recur.Window) ([]recur.Occurrence, error) {
	rule := recur.Rule{Frequency: recur.None}
	if evt.RecurrenceRule != nil && *evt.RecurrenceRule != "" {
		parsed, err := recur.ParseRuleJSON(*evt.RecurrenceRule)
		if err != nil {
			slog.Warn("stored recurrence rule failed to parse, treating event as one-off",
				"event_uid", evt.UID,
				"error", err)
		} else {
			rule = *parsed
		}
	}

	return recur.Expand(recur.Event{
		ID:        evt.UID,
		BaseStart: evt.ParseStartTime(),
		BaseEnd:   evt.ParseEndTime(),
		Timezone:  evt.Timezone,
		Rule:      rule,
	}, window, s.maxPerEvent)
}

func occurrenceOf(evt *store.Event, occ recur.Occurrence) *Occurrence {
	return &Occurrence{
		EventID:     evt.ID,
		EventUID:    evt.UID,
		Title:       evt.Title,
		Description: evt.Description,
		Location:    evt.Location,
		StartTs:     occ.Start.Unix(),
		EndTs:       occ.End.Unix(),
		Timezone:    evt.Timezone,
		IsRecurring: evt.RecurrenceRule != nil && *evt.RecurrenceRule != "",
	}
}
