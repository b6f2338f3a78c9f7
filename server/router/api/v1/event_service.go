package v1

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gatherly/gatherly/plugin/webhook"
	"github.com/gatherly/gatherly/server/service/event"
	"github.com/gatherly/gatherly/store"
)

// EventResponse is the API view of an event definition.
type EventResponse struct {
	ID             int32   `json:"id"`
	UID            string  `json:"uid"`
	RowStatus      string  `json:"rowStatus"`
	CreatedTs      int64   `json:"createdTs"`
	UpdatedTs      int64   `json:"updatedTs"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Location       string  `json:"location"`
	StartTs        int64   `json:"startTs"`
	EndTs          int64   `json:"endTs"`
	Timezone       string  `json:"timezone"`
	RecurrenceRule *string `json:"recurrenceRule,omitempty"`
}

// CreateEventRequest is the request body for event creation.
type CreateEventRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Location       string  `json:"location"`
	StartTs        int64   `json:"startTs"`
	EndTs          int64   `json:"endTs"`
	Timezone       string  `json:"timezone"`
	RecurrenceRule *string `json:"recurrenceRule"`
}

// UpdateEventRequest is the request body for a partial event update.
type UpdateEventRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Location       *string `json:"location"`
	StartTs        *int64  `json:"startTs"`
	EndTs          *int64  `json:"endTs"`
	Timezone       *string `json:"timezone"`
	RecurrenceRule *string `json:"recurrenceRule"`
	RowStatus      *string `json:"rowStatus"`
}

func eventResponseOf(evt *store.Event) *EventResponse {
	return &EventResponse{
		ID:             evt.ID,
		UID:            evt.UID,
		RowStatus:      evt.RowStatus.String(),
		CreatedTs:      evt.CreatedTs,
		UpdatedTs:      evt.UpdatedTs,
		Title:          evt.Title,
		Description:    evt.Description,
		Location:       evt.Location,
		StartTs:        evt.StartTs,
		EndTs:          evt.EndTs,
		Timezone:       evt.Timezone,
		RecurrenceRule: evt.RecurrenceRule,
	}
}

func eventIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "malformed event id")
	}
	return int32(id), nil
}

// CreateEvent creates an event definition.
func (s *APIV1Service) CreateEvent(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := currentUser(c)

	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	created, err := s.eventService.CreateEvent(ctx, user.ID, &event.CreateEventRequest{
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		StartTs:        req.StartTs,
		EndTs:          req.EndTs,
		Timezone:       req.Timezone,
		RecurrenceRule: req.RecurrenceRule,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s.notifyWebhooks(ctx, user.ID, "event.created", created)
	return c.JSON(http.StatusOK, eventResponseOf(created))
}

// ListEvents lists the user's event definitions.
func (s *APIV1Service) ListEvents(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := currentUser(c)

	list, err := s.eventService.ListEvents(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list events")
	}

	response := make([]*EventResponse, 0, len(list))
	for _, evt := range list {
		response = append(response, eventResponseOf(evt))
	}
	return c.JSON(http.StatusOK, response)
}

// GetEvent returns one event definition.
func (s *APIV1Service) GetEvent(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := currentUser(c)

	id, err := eventIDParam(c)
	if err != nil {
		return err
	}

	evt, err := s.eventService.GetEvent(ctx, user.ID, id)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "event not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get event")
	}
	return c.JSON(http.StatusOK, eventResponseOf(evt))
}

// UpdateEvent applies a partial update to an event definition.
func (s *APIV1Service) UpdateEvent(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := currentUser(c)

	id, err := eventIDParam(c)
	if err != nil {
		return err
	}

	var req UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	update := &event.UpdateEventRequest{
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		StartTs:        req.StartTs,
		EndTs:          req.EndTs,
		Timezone:       req.Timezone,
		RecurrenceRule: req.RecurrenceRule,
	}
	if req.RowStatus != nil {
		status := store.RowStatus(*req.RowStatus)
		if status != store.Normal && status != store.Archived {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid row status")
		}
		update.RowStatus = &status
	}

	updated, err := s.eventService.UpdateEvent(ctx, user.ID, id, update)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "event not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s.notifyWebhooks(ctx, user.ID, "event.updated", updated)
	return c.JSON(http.StatusOK, eventResponseOf(updated))
}

// DeleteEvent deletes an event definition.
func (s *APIV1Service) DeleteEvent(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := currentUser(c)

	id, err := eventIDParam(c)
	if err != nil {
		return err
	}

	evt, err := s.eventService.GetEvent(ctx, user.ID, id)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "event not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get event")
	}

	if err := s.eventService.DeleteEvent(ctx, user.ID, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete event")
	}

	s.notifyWebhooks(ctx, user.ID, "event.deleted", evt)
	return c.NoContent(http.StatusNoContent)
}

// notifyWebhooks posts an activity payload to the user's webhooks.
func (s *APIV1Service) notifyWebhooks(ctx context.Context, userID int32, activityType string, evt *store.Event) {
	normalStatus := store.Normal
	hooks, err := s.Store.ListWebhooks(ctx, &store.FindWebhook{
		CreatorID: &userID,
		RowStatus: &normalStatus,
	})
	if err != nil || len(hooks) == 0 {
		return
	}

	payload := &webhook.Payload{
		ActivityType: activityType,
		CreatorID:    userID,
		CreatedTs:    time.Now().Unix(),
		Event: &webhook.EventPayload{
			ID:       evt.ID,
			UID:      evt.UID,
			Title:    evt.Title,
			StartTs:  evt.StartTs,
			EndTs:    evt.EndTs,
			Timezone: evt.Timezone,
		},
	}
	for _, hook := range hooks {
		s.dispatcher.PostAsync(hook.URL, payload)
	}
}
