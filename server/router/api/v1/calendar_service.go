package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gatherly/gatherly/server/service/event"
	"github.com/gatherly/gatherly/server/timezone"
)

// OccurrenceResponse is the API view of one expanded occurrence.
type OccurrenceResponse struct {
	EventID     int32  `json:"eventId"`
	EventUID    string `json:"eventUid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartTs     int64  `json:"startTs"`
	EndTs       int64  `json:"endTs"`
	Timezone    string `json:"timezone"`
	IsRecurring bool   `json:"isRecurring"`
}

func occurrenceResponsesOf(occurrences []*event.Occurrence) []*OccurrenceResponse {
	response := make([]*OccurrenceResponse, 0, len(occurrences))
	for _, occ := range occurrences {
		response = append(response, &OccurrenceResponse{
			EventID:     occ.EventID,
			EventUID:    occ.EventUID,
			Title:       occ.Title,
			Description: occ.Description,
			Location:    occ.Location,
			StartTs:     occ.StartTs,
			EndTs:       occ.EndTs,
			Timezone:    occ.Timezone,
			IsRecurring: occ.IsRecurring,
		})
	}
	return response
}

// ListOccurrences expands the user's events within the requested window.
// The window is given either as unix timestamps (start, end) or as local
// dates (startDate, endDate) interpreted in the given tz.
func (s *APIV1Service) ListOccurrences(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := currentUser(c)

	start, end, err := windowFromQuery(c)
	if err != nil {
		return err
	}

	occurrences, err := s.eventService.FindOccurrences(ctx, user.ID, start, end)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to expand occurrences")
	}
	return c.JSON(http.StatusOK, occurrenceResponsesOf(occurrences))
}

// ListRunningOccurrences returns occurrences in progress at the `at`
// timestamp, defaulting to now.
func (s *APIV1Service) ListRunningOccurrences(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := currentUser(c)

	at := time.Now()
	if v := c.QueryParam("at"); v != "" {
		ts, err := parseUnixParam(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed at timestamp")
		}
		at = ts
	}

	running, err := s.eventService.RunningAt(ctx, user.ID, at)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to expand occurrences")
	}
	return c.JSON(http.StatusOK, occurrenceResponsesOf(running))
}

func windowFromQuery(c echo.Context) (time.Time, time.Time, error) {
	var zero time.Time

	if startDate := c.QueryParam("startDate"); startDate != "" {
		endDate := c.QueryParam("endDate")
		if endDate == "" {
			return zero, zero, echo.NewHTTPError(http.StatusBadRequest, "endDate is required with startDate")
		}
		tz := c.QueryParam("tz")
		if tz == "" {
			tz = "UTC"
		}
		loc, err := timezone.ParseTimezone(tz)
		if err != nil {
			return zero, zero, echo.NewHTTPError(http.StatusBadRequest, "invalid tz")
		}
		startDay, err := time.ParseInLocation("2006-01-02", startDate, loc)
		if err != nil {
			return zero, zero, echo.NewHTTPError(http.StatusBadRequest, "malformed startDate")
		}
		endDay, err := time.ParseInLocation("2006-01-02", endDate, loc)
		if err != nil {
			return zero, zero, echo.NewHTTPError(http.StatusBadRequest, "malformed endDate")
		}
		// Inclusive local-date window: start of the first day through the
		// end of the last.
		return startDay, endDay.AddDate(0, 0, 1).Add(-time.Second), nil
	}

	startParam, endParam := c.QueryParam("start"), c.QueryParam("end")
	if startParam == "" || endParam == "" {
		return zero, zero, echo.NewHTTPError(http.StatusBadRequest, "start and end are required")
	}
	start, err := parseUnixParam(startParam)
	if err != nil {
		return zero, zero, echo.NewHTTPError(http.StatusBadRequest, "malformed start timestamp")
	}
	end, err := parseUnixParam(endParam)
	if err != nil {
		return zero, zero, echo.NewHTTPError(http.StatusBadRequest, "malformed end timestamp")
	}
	return start, end, nil
}

func parseUnixParam(v string) (time.Time, error) {
	ts, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(ts, 0).UTC(), nil
}
