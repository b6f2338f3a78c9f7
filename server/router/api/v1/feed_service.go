package v1

import (
	"fmt"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/gatherly/gatherly/plugin/markdown"
	"github.com/gatherly/gatherly/store"
)

// feedWindow is how far ahead calendar and RSS feeds look.
const feedWindow = 90 * 24 * time.Hour

// feedUser resolves the :username route param and checks the access token
// passed as a query parameter, the way calendar clients authenticate.
func (s *APIV1Service) feedUser(c echo.Context) (*store.User, error) {
	ctx := c.Request().Context()

	token := c.QueryParam("token")
	user, err := s.authenticator.Authenticate(ctx, "Bearer "+token)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "valid token query parameter required")
	}
	if user.Username != c.Param("username") {
		return nil, echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return user, nil
}

// GetCalendarFeed serves the user's occurrences as an iCalendar feed.
func (s *APIV1Service) GetCalendarFeed(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := s.feedUser(c)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	occurrences, err := s.eventService.FindOccurrences(ctx, user.ID, now, now.Add(feedWindow))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to expand occurrences")
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//gatherly//calendar//EN")

	for _, occ := range occurrences {
		// One VEVENT per occurrence; recurrence is pre-expanded so
		// clients never interpret rules themselves.
		uid := fmt.Sprintf("%s-%d@gatherly", occ.EventUID, occ.StartTs)
		evt := cal.AddEvent(uid)
		evt.SetDtStampTime(now)
		evt.SetStartAt(time.Unix(occ.StartTs, 0).UTC())
		evt.SetEndAt(time.Unix(occ.EndTs, 0).UTC())
		evt.SetSummary(occ.Title)
		if occ.Location != "" {
			evt.SetLocation(occ.Location)
		}
		if occ.Description != "" {
			evt.SetDescription(occ.Description)
		}
	}

	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal.Serialize()))
}

// GetRSSFeed serves the user's upcoming occurrences as an RSS feed.
func (s *APIV1Service) GetRSSFeed(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := s.feedUser(c)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	occurrences, err := s.eventService.FindOccurrences(ctx, user.ID, now, now.Add(feedWindow))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to expand occurrences")
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("Upcoming events for %s", user.Username),
		Link:        &feeds.Link{Href: s.Profile.InstanceURL},
		Description: "Expanded occurrences for the next 90 days",
		Created:     now,
	}

	for _, occ := range occurrences {
		description, err := markdown.ToHTML(occ.Description)
		if err != nil {
			description = occ.Description
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          fmt.Sprintf("%s-%d", occ.EventUID, occ.StartTs),
			Title:       occ.Title,
			Link:        &feeds.Link{Href: s.Profile.InstanceURL},
			Description: description,
			Created:     time.Unix(occ.StartTs, 0).UTC(),
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render feed")
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}
