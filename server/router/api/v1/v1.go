// Package v1 exposes the HTTP API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gatherly/gatherly/internal/profile"
	"github.com/gatherly/gatherly/plugin/webhook"
	"github.com/gatherly/gatherly/server/auth"
	"github.com/gatherly/gatherly/server/middleware"
	"github.com/gatherly/gatherly/server/service/event"
	"github.com/gatherly/gatherly/store"
)

// APIV1Service aggregates the v1 route handlers.
type APIV1Service struct {
	Store   *store.Store
	Profile *profile.Profile
	Secret  string

	authenticator *auth.Authenticator
	eventService  event.Service
	dispatcher    *webhook.Dispatcher
}

// NewAPIV1Service creates the v1 API service.
func NewAPIV1Service(store *store.Store, profile *profile.Profile, secret string) *APIV1Service {
	return &APIV1Service{
		Store:         store,
		Profile:       profile,
		Secret:        secret,
		authenticator: auth.NewAuthenticator(store, secret),
		eventService:  event.NewService(store, profile),
		dispatcher:    webhook.NewDispatcher(),
	}
}

// Register mounts the v1 routes on the echo instance.
func (s *APIV1Service) Register(e *echo.Echo) {
	rateLimiter := middleware.NewRateLimiter(10, 20)

	g := e.Group("/api/v1", rateLimiter.Middleware())

	// Public routes.
	g.POST("/auth/signup", s.SignUp)
	g.POST("/auth/signin", s.SignIn)
	g.GET("/status", s.GetStatus)

	// Feed routes authenticate via query token for calendar clients.
	g.GET("/users/:username/calendar.ics", s.GetCalendarFeed)
	g.GET("/users/:username/events.rss", s.GetRSSFeed)

	// Authenticated routes.
	authed := g.Group("", s.authMiddleware)
	authed.GET("/auth/me", s.GetCurrentUser)

	authed.POST("/events", s.CreateEvent)
	authed.GET("/events", s.ListEvents)
	authed.GET("/events/:id", s.GetEvent)
	authed.PATCH("/events/:id", s.UpdateEvent)
	authed.DELETE("/events/:id", s.DeleteEvent)

	authed.GET("/occurrences", s.ListOccurrences)
	authed.GET("/occurrences/running", s.ListRunningOccurrences)

	authed.POST("/webhooks", s.CreateWebhook)
	authed.GET("/webhooks", s.ListWebhooks)
	authed.DELETE("/webhooks/:id", s.DeleteWebhook)
}

// GetStatus reports instance health and version.
func (s *APIV1Service) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"version": s.Profile.Version,
		"mode":    s.Profile.Mode,
	})
}

func (s *APIV1Service) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		user, err := s.authenticator.Authenticate(c.Request().Context(), authHeader)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		ctx := auth.SetUserInContext(c.Request().Context(), user)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// currentUser returns the authenticated user set by authMiddleware.
func currentUser(c echo.Context) (*store.User, bool) {
	return auth.UserFromContext(c.Request().Context())
}
