package v1

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gatherly/gatherly/store"
)

// WebhookResponse is the API view of a webhook subscription.
type WebhookResponse struct {
	ID        int32  `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	CreatedTs int64  `json:"createdTs"`
}

// CreateWebhookRequest is the request body for webhook creation.
type CreateWebhookRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CreateWebhook registers a webhook subscription for the user.
func (s *APIV1Service) CreateWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := currentUser(c)

	var req CreateWebhookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return echo.NewHTTPError(http.StatusBadRequest, "url must be http or https")
	}

	hook, err := s.Store.CreateWebhook(ctx, &store.Webhook{
		CreatorID: user.ID,
		RowStatus: store.Normal,
		Name:      req.Name,
		URL:       req.URL,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create webhook")
	}
	return c.JSON(http.StatusOK, webhookResponseOf(hook))
}

// ListWebhooks lists the user's webhook subscriptions.
func (s *APIV1Service) ListWebhooks(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := currentUser(c)

	hooks, err := s.Store.ListWebhooks(ctx, &store.FindWebhook{CreatorID: &user.ID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list webhooks")
	}

	response := make([]*WebhookResponse, 0, len(hooks))
	for _, hook := range hooks {
		response = append(response, webhookResponseOf(hook))
	}
	return c.JSON(http.StatusOK, response)
}

// DeleteWebhook removes a webhook subscription.
func (s *APIV1Service) DeleteWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := currentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed webhook id")
	}
	webhookID := int32(id)

	hook, err := s.Store.ListWebhooks(ctx, &store.FindWebhook{ID: &webhookID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to look up webhook")
	}
	if len(hook) == 0 || hook[0].CreatorID != user.ID {
		return echo.NewHTTPError(http.StatusNotFound, "webhook not found")
	}

	if err := s.Store.DeleteWebhook(ctx, &store.DeleteWebhook{ID: webhookID}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete webhook")
	}
	return c.NoContent(http.StatusNoContent)
}

func webhookResponseOf(hook *store.Webhook) *WebhookResponse {
	return &WebhookResponse{
		ID:        hook.ID,
		Name:      hook.Name,
		URL:       hook.URL,
		CreatedTs: hook.CreatedTs,
	}
}
