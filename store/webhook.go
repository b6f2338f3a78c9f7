package store

import (
	"context"
)

// Webhook is the object representing a webhook subscription. Event
// mutations and imminent-occurrence reminders are dispatched to its URL.
type Webhook struct {
	ID        int32
	CreatorID int32
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	Name string
	URL  string
}

// FindWebhook is the find condition for webhook.
type FindWebhook struct {
	ID        *int32
	CreatorID *int32
	RowStatus *RowStatus
}

// DeleteWebhook is the delete request for webhook.
type DeleteWebhook struct {
	ID int32
}

// CreateWebhook creates a new webhook.
func (s *Store) CreateWebhook(ctx context.Context, create *Webhook) (*Webhook, error) {
	return s.driver.CreateWebhook(ctx, create)
}

// ListWebhooks lists webhooks with filter.
func (s *Store) ListWebhooks(ctx context.Context, find *FindWebhook) ([]*Webhook, error) {
	return s.driver.ListWebhooks(ctx, find)
}

// DeleteWebhook deletes a webhook.
func (s *Store) DeleteWebhook(ctx context.Context, delete *DeleteWebhook) error {
	return s.driver.DeleteWebhook(ctx, delete)
}
