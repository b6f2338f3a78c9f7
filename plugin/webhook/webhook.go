// Package webhook dispatches JSON payloads to subscriber URLs.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

const (
	timeout = 30 * time.Second

	// maxConcurrent bounds in-flight deliveries across all subscribers.
	maxConcurrent = 10
)

// Payload is the request body posted to a webhook URL.
type Payload struct {
	// ActivityType names what happened, e.g. "event.created" or
	// "occurrence.reminder".
	ActivityType string `json:"activityType"`
	CreatorID    int32  `json:"creatorId"`
	CreatedTs    int64  `json:"createdTs"`

	Event      *EventPayload      `json:"event,omitempty"`
	Occurrence *OccurrencePayload `json:"occurrence,omitempty"`
}

// EventPayload describes the event definition a delivery concerns.
type EventPayload struct {
	ID       int32  `json:"id"`
	UID      string `json:"uid"`
	Title    string `json:"title"`
	StartTs  int64  `json:"startTs"`
	EndTs    int64  `json:"endTs"`
	Timezone string `json:"timezone"`
}

// OccurrencePayload describes a single expanded occurrence.
type OccurrencePayload struct {
	EventUID string `json:"eventUid"`
	Title    string `json:"title"`
	StartTs  int64  `json:"startTs"`
	EndTs    int64  `json:"endTs"`
}

// Dispatcher posts payloads to webhook URLs with bounded concurrency.
type Dispatcher struct {
	client *http.Client
	sem    *semaphore.Weighted
}

// NewDispatcher creates a dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		client: &http.Client{Timeout: timeout},
		sem:    semaphore.NewWeighted(maxConcurrent),
	}
}

// Post delivers the payload to url synchronously.
func (d *Dispatcher) Post(ctx context.Context, url string, payload *Payload) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return errors.Wrap(err, "failed to acquire delivery slot")
	}
	defer d.sem.Release(1)

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to post webhook to %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("webhook %s returned status %d", url, resp.StatusCode)
	}
	return nil
}

// PostAsync delivers the payload in the background, logging failures.
func (d *Dispatcher) PostAsync(url string, payload *Payload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := d.Post(ctx, url, payload); err != nil {
			slog.Warn("webhook delivery failed", "url", url, "error", err)
		}
	}()
}
