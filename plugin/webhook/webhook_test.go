package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherPost(t *testing.T) {
	var received Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher()
	err := d.Post(context.Background(), server.URL, &Payload{
		ActivityType: "event.created",
		CreatorID:    1,
		Event:        &EventPayload{UID: "abc", Title: "standup"},
	})
	require.NoError(t, err)
	assert.Equal(t, "event.created", received.ActivityType)
	assert.Equal(t, "abc", received.Event.UID)
}

func TestDispatcherPostFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	d := NewDispatcher()
	err := d.Post(context.Background(), server.URL, &Payload{ActivityType: "event.created"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
