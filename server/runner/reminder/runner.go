// Package reminder runs the background job that announces imminent
// occurrences to webhook subscribers.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gatherly/gatherly/internal/profile"
	"github.com/gatherly/gatherly/plugin/webhook"
	"github.com/gatherly/gatherly/server/service/event"
	"github.com/gatherly/gatherly/store"
)

const defaultLeadTime = 30 * time.Minute

// Runner expands near-term occurrences on a cron schedule and dispatches a
// reminder webhook for each one, at most once per occurrence.
type Runner struct {
	store        *store.Store
	profile      *profile.Profile
	eventService event.Service
	dispatcher   *webhook.Dispatcher
	cron         *cron.Cron

	mu   sync.Mutex
	sent map[string]time.Time
}

// NewRunner creates a new reminder runner.
func NewRunner(store *store.Store, profile *profile.Profile) *Runner {
	return &Runner{
		store:        store,
		profile:      profile,
		eventService: event.NewService(store, profile),
		dispatcher:   webhook.NewDispatcher(),
		sent:         make(map[string]time.Time),
	}
}

// Run starts the cron schedule. It returns immediately; ticks run on the
// cron's own goroutine until Stop or context cancellation.
func (r *Runner) Run(ctx context.Context) error {
	spec := r.profile.ReminderCron
	if spec == "" {
		spec = "*/5 * * * *"
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		tickCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		r.tick(tickCtx, time.Now().UTC())
	}); err != nil {
		return fmt.Errorf("invalid reminder cron %q: %w", spec, err)
	}
	c.Start()
	r.cron = c

	slog.Info("reminder runner started", "cron", spec, "lead_minutes", r.leadTime()/time.Minute)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()
	return nil
}

// Stop halts the cron schedule, waiting for a running tick to finish.
func (r *Runner) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

func (r *Runner) leadTime() time.Duration {
	if r.profile.ReminderLeadTime > 0 {
		return time.Duration(r.profile.ReminderLeadTime) * time.Minute
	}
	return defaultLeadTime
}

// tick expands every user's occurrences starting within the lead window
// and dispatches reminders for the ones not yet announced.
func (r *Runner) tick(ctx context.Context, now time.Time) {
	users, err := r.store.ListUsers(ctx, &store.FindUser{})
	if err != nil {
		slog.Error("reminder tick failed to list users", "error", err)
		return
	}

	r.expireSent(now)

	for _, user := range users {
		if user.RowStatus == store.Archived {
			continue
		}
		r.remindUser(ctx, user, now)
	}
}

func (r *Runner) remindUser(ctx context.Context, user *store.User, now time.Time) {
	occurrences, err := r.eventService.FindOccurrences(ctx, user.ID, now, now.Add(r.leadTime()))
	if err != nil {
		slog.Error("reminder expansion failed", "user_id", user.ID, "error", err)
		return
	}
	if len(occurrences) == 0 {
		return
	}

	normalStatus := store.Normal
	hooks, err := r.store.ListWebhooks(ctx, &store.FindWebhook{
		CreatorID: &user.ID,
		RowStatus: &normalStatus,
	})
	if err != nil {
		slog.Error("reminder tick failed to list webhooks", "user_id", user.ID, "error", err)
		return
	}
	if len(hooks) == 0 {
		return
	}

	for _, occ := range occurrences {
		key := fmt.Sprintf("%s/%d", occ.EventUID, occ.StartTs)
		if !r.markSent(key, now) {
			continue
		}

		payload := &webhook.Payload{
			ActivityType: "occurrence.reminder",
			CreatorID:    user.ID,
			CreatedTs:    now.Unix(),
			Occurrence: &webhook.OccurrencePayload{
				EventUID: occ.EventUID,
				Title:    occ.Title,
				StartTs:  occ.StartTs,
				EndTs:    occ.EndTs,
			},
		}
		for _, hook := range hooks {
			r.dispatcher.PostAsync(hook.URL, payload)
		}
	}
}

// markSent records the occurrence key, reporting whether it was new.
func (r *Runner) markSent(key string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sent[key]; ok {
		return false
	}
	r.sent[key] = now
	return true
}

// expireSent drops dedupe records older than two lead windows.
func (r *Runner) expireSent(now time.Time) {
	cutoff := now.Add(-2 * r.leadTime())
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, at := range r.sent {
		if at.Before(cutoff) {
			delete(r.sent, key)
		}
	}
}
