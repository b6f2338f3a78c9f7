// Package server assembles the HTTP server and background runners.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/gatherly/gatherly/internal/profile"
	"github.com/gatherly/gatherly/internal/util"
	apiv1 "github.com/gatherly/gatherly/server/router/api/v1"
	"github.com/gatherly/gatherly/server/runner/reminder"
	"github.com/gatherly/gatherly/store"
)

// Server is the gatherly HTTP server.
type Server struct {
	e *echo.Echo

	Profile *profile.Profile
	Store   *store.Store
	Secret  string

	apiV1Service   *apiv1.APIV1Service
	reminderRunner *reminder.Runner
}

// NewServer creates a server wired to the given store.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	e := echo.New()
	e.Debug = profile.IsDev()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			slog.Error("panic recovered", "error", err, "stack", string(stack))
			return err
		},
	}))
	e.Use(echomw.CORS())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status)
			return nil
		},
	}))

	secret := "gatherly"
	if profile.Mode == "prod" {
		var err error
		secret, err = instanceSecret(ctx, store)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load instance secret")
		}
	}

	s := &Server{
		e:       e,
		Profile: profile,
		Store:   store,
		Secret:  secret,
	}

	s.apiV1Service = apiv1.NewAPIV1Service(store, profile, secret)
	s.apiV1Service.Register(e)

	s.reminderRunner = reminder.NewRunner(store, profile)

	return s, nil
}

// Start runs the background runners and begins serving.
func (s *Server) Start(ctx context.Context) error {
	if err := s.reminderRunner.Run(ctx); err != nil {
		return errors.Wrap(err, "failed to start reminder runner")
	}

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server listening", "address", address)
	if err := s.e.Start(address); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "failed to start server")
	}
	return nil
}

// secretSettingName keys the persisted JWT signing secret.
const secretSettingName = "secret-session"

type settingStore interface {
	GetSystemSetting(ctx context.Context, find *store.FindSystemSetting) (*store.SystemSetting, error)
	UpsertSystemSetting(ctx context.Context, upsert *store.SystemSetting) (*store.SystemSetting, error)
}

// instanceSecret returns the persisted signing secret, generating and
// storing one on first start so tokens survive restarts.
func instanceSecret(ctx context.Context, s settingStore) (string, error) {
	setting, err := s.GetSystemSetting(ctx, &store.FindSystemSetting{Name: secretSettingName})
	if err != nil {
		return "", errors.Wrap(err, "failed to get secret setting")
	}
	if setting != nil && setting.Value != "" {
		return setting.Value, nil
	}

	secret := util.GenUUID()
	if _, err := s.UpsertSystemSetting(ctx, &store.SystemSetting{
		Name:  secretSettingName,
		Value: secret,
	}); err != nil {
		return "", errors.Wrap(err, "failed to persist secret setting")
	}
	return secret, nil
}

// Shutdown stops the server and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.e.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	s.reminderRunner.Stop()

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}

	slog.Info("server shutdown complete")
}
