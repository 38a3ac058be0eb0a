// Package backend selects the remote service implementation from settings.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"taskflow/internal/backend/apper"
	"taskflow/internal/backend/googletasks"
	"taskflow/internal/backend/postgres"
	"taskflow/internal/config"
	"taskflow/internal/service"
)

// New connects the backend named by cfg.Settings.Backend.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (service.Service, error) {
	logger = logger.With().Str("backend", cfg.Settings.Backend).Logger()

	var (
		svc service.Service
		err error
	)
	switch cfg.Settings.Backend {
	case config.BackendApper:
		var c *apper.Client
		if c, err = apper.New(ctx, cfg.Settings.Apper, logger); err == nil {
			svc = c
		}
	case config.BackendGoogleTasks:
		if !cfg.HasOAuthClient() {
			return nil, fmt.Errorf("oauth_client.json not found in %s", cfg.Dir)
		}
		if !cfg.HasToken() {
			return nil, errors.New("not logged in (run: taskflow login)")
		}
		var c *googletasks.Client
		if c, err = googletasks.New(ctx, cfg, logger); err == nil {
			svc = c
		}
	case config.BackendPostgres:
		var s *postgres.Store
		if s, err = postgres.Connect(ctx, cfg.Settings.Postgres, logger); err == nil {
			svc = s
		}
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Settings.Backend)
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}
