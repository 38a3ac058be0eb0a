// Package app wires the HTTP server.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskflow/internal/config"
	"taskflow/internal/delivery/http/v1"
	"taskflow/internal/logging"
)

// NewRouter builds the gin engine serving the v1 API.
func NewRouter(env string, handler v1.Handler) *gin.Engine {
	if env != logging.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(handler.HandleRequestLogger)
	router.Use(gin.Recovery())
	v1.RegisterRoutes(router, handler)
	return router
}

// ListenAndServeHTTP serves handler until ctx is cancelled, then shuts the
// server down within cfg.ShutdownTimeout.
func ListenAndServeHTTP(ctx context.Context, cfg config.HTTPSettings, handler http.Handler, logger zerolog.Logger) error {
	server := &http.Server{
		Addr:    net.JoinHostPort(cfg.Host, cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("host", cfg.Host).
			Str("port", cfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().
				Err(err).
				Msg("failed to listen and serve http")
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().
		Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		return err
	}
	logger.Info().Msg("shut down http server")
	return nil
}
