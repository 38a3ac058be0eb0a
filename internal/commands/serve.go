package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"taskflow/internal/app"
	"taskflow/internal/delivery/http/v1"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	host string
	port string
}

func (c *ServeCmd) Name() string          { return "serve" }
func (c *ServeCmd) Aliases() []string     { return nil }
func (c *ServeCmd) Synopsis() string      { return "Serve the HTTP API" }
func (c *ServeCmd) Usage() string         { return "taskflow serve [--host <h>] [--port <p>]" }
func (c *ServeCmd) Requires() Requirement { return NeedsLocal }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.host, "host", "", "")
	fs.StringVar(&c.port, "port", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	settings := env.Config.Settings
	httpCfg := settings.HTTP
	if c.host != "" {
		httpCfg.Host = c.host
	}
	if c.port != "" {
		httpCfg.Port = c.port
	}

	// The local API works without a remote; remote routes then answer 503.
	var remote service.Service
	if env.Connect != nil {
		svc, err := env.Connect(ctx)
		if err != nil {
			env.Logger.Warn().
				Err(err).
				Str("backend", settings.Backend).
				Msg("remote backend unavailable")
		} else {
			remote = svc
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := v1.New(ctx, env.Logger, env.KV, env.Tasks, remote)
	router := app.NewRouter(settings.Env, handler)
	if err := app.ListenAndServeHTTP(ctx, httpCfg, router, env.Logger); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
