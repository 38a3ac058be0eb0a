// Package logging configures the zerolog logger shared by the CLI and the
// HTTP server.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Environments understood by New.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Options control logger construction.
type Options struct {
	// Env selects level and format: local, dev or prod.
	Env string

	// Debug forces debug level regardless of Env.
	Debug bool

	// CLI lowers the level to warn unless Debug is set. CLI output
	// shares the terminal with command results.
	CLI bool
}

func init() {
	zerolog.TimestampFieldName = "timestamp"
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

// New builds a logger writing to w.
func New(w io.Writer, opts Options) (zerolog.Logger, error) {
	level, err := levelFor(opts)
	if err != nil {
		return zerolog.Nop(), err
	}

	if opts.Env == EnvLocal || opts.CLI {
		cw := zerolog.NewConsoleWriter()
		cw.TimeFormat = time.DateTime
		cw.Out = w
		cw.NoColor = opts.CLI
		w = cw
	}

	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if !opts.CLI {
		ctx = ctx.Int("pid", os.Getpid())
	}
	return ctx.Logger(), nil
}

func levelFor(opts Options) (zerolog.Level, error) {
	if opts.Debug {
		return zerolog.DebugLevel, nil
	}
	if opts.CLI {
		return zerolog.WarnLevel, nil
	}
	switch opts.Env {
	case EnvLocal:
		return zerolog.TraceLevel, nil
	case EnvDev:
		return zerolog.DebugLevel, nil
	case EnvProd, "":
		return zerolog.InfoLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown env: %s", opts.Env)
	}
}
