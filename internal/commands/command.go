// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
	"taskflow/internal/storage"
	"taskflow/internal/task"
)

// Requirement lists what the dispatcher must prepare before Run.
type Requirement uint8

const (
	// NeedsLocal opens local storage and the task store.
	NeedsLocal Requirement = 1 << iota

	// NeedsRemote connects the configured remote backend.
	NeedsRemote
)

// Connector builds the configured remote backend.
type Connector func(ctx context.Context) (service.Service, error)

// Env is what a command runs against. Fields the command did not require
// are nil.
type Env struct {
	// Config is always provided (config dir, paths, settings).
	Config *config.Config

	Logger zerolog.Logger

	// KV and Tasks are set for NeedsLocal.
	KV    storage.KV
	Tasks *task.Store

	// Remote is set for NeedsRemote.
	Remote service.Service

	// Connect builds a remote on demand, e.g. after login.
	Connect Connector
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Requires reports what the command needs prepared.
	// Commands like help and version return 0.
	Requires() Requirement

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// reportLocal prints a task store failure and returns its exit code.
func reportLocal(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, task.ErrNotFound),
		errors.Is(err, task.ErrInvalid),
		errors.Is(err, task.ErrTitleRequired):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: local storage error: %v\n", err)
	return exitcode.LocalError
}

// reportRemote prints a remote failure and returns its exit code.
func reportRemote(errOut io.Writer, err error) int {
	if errors.Is(err, service.ErrUnsupported) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// ok prints the standard success line unless quiet.
func ok(env *Env, out io.Writer) {
	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
}
