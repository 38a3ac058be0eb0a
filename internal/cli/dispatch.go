package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/logging"
	"taskflow/internal/service"
	"taskflow/internal/storage"
	"taskflow/internal/task"
)

// ServiceFactory creates the remote Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (service.Service, error)

// StorageOpener opens the local key/value storage.
type StorageOpener func(cfg *config.Config) (storage.KV, error)

// OpenSQLite is the default StorageOpener. It stores data in the config
// directory.
func OpenSQLite(cfg *config.Config) (storage.KV, error) {
	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	return storage.OpenSQLite(cfg.DBPath())
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
	storage  StorageOpener
}

// NewDispatcher creates a new dispatcher with the given registry, service
// factory and storage opener. A nil opener uses OpenSQLite.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory, opener StorageOpener) *Dispatcher {
	if opener == nil {
		opener = OpenSQLite
	}
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		storage:  opener,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagErrorMessage(err))
		return exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") && positionalArgs[0] != "-" {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: config error: %s\n", err)
		return exitcode.AuthError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	logger, err := logging.New(errOut, logging.Options{
		Env:   cfg.Settings.Env,
		Debug: debug,
		CLI:   true,
	})
	if err != nil {
		fmt.Fprintf(errOut, "error: config error: %s\n", err)
		return exitcode.AuthError
	}
	logger = logger.With().Str("command", cmd.Name()).Logger()

	conn := &connector{factory: d.factory, cfg: cfg, logger: logger}
	defer conn.close()

	env := &commands.Env{
		Config:  cfg,
		Logger:  logger,
		Connect: conn.connect,
	}

	req := cmd.Requires()
	if req&commands.NeedsLocal != 0 {
		kv, err := d.storage(cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: local storage error: %v\n", err)
			return exitcode.LocalError
		}
		defer kv.Close()

		store, err := task.Open(ctx, kv, task.WithLogger(logger))
		if err != nil {
			fmt.Fprintf(errOut, "error: local storage error: %v\n", err)
			return exitcode.LocalError
		}
		env.KV = kv
		env.Tasks = store
	}

	if req&commands.NeedsRemote != 0 {
		svc, err := conn.connect(ctx)
		if err != nil {
			if isAuthError(err) {
				fmt.Fprintf(errOut, "error: auth error: %s\n", err)
				return exitcode.AuthError
			}
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
		env.Remote = svc
	}

	return cmd.Run(ctx, env, positionalArgs, out, errOut)
}

// flagErrorMessage rewrites flag package errors into the CLI's wording.
func flagErrorMessage(err error) string {
	errStr := err.Error()

	// Missing flag value
	if strings.HasPrefix(errStr, "flag needs an argument:") {
		return "flag needs an argument: " + strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
	}

	// Unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		return "unknown flag: " + strings.TrimSpace(strings.TrimPrefix(errStr, "flag provided but not defined:"))
	}

	return errStr
}

// isAuthError reports whether a connection failure is about credentials or
// configuration rather than the backend itself.
func isAuthError(err error) bool {
	msg := err.Error()
	for _, s := range []string{"token", "auth", "not configured", "not logged in", "oauth_client.json"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// connector builds the remote service at most once per command and closes
// it afterwards when the backend holds resources.
type connector struct {
	factory ServiceFactory
	cfg     *config.Config
	logger  zerolog.Logger

	once sync.Once
	svc  service.Service
	err  error
}

func (c *connector) connect(ctx context.Context) (service.Service, error) {
	c.once.Do(func() {
		if c.factory == nil {
			c.err = fmt.Errorf("remote backend not configured")
			return
		}
		c.svc, c.err = c.factory(ctx, c.cfg, c.logger)
	})
	return c.svc, c.err
}

func (c *connector) close() {
	if closer, ok := c.svc.(interface{ Close() }); ok {
		closer.Close()
	}
}
