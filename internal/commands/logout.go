package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/exitcode"
	"taskflow/internal/slice"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
// It removes the stored OAuth token and the cached user session.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string                { return "logout" }
func (c *LogoutCmd) Aliases() []string           { return nil }
func (c *LogoutCmd) Synopsis() string            { return "Remove stored credentials and session" }
func (c *LogoutCmd) Usage() string               { return "taskflow logout" }
func (c *LogoutCmd) Requires() Requirement       { return NeedsLocal }
func (c *LogoutCmd) RegisterFlags(*flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	cfg := env.Config

	users := slice.NewUsers(env.KV, nil, env.Logger)
	var hadSession bool
	if err := users.CheckAuth(ctx); err != nil {
		// An unreadable session is removed all the same.
		env.Logger.Warn().Err(err).Msg("cached session is unreadable")
		hadSession = true
	} else {
		hadSession = users.State().Authenticated
	}
	hadToken := cfg.HasToken()

	if !hadSession && !hadToken {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if hadToken {
		if err := cfg.RemoveToken(); err != nil {
			fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
			return exitcode.AuthError
		}
	}
	if err := users.Logout(ctx); err != nil {
		return reportLocal(errOut, err)
	}

	ok(env, out)
	return exitcode.Success
}
