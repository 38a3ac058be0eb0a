package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
	"taskflow/internal/slice"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
// With the Google Tasks backend it first runs the OAuth flow. It then fetches
// the current user and caches the session locally.
type LoginCmd struct{}

func (c *LoginCmd) Name() string                { return "login" }
func (c *LoginCmd) Aliases() []string           { return []string{"signin"} }
func (c *LoginCmd) Synopsis() string            { return "Sign in to the remote backend" }
func (c *LoginCmd) Usage() string               { return "taskflow login" }
func (c *LoginCmd) Requires() Requirement       { return NeedsLocal }
func (c *LoginCmd) RegisterFlags(*flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	cfg := env.Config

	if cfg.Settings.Backend == config.BackendGoogleTasks {
		err := googleLogin(ctx, cfg, env.Logger, errOut)
		switch {
		case errors.Is(err, errNoOAuthClient):
			printOAuthClientHelp(errOut, cfg)
			return exitcode.AuthError
		case errors.Is(err, errAlreadyAuthed):
			if !cfg.Quiet {
				fmt.Fprintln(out, "already logged in")
			}
			return exitcode.Success
		case err != nil:
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.AuthError
		}
	}

	if env.Connect == nil {
		fmt.Fprintln(errOut, "error: no remote backend configured")
		return exitcode.AuthError
	}
	svc, err := env.Connect(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}

	user, err := svc.CurrentUser(ctx)
	if errors.Is(err, service.ErrUnsupported) {
		// The backend has no user records; the token alone is the session.
		ok(env, out)
		return exitcode.Success
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}

	users := slice.NewUsers(env.KV, svc, env.Logger)
	if err := users.SignIn(ctx, user); err != nil {
		return reportLocal(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "logged in as %s\n", displayName(user))
	}
	return exitcode.Success
}

// displayName picks the most readable identifier of a user.
func displayName(u service.User) string {
	switch {
	case u.Name != "":
		return u.Name
	case u.FirstName != "" || u.LastName != "":
		return joinNonEmpty(u.FirstName, u.LastName)
	case u.Email != "":
		return u.Email
	}
	return string(u.ID)
}

func joinNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}
