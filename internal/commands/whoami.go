package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/exitcode"
	"taskflow/internal/output"
	"taskflow/internal/service"
	"taskflow/internal/slice"
)

func init() {
	Register(&WhoamiCmd{})
	Register(&ProfileCmd{})
}

// WhoamiCmd prints the cached user session.
type WhoamiCmd struct {
	format string
}

func (c *WhoamiCmd) Name() string          { return "whoami" }
func (c *WhoamiCmd) Aliases() []string     { return nil }
func (c *WhoamiCmd) Synopsis() string      { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string         { return "taskflow whoami [--format text|json|yaml]" }
func (c *WhoamiCmd) Requires() Requirement { return NeedsLocal }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", output.FormatText, "")
}

func (c *WhoamiCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	format, err := output.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	users := slice.NewUsers(env.KV, nil, env.Logger)
	if err := users.CheckAuth(ctx); err != nil {
		return reportLocal(errOut, err)
	}
	st := users.State()
	if !st.Authenticated {
		fmt.Fprintln(errOut, "error: not logged in (run: taskflow login)")
		return exitcode.AuthError
	}

	if format != output.FormatText {
		if err := output.Render(out, format, st.User); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.LocalError
		}
		return exitcode.Success
	}
	output.FormatUser(out, *st.User)
	return exitcode.Success
}

// ProfileCmd updates the signed-in user's profile on the remote.
type ProfileCmd struct {
	name  string
	email string
}

func (c *ProfileCmd) Name() string          { return "profile" }
func (c *ProfileCmd) Aliases() []string     { return nil }
func (c *ProfileCmd) Synopsis() string      { return "Update the signed-in user's profile" }
func (c *ProfileCmd) Usage() string         { return "taskflow profile [--name <n>] [--email <e>]" }
func (c *ProfileCmd) Requires() Requirement { return NeedsLocal | NeedsRemote }

func (c *ProfileCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.email, "email", "", "")
}

func (c *ProfileCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	users := slice.NewUsers(env.KV, env.Remote, env.Logger)
	if err := users.CheckAuth(ctx); err != nil {
		return reportLocal(errOut, err)
	}
	st := users.State()
	if !st.Authenticated {
		fmt.Fprintln(errOut, "error: not logged in (run: taskflow login)")
		return exitcode.AuthError
	}

	if c.name == "" && c.email == "" {
		output.FormatUser(out, *st.User)
		return exitcode.Success
	}

	updated, err := users.UpdateProfile(ctx, service.User{
		ID:    st.User.ID,
		Name:  c.name,
		Email: c.email,
	})
	if err != nil {
		return reportRemote(errOut, err)
	}

	if !env.Config.Quiet {
		output.FormatUser(out, updated)
	}
	return exitcode.Success
}
