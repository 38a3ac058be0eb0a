package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/exitcode"
	"taskflow/internal/task"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string                { return "toggle" }
func (c *ToggleCmd) Aliases() []string           { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string            { return "Flip a task between pending and completed" }
func (c *ToggleCmd) Usage() string               { return "taskflow toggle <ref>" }
func (c *ToggleCmd) Requires() Requirement       { return NeedsLocal }
func (c *ToggleCmd) RegisterFlags(*flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	t, err := ResolveTaskRef(env.Tasks.Tasks(), args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	toggled, err := env.Tasks.ToggleStatus(ctx, t.ID)
	if err != nil {
		return reportLocal(errOut, err)
	}

	if !env.Config.Quiet {
		if toggled.Status == task.StatusCompleted {
			fmt.Fprintln(out, "completed")
		} else {
			fmt.Fprintln(out, "pending")
		}
	}
	return exitcode.Success
}
