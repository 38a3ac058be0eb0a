package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/exitcode"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string                { return "rm" }
func (c *RmCmd) Aliases() []string           { return []string{"delete"} }
func (c *RmCmd) Synopsis() string            { return "Delete a local task" }
func (c *RmCmd) Usage() string               { return "taskflow rm <ref>" }
func (c *RmCmd) Requires() Requirement       { return NeedsLocal }
func (c *RmCmd) RegisterFlags(*flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	t, err := ResolveTaskRef(env.Tasks.Tasks(), args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if _, err := env.Tasks.Delete(ctx, t.ID); err != nil {
		return reportLocal(errOut, err)
	}

	ok(env, out)
	return exitcode.Success
}
