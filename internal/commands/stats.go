package commands

import (
	"context"
	"flag"
	"io"

	"taskflow/internal/exitcode"
	"taskflow/internal/output"
)

func init() {
	Register(&StatsCmd{})
}

// StatsCmd prints the local task counts.
type StatsCmd struct{}

func (c *StatsCmd) Name() string                { return "stats" }
func (c *StatsCmd) Aliases() []string           { return nil }
func (c *StatsCmd) Synopsis() string            { return "Show task counts" }
func (c *StatsCmd) Usage() string               { return "taskflow stats" }
func (c *StatsCmd) Requires() Requirement       { return NeedsLocal }
func (c *StatsCmd) RegisterFlags(*flag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	output.FormatCounts(out, env.Tasks.Counts())
	return exitcode.Success
}
