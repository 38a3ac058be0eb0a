package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/exitcode"
	"taskflow/internal/output"
	"taskflow/internal/task"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskflow` (no args) and `taskflow list`.
type ListCmd struct {
	filter string
	sort   string
	format string
}

func (c *ListCmd) Name() string          { return "list" }
func (c *ListCmd) Aliases() []string     { return []string{"ls"} }
func (c *ListCmd) Synopsis() string      { return "List local tasks" }
func (c *ListCmd) Usage() string         { return "taskflow list [--filter <f>] [--sort <s>] [--format text|json|yaml]" }
func (c *ListCmd) Requires() Requirement { return NeedsLocal }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", string(task.FilterAll), "")
	fs.StringVar(&c.filter, "f", string(task.FilterAll), "")
	fs.StringVar(&c.sort, "sort", string(task.SortDate), "")
	fs.StringVar(&c.sort, "s", string(task.SortDate), "")
	fs.StringVar(&c.format, "format", output.FormatText, "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, err := task.ParseFilter(c.filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	key, err := task.ParseSortKey(c.sort)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	format, err := output.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	all := env.Tasks.Tasks()
	view := task.View(all, filter, key)

	if format != output.FormatText {
		if view == nil {
			view = []task.Task{}
		}
		if err := output.Render(out, format, view); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.LocalError
		}
		return exitcode.Success
	}

	if len(view) == 0 {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "no tasks")
		}
		return exitcode.Success
	}

	// Numbers always refer to the default view so they can be passed to
	// toggle and rm whatever filter or sort is shown.
	positions := make(map[string]int, len(all))
	for i, t := range task.View(all, task.FilterAll, task.SortDate) {
		positions[t.ID] = i + 1
	}
	for _, t := range view {
		output.FormatTask(out, positions[t.ID], t)
	}
	return exitcode.Success
}
