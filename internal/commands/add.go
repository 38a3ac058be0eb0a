package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskflow/internal/exitcode"
	"taskflow/internal/task"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	priority    string
	description string
}

func (c *AddCmd) Name() string          { return "add" }
func (c *AddCmd) Aliases() []string     { return []string{"create"} }
func (c *AddCmd) Synopsis() string      { return "Create a local task" }
func (c *AddCmd) Usage() string         { return "taskflow add [--priority <p>] [--description <d>] <title...>" }
func (c *AddCmd) Requires() Requirement { return NeedsLocal }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.priority, "priority", string(task.PriorityMedium), "")
	fs.StringVar(&c.priority, "p", string(task.PriorityMedium), "")
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	priority, err := task.ParsePriority(c.priority)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if _, err := env.Tasks.Create(ctx, task.Draft{
		Title:       title,
		Description: c.description,
		Priority:    priority,
	}); err != nil {
		return reportLocal(errOut, err)
	}

	ok(env, out)
	return exitcode.Success
}
