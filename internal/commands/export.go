package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"taskflow/internal/exitcode"
	"taskflow/internal/output"
	"taskflow/internal/task"
)

func init() {
	Register(&ExportCmd{})
	Register(&ImportCmd{})
}

// ExportCmd writes the local task collection in storage order.
type ExportCmd struct {
	format string
}

func (c *ExportCmd) Name() string          { return "export" }
func (c *ExportCmd) Aliases() []string     { return nil }
func (c *ExportCmd) Synopsis() string      { return "Export local tasks as JSON or YAML" }
func (c *ExportCmd) Usage() string         { return "taskflow export [--format json|yaml]" }
func (c *ExportCmd) Requires() Requirement { return NeedsLocal }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", output.FormatJSON, "")
}

func (c *ExportCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	format, err := output.ParseFormat(c.format)
	if err != nil || format == output.FormatText {
		fmt.Fprintf(errOut, "error: invalid format: %s\n", c.format)
		return exitcode.UserError
	}

	tasks := env.Tasks.Tasks()
	if tasks == nil {
		tasks = []task.Task{}
	}
	if err := output.Render(out, format, tasks); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.LocalError
	}
	return exitcode.Success
}

// ImportCmd appends tasks from an export file. Tasks whose id already exists
// are skipped.
type ImportCmd struct{}

func (c *ImportCmd) Name() string                { return "import" }
func (c *ImportCmd) Aliases() []string           { return nil }
func (c *ImportCmd) Synopsis() string            { return "Import tasks from a JSON or YAML export" }
func (c *ImportCmd) Usage() string               { return "taskflow import <file>" }
func (c *ImportCmd) Requires() Requirement       { return NeedsLocal }
func (c *ImportCmd) RegisterFlags(*flag.FlagSet) {}

func (c *ImportCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: file required")
		return exitcode.UserError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	var tasks []task.Task
	if err := output.Decode(data, &tasks); err != nil {
		fmt.Fprintf(errOut, "error: invalid import file: %v\n", err)
		return exitcode.UserError
	}

	imported, skipped := 0, 0
	for _, t := range tasks {
		if _, err := env.Tasks.Get(t.ID); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, task.ErrNotFound) {
			return reportLocal(errOut, err)
		}
		if err := env.Tasks.Add(ctx, t); err != nil {
			return reportLocal(errOut, err)
		}
		imported++
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "imported %d, skipped %d\n", imported, skipped)
	}
	return exitcode.Success
}
