package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskflow/internal/exitcode"
	"taskflow/internal/output"
	"taskflow/internal/service"
	"taskflow/internal/slice"
)

func init() {
	Register(&RemoteTasksCmd{})
	Register(&RemoteAddCmd{})
	Register(&RemoteUpdateCmd{})
	Register(&RemoteRmCmd{})
}

var (
	taskStatuses    = []string{service.TaskTodo, service.TaskInProgress, service.TaskCompleted}
	taskPriorities  = []string{service.PriorityLow, service.PriorityMedium, service.PriorityHigh}
	projectStatuses = []string{service.ProjectNotStarted, service.ProjectInProgress, service.ProjectCompleted}
)

// canonical matches s case-insensitively against choices. Empty stays empty.
func canonical(kind, s string, choices []string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, c := range choices {
		if strings.EqualFold(c, s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid %s: %s", kind, s)
}

// pageWindow converts a 1-based page number into a slice window.
func pageWindow(page, limit int) (int, int, error) {
	if page < 1 {
		return 0, 0, fmt.Errorf("invalid page number: %d", page)
	}
	return limit, (page - 1) * limit, nil
}

// recordID returns the single id argument of a remote command.
func recordID(args []string) (service.ID, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("id required")
	}
	return service.ID(strings.TrimSpace(args[0])), nil
}

// RemoteTasksCmd lists one page of remote tasks.
type RemoteTasksCmd struct {
	page   int
	status string
	format string
}

func (c *RemoteTasksCmd) Name() string          { return "remote-tasks" }
func (c *RemoteTasksCmd) Aliases() []string     { return []string{"rtasks"} }
func (c *RemoteTasksCmd) Synopsis() string      { return "List remote tasks" }
func (c *RemoteTasksCmd) Usage() string         { return "taskflow remote-tasks [--page <n>] [--status <s>]" }
func (c *RemoteTasksCmd) Requires() Requirement { return NeedsRemote }

func (c *RemoteTasksCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.page, "page", 1, "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.format, "format", output.FormatText, "")
}

func (c *RemoteTasksCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	limit, offset, err := pageWindow(c.page, service.DefaultLimit)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	status, err := canonical("status", c.status, taskStatuses)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	format, err := output.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	tasks := slice.NewTasks(env.Remote, env.Logger)
	tasks.SetPagination(limit, offset)

	var params service.FetchParams
	if status != "" {
		params.Filters = []service.Condition{{Field: "status", Value: status}}
	}
	if err := tasks.Fetch(ctx, params); err != nil {
		return reportRemote(errOut, err)
	}

	st := tasks.State()
	if format != output.FormatText {
		if err := output.Render(out, format, st); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.LocalError
		}
		return exitcode.Success
	}
	if len(st.Items) == 0 {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "no tasks")
		}
		return exitcode.Success
	}
	for _, t := range st.Items {
		output.FormatRemoteTask(out, t)
	}
	output.FormatPageFooter(out, len(st.Items), st.Pagination.Offset, st.Pagination.Total)
	return exitcode.Success
}

// RemoteAddCmd creates a remote task.
type RemoteAddCmd struct {
	priority    string
	status      string
	due         string
	assignee    string
	description string
}

func (c *RemoteAddCmd) Name() string          { return "remote-add" }
func (c *RemoteAddCmd) Aliases() []string     { return nil }
func (c *RemoteAddCmd) Synopsis() string      { return "Create a remote task" }
func (c *RemoteAddCmd) Requires() Requirement { return NeedsRemote }
func (c *RemoteAddCmd) Usage() string {
	return "taskflow remote-add [--priority <p>] [--status <s>] [--due <date>] [--assignee <a>] [--description <d>] <title...>"
}

func (c *RemoteAddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.assignee, "assignee", "", "")
	fs.StringVar(&c.description, "description", "", "")
}

func (c *RemoteAddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	status, err := canonical("status", c.status, taskStatuses)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	priority, err := canonical("priority", c.priority, taskPriorities)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	tasks := slice.NewTasks(env.Remote, env.Logger)
	created, err := tasks.Create(ctx, service.TaskInput{
		Title:       title,
		Description: c.description,
		Status:      status,
		Priority:    priority,
		DueDate:     c.due,
		Assignee:    c.assignee,
	})
	if err != nil {
		return reportRemote(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "created %s\n", created.ID)
	}
	return exitcode.Success
}

// RemoteUpdateCmd patches a remote task.
type RemoteUpdateCmd struct {
	title    string
	status   string
	priority string
}

func (c *RemoteUpdateCmd) Name() string          { return "remote-update" }
func (c *RemoteUpdateCmd) Aliases() []string     { return nil }
func (c *RemoteUpdateCmd) Synopsis() string      { return "Update a remote task" }
func (c *RemoteUpdateCmd) Usage() string         { return "taskflow remote-update [--title <t>] [--status <s>] [--priority <p>] <id>" }
func (c *RemoteUpdateCmd) Requires() Requirement { return NeedsRemote }

func (c *RemoteUpdateCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.title, "title", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
}

func (c *RemoteUpdateCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, err := recordID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	status, err := canonical("status", c.status, taskStatuses)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	priority, err := canonical("priority", c.priority, taskPriorities)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	in := service.TaskInput{Title: strings.TrimSpace(c.title), Status: status, Priority: priority}
	if in == (service.TaskInput{}) {
		fmt.Fprintln(errOut, "error: nothing to update")
		return exitcode.UserError
	}

	tasks := slice.NewTasks(env.Remote, env.Logger)
	if _, err := tasks.Update(ctx, id, in); err != nil {
		return reportRemote(errOut, err)
	}

	ok(env, out)
	return exitcode.Success
}

// RemoteRmCmd deletes a remote task.
type RemoteRmCmd struct{}

func (c *RemoteRmCmd) Name() string                { return "remote-rm" }
func (c *RemoteRmCmd) Aliases() []string           { return nil }
func (c *RemoteRmCmd) Synopsis() string            { return "Delete a remote task" }
func (c *RemoteRmCmd) Usage() string               { return "taskflow remote-rm <id>" }
func (c *RemoteRmCmd) Requires() Requirement       { return NeedsRemote }
func (c *RemoteRmCmd) RegisterFlags(*flag.FlagSet) {}

func (c *RemoteRmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, err := recordID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	tasks := slice.NewTasks(env.Remote, env.Logger)
	if err := tasks.Delete(ctx, id); err != nil {
		return reportRemote(errOut, err)
	}

	ok(env, out)
	return exitcode.Success
}
