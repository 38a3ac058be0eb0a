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
	Register(&ProjectsCmd{})
	Register(&ProjectAddCmd{})
	Register(&ProjectUpdateCmd{})
	Register(&ProjectRmCmd{})
}

// ProjectsCmd lists one page of remote projects.
type ProjectsCmd struct {
	page     int
	status   string
	format   string
	selectID string
}

func (c *ProjectsCmd) Name() string          { return "projects" }
func (c *ProjectsCmd) Aliases() []string     { return nil }
func (c *ProjectsCmd) Synopsis() string      { return "List projects" }
func (c *ProjectsCmd) Usage() string         { return "taskflow projects [--page <n>] [--status <s>] [--select <id>]" }
func (c *ProjectsCmd) Requires() Requirement { return NeedsRemote }

func (c *ProjectsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.page, "page", 1, "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.format, "format", output.FormatText, "")
	fs.StringVar(&c.selectID, "select", "", "")
}

func (c *ProjectsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	limit, offset, err := pageWindow(c.page, service.DefaultLimit)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	status, err := canonical("status", c.status, projectStatuses)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	format, err := output.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	projects := slice.NewProjects(env.Remote, env.Logger)
	projects.SetPagination(limit, offset)

	var params service.FetchParams
	if status != "" {
		params.Filters = []service.Condition{{Field: "status", Value: status}}
	}
	if err := projects.Fetch(ctx, params); err != nil {
		return reportRemote(errOut, err)
	}
	if c.selectID != "" && !projects.Select(service.ID(c.selectID)) {
		fmt.Fprintf(errOut, "error: project not on this page: %s\n", c.selectID)
		return exitcode.UserError
	}

	st := projects.ProjectState()
	if format != output.FormatText {
		if err := output.Render(out, format, st); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.LocalError
		}
		return exitcode.Success
	}
	if len(st.Items) == 0 {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "no projects")
		}
		return exitcode.Success
	}
	for _, p := range st.Items {
		output.FormatProject(out, p, st.Selected != nil && st.Selected.ID == p.ID)
	}
	output.FormatPageFooter(out, len(st.Items), st.Pagination.Offset, st.Pagination.Total)
	return exitcode.Success
}

// ProjectAddCmd creates a project.
type ProjectAddCmd struct {
	description string
	start       string
	end         string
	status      string
}

func (c *ProjectAddCmd) Name() string          { return "project-add" }
func (c *ProjectAddCmd) Aliases() []string     { return nil }
func (c *ProjectAddCmd) Synopsis() string      { return "Create a project" }
func (c *ProjectAddCmd) Requires() Requirement { return NeedsRemote }
func (c *ProjectAddCmd) Usage() string {
	return "taskflow project-add [--description <d>] [--start <date>] [--end <date>] [--status <s>] <name...>"
}

func (c *ProjectAddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.start, "start", "", "")
	fs.StringVar(&c.end, "end", "", "")
	fs.StringVar(&c.status, "status", "", "")
}

func (c *ProjectAddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: project name required")
		return exitcode.UserError
	}
	status, err := canonical("status", c.status, projectStatuses)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	projects := slice.NewProjects(env.Remote, env.Logger)
	created, err := projects.Create(ctx, service.ProjectInput{
		Name:        name,
		Description: c.description,
		StartDate:   c.start,
		EndDate:     c.end,
		Status:      status,
	})
	if err != nil {
		return reportRemote(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "created %s\n", created.ID)
	}
	return exitcode.Success
}

// ProjectUpdateCmd patches a project.
type ProjectUpdateCmd struct {
	name        string
	description string
	status      string
}

func (c *ProjectUpdateCmd) Name() string          { return "project-update" }
func (c *ProjectUpdateCmd) Aliases() []string     { return nil }
func (c *ProjectUpdateCmd) Synopsis() string      { return "Update a project" }
func (c *ProjectUpdateCmd) Requires() Requirement { return NeedsRemote }
func (c *ProjectUpdateCmd) Usage() string {
	return "taskflow project-update [--name <n>] [--description <d>] [--status <s>] <id>"
}

func (c *ProjectUpdateCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.status, "status", "", "")
}

func (c *ProjectUpdateCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, err := recordID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	status, err := canonical("status", c.status, projectStatuses)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	in := service.ProjectInput{Name: strings.TrimSpace(c.name), Description: c.description, Status: status}
	if in == (service.ProjectInput{}) {
		fmt.Fprintln(errOut, "error: nothing to update")
		return exitcode.UserError
	}

	projects := slice.NewProjects(env.Remote, env.Logger)
	if _, err := projects.Update(ctx, id, in); err != nil {
		return reportRemote(errOut, err)
	}

	ok(env, out)
	return exitcode.Success
}

// ProjectRmCmd deletes a project.
type ProjectRmCmd struct{}

func (c *ProjectRmCmd) Name() string                { return "project-rm" }
func (c *ProjectRmCmd) Aliases() []string           { return nil }
func (c *ProjectRmCmd) Synopsis() string            { return "Delete a project" }
func (c *ProjectRmCmd) Usage() string               { return "taskflow project-rm <id>" }
func (c *ProjectRmCmd) Requires() Requirement       { return NeedsRemote }
func (c *ProjectRmCmd) RegisterFlags(*flag.FlagSet) {}

func (c *ProjectRmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, err := recordID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	projects := slice.NewProjects(env.Remote, env.Logger)
	if err := projects.Delete(ctx, id); err != nil {
		return reportRemote(errOut, err)
	}

	ok(env, out)
	return exitcode.Success
}
