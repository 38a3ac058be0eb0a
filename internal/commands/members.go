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
	Register(&MembersCmd{})
}

// MembersCmd lists team members.
type MembersCmd struct {
	page int
}

func (c *MembersCmd) Name() string          { return "members" }
func (c *MembersCmd) Aliases() []string     { return []string{"team"} }
func (c *MembersCmd) Synopsis() string      { return "List team members" }
func (c *MembersCmd) Usage() string         { return "taskflow members [--page <n>]" }
func (c *MembersCmd) Requires() Requirement { return NeedsRemote }

func (c *MembersCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.page, "page", 1, "")
}

func (c *MembersCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	limit, offset, err := pageWindow(c.page, service.MemberLimit)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	members := slice.NewMembers(env.Remote, env.Logger)
	members.SetPagination(limit, offset)
	if err := members.Fetch(ctx, service.FetchParams{}); err != nil {
		return reportRemote(errOut, err)
	}

	st := members.State()
	if len(st.Items) == 0 {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "no members")
		}
		return exitcode.Success
	}
	for _, m := range st.Items {
		output.FormatMember(out, m)
	}
	output.FormatPageFooter(out, len(st.Items), st.Pagination.Offset, st.Pagination.Total)
	return exitcode.Success
}
