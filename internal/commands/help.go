package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string                { return "help" }
func (c *HelpCmd) Aliases() []string           { return nil }
func (c *HelpCmd) Synopsis() string            { return "Print usage" }
func (c *HelpCmd) Usage() string               { return "taskflow help" }
func (c *HelpCmd) Requires() Requirement       { return 0 }
func (c *HelpCmd) RegisterFlags(*flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskflow                                   List local tasks (newest first)
  taskflow list [--filter <f>] [--sort <s>] [--format text|json|yaml]
  taskflow add [--priority <p>] [--description <d>] <title...>
  taskflow toggle <ref>                      Flip a task between pending and completed (alias: done)
  taskflow rm <ref>
  taskflow stats
  taskflow export [--format json|yaml]
  taskflow import <file>
  taskflow theme [dark|light|toggle]

  taskflow remote-tasks [--page <n>] [--status <s>]
  taskflow remote-add [--priority <p>] [--status <s>] [--due <date>] [--assignee <a>] [--description <d>] <title...>
  taskflow remote-update [--title <t>] [--status <s>] [--priority <p>] <id>
  taskflow remote-rm <id>
  taskflow projects [--page <n>]
  taskflow project-add [--description <d>] [--start <date>] [--end <date>] [--status <s>] <name...>
  taskflow project-update [--name <n>] [--description <d>] [--status <s>] <id>
  taskflow project-rm <id>
  taskflow members [--page <n>]

  taskflow login
  taskflow logout
  taskflow whoami
  taskflow profile [--name <n>] [--email <e>]
  taskflow serve
  taskflow help
  taskflow version

Filters: all, completed, pending, high, medium, low
Sorts:   date, priority, alphabetical
A <ref> is a task number from the default list view or a task id (prefix).

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
