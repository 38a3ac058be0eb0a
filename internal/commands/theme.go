package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/exitcode"
	"taskflow/internal/storage"
)

func init() {
	Register(&ThemeCmd{})
}

// ThemeCmd shows or changes the stored dark mode preference.
type ThemeCmd struct{}

func (c *ThemeCmd) Name() string                { return "theme" }
func (c *ThemeCmd) Aliases() []string           { return nil }
func (c *ThemeCmd) Synopsis() string            { return "Show or set the dark mode preference" }
func (c *ThemeCmd) Usage() string               { return "taskflow theme [dark|light|toggle]" }
func (c *ThemeCmd) Requires() Requirement       { return NeedsLocal }
func (c *ThemeCmd) RegisterFlags(*flag.FlagSet) {}

func (c *ThemeCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	dark, err := storage.DarkMode(ctx, env.KV)
	if err != nil {
		return reportLocal(errOut, err)
	}

	if len(args) > 0 {
		switch args[0] {
		case "dark":
			dark = true
		case "light":
			dark = false
		case "toggle":
			dark = !dark
		default:
			fmt.Fprintf(errOut, "error: invalid theme: %s\n", args[0])
			return exitcode.UserError
		}
		if err := storage.SetDarkMode(ctx, env.KV, dark); err != nil {
			return reportLocal(errOut, err)
		}
	}

	if dark {
		fmt.Fprintln(out, "dark")
	} else {
		fmt.Fprintln(out, "light")
	}
	return exitcode.Success
}
