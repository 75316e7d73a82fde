package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todolist help" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	writeHelp(out, DefaultRegistry)
	return exitcode.Success
}

// writeHelp prints one section per command group, each command with its
// aliases, synopsis and usage line.
func writeHelp(w io.Writer, r *Registry) {
	fmt.Fprint(w, helpHeader)
	for _, sec := range r.Sections() {
		fmt.Fprintf(w, "\n%s:\n", sec.Group.Title())
		for _, cmd := range sec.Commands {
			label := cmd.Name()
			if aliases := cmd.Aliases(); len(aliases) > 0 {
				label += " (" + strings.Join(aliases, ", ") + ")"
			}
			fmt.Fprintf(w, "  %-16s%s\n", label, cmd.Synopsis())
			fmt.Fprintf(w, "  %-16s%s\n", "", cmd.Usage())
		}
	}
	fmt.Fprint(w, helpFooter)
}

const helpHeader = `Usage:
  todolist                  List all items
  todolist <command> [common flags] [args]
`

const helpFooter = `
Items are numbered as list prints them: open items first, then done items.

Filter expressions see id, title, details and done, e.g.
  todolist list --filter '!done && title contains "milk"'

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
