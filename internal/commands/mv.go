package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/service"
	"todolist/internal/todo"
)

func init() {
	Register(&MvCmd{})
}

// MvCmd implements the mv command: a drag and drop between two display
// positions. Without a target it is a drop outside the list and changes
// nothing.
type MvCmd struct{}

func (c *MvCmd) Name() string       { return "mv" }
func (c *MvCmd) Aliases() []string  { return []string{"swap"} }
func (c *MvCmd) Synopsis() string   { return "Swap two items" }
func (c *MvCmd) Usage() string      { return "todolist mv <n> [<m>]" }
func (c *MvCmd) NeedsService() bool { return true }

func (c *MvCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MvCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 2 {
		fmt.Fprintln(errOut, "error: too many arguments")
		return exitcode.UserError
	}

	src, ok := resolveArg(svc, args, errOut)
	if !ok {
		return exitcode.UserError
	}
	action := todo.DragAndDrop{Source: todo.Location{Index: src}}

	if len(args) == 2 {
		dst, ok := resolveArg(svc, args[1:], errOut)
		if !ok {
			return exitcode.UserError
		}
		action.Destination = &todo.Location{Index: dst}
	}

	return apply(cfg, svc, action, out, errOut)
}
