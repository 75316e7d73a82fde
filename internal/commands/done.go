package commands

import (
	"context"
	"flag"
	"io"

	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/service"
	"todolist/internal/todo"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. Running it on a done item reopens it.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string   { return "Toggle an item done or not done" }
func (c *DoneCmd) Usage() string      { return "todolist done <n>" }
func (c *DoneCmd) NeedsService() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	index, ok := resolveArg(svc, args, errOut)
	if !ok {
		return exitcode.UserError
	}
	return apply(cfg, svc, todo.ToggleDone{Index: index}, out, errOut)
}
