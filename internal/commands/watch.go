package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/output"
	"todolist/internal/service"
	"todolist/internal/todo"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd implements the watch command. It prints the list and prints it
// again each time the stored list changes, until interrupted.
type WatchCmd struct{}

func (c *WatchCmd) Name() string       { return "watch" }
func (c *WatchCmd) Aliases() []string  { return nil }
func (c *WatchCmd) Synopsis() string   { return "Print the list on every change" }
func (c *WatchCmd) Usage() string      { return "todolist watch" }
func (c *WatchCmd) NeedsService() bool { return true }
func (c *WatchCmd) StaysOpen() bool    { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	// Coalesces bursts; the latest state is read when rendering.
	changed := make(chan struct{}, 1)
	unsubscribe := svc.Subscribe(func(prev, next todo.State) {
		if todo.Equal(prev.Items, next.Items) && prev.Error == next.Error {
			return
		}
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	cfg.Log().Debug("watch: started")
	renderWatch(out, svc.State(), cfg.Quiet)

	for {
		select {
		case <-ctx.Done():
			cfg.Log().Debug("watch: stopped", "reason", ctx.Err())
			return exitcode.Success
		case <-changed:
			fmt.Fprintln(out)
			renderWatch(out, svc.State(), cfg.Quiet)
		}
	}
}

func renderWatch(w io.Writer, state todo.State, quiet bool) {
	if state.Error {
		output.FormatErrorBanner(w, state.ErrorReason)
	}
	output.FormatList(w, todo.DisplayOrder(state.Items))
	if len(state.Items) == 0 && !quiet {
		fmt.Fprintln(w, "no items found")
	}
}
