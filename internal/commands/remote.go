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
	Register(&PushCmd{})
	Register(&PullCmd{})
}

// PushCmd implements the push command.
type PushCmd struct{}

func (c *PushCmd) Name() string       { return "push" }
func (c *PushCmd) Aliases() []string  { return nil }
func (c *PushCmd) Synopsis() string   { return "Copy the list to Google Tasks" }
func (c *PushCmd) Usage() string      { return "todolist push" }
func (c *PushCmd) NeedsService() bool { return true }
func (c *PushCmd) UsesRemote() bool   { return true }

func (c *PushCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PushCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	remote, list, code := openRemoteList(ctx, cfg, svc, errOut)
	if code != exitcode.Success {
		return code
	}

	entries := todo.DisplayOrder(svc.State().Items)
	tasks := make([]service.RemoteTask, len(entries))
	for i, e := range entries {
		tasks[i] = service.RemoteTask{
			Title:     e.Item.Title,
			Notes:     e.Item.Details,
			Completed: e.Item.Done,
		}
	}

	if err := remote.ReplaceTasks(ctx, list.ID, tasks); err != nil {
		fmt.Fprintf(errOut, "error: remote error: %v\n", err)
		return exitcode.RemoteError
	}
	cfg.Log().Debug("push: done", "list", list.Title, "tasks", len(tasks))

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// PullCmd implements the pull command.
type PullCmd struct{}

func (c *PullCmd) Name() string       { return "pull" }
func (c *PullCmd) Aliases() []string  { return nil }
func (c *PullCmd) Synopsis() string   { return "Replace the list with the Google Tasks copy" }
func (c *PullCmd) Usage() string      { return "todolist pull" }
func (c *PullCmd) NeedsService() bool { return true }
func (c *PullCmd) UsesRemote() bool   { return true }

func (c *PullCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PullCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	remote, list, code := openRemoteList(ctx, cfg, svc, errOut)
	if code != exitcode.Success {
		return code
	}

	tasks, err := remote.ListTasks(ctx, list.ID)
	if err != nil {
		fmt.Fprintf(errOut, "error: remote error: %v\n", err)
		return exitcode.RemoteError
	}
	cfg.Log().Debug("pull: fetched", "list", list.Title, "tasks", len(tasks))

	items := make([]todo.Item, len(tasks))
	for i, t := range tasks {
		items[i] = todo.Item{
			ID:      t.ID,
			Title:   t.Title,
			Details: t.Notes,
			Done:    t.Completed,
		}
	}
	return apply(cfg, svc, todo.LoadState{Items: items}, out, errOut)
}

func openRemoteList(ctx context.Context, cfg *config.Config, svc service.Service, errOut io.Writer) (service.Remote, service.RemoteList, int) {
	remote, err := svc.Remote(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, service.RemoteList{}, exitcode.AuthError
	}

	list, err := remote.FindOrCreateList(ctx, cfg.Remote.List)
	if err != nil {
		fmt.Fprintf(errOut, "error: remote error: %v\n", err)
		return nil, service.RemoteList{}, exitcode.RemoteError
	}
	return remote, list, exitcode.Success
}
