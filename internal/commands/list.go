package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/output"
	"todolist/internal/query"
	"todolist/internal/service"
	"todolist/internal/todo"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command. It also runs for `todolist` with no
// arguments.
type ListCmd struct {
	open   bool
	filter string
}

// SetOpen hides done items (for testing).
func (c *ListCmd) SetOpen(open bool) {
	c.open = open
}

// SetFilter sets the filter expression (for testing).
func (c *ListCmd) SetFilter(expr string) {
	c.filter = expr
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List items" }
func (c *ListCmd) Usage() string      { return "todolist list [--open] [--filter <expr>]" }
func (c *ListCmd) NeedsService() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.open, "open", false, "")
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	var filter *query.Filter
	if c.filter != "" {
		f, err := query.Compile(c.filter)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		filter = f
	}

	shown, err := printList(out, svc.State().Items, c.open, filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if shown == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no items found")
	}
	return exitcode.Success
}

// printList prints items in display order. Hidden items keep their numbers
// so that every number printed can be passed to done, rm and mv.
func printList(w io.Writer, items []todo.Item, open bool, filter *query.Filter) (int, error) {
	shown := 0
	for i, e := range todo.DisplayOrder(items) {
		if open && e.Item.Done {
			continue
		}
		if filter != nil {
			ok, err := filter.Match(e.Item)
			if err != nil {
				return shown, err
			}
			if !ok {
				continue
			}
		}
		output.FormatItem(w, i+1, e.Item)
		shown++
	}
	return shown, nil
}
