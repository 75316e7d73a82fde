package commands

import (
	"fmt"
	"io"

	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/service"
	"todolist/internal/todo"
)

// apply dispatches action and reports a failed save. The in-memory change is
// kept either way; a failed save only means this process could not store it.
func apply(cfg *config.Config, svc service.Service, action todo.Action, out, errOut io.Writer) int {
	state := svc.Dispatch(action)
	if state.Error {
		fmt.Fprintf(errOut, "error: storage write failed: %s\n", state.ErrorReason)
		return exitcode.StorageError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// resolveArg parses args[0] as a display number and maps it to a stored
// index, printing the user error on failure.
func resolveArg(svc service.Service, args []string, errOut io.Writer) (int, bool) {
	if len(args) == 0 {
		fmt.Fprintf(errOut, "error: %v\n", ErrItemRefRequired)
		return 0, false
	}
	num, err := ParseItemRef(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 0, false
	}
	index, err := ResolveItem(svc.State().Items, num)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 0, false
	}
	return index, true
}
