// Package query filters to-do items with expr-lang boolean expressions.
//
// Expressions see one item at a time through the fields id, title, details
// and done, for example:
//
//	!done && title contains "milk"
//	details != "" or title startsWith "Call"
package query

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"todolist/internal/todo"
)

// env is the variable set an expression is evaluated against.
type env struct {
	ID      string `expr:"id"`
	Title   string `expr:"title"`
	Details string `expr:"details"`
	Done    bool   `expr:"done"`
}

// Filter is a compiled expression.
type Filter struct {
	source  string
	program *vm.Program
}

// Compile parses and type-checks src. The expression must evaluate to a
// boolean.
func Compile(src string) (*Filter, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("empty filter")
	}
	program, err := expr.Compile(src, expr.Env(env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return &Filter{source: src, program: program}, nil
}

// String returns the source expression.
func (f *Filter) String() string { return f.source }

// Match reports whether item satisfies the filter.
func (f *Filter) Match(item todo.Item) (bool, error) {
	out, err := expr.Run(f.program, env{
		ID:      item.ID,
		Title:   item.Title,
		Details: item.Details,
		Done:    item.Done,
	})
	if err != nil {
		return false, fmt.Errorf("filter %q: %w", f.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Select returns the entries whose items satisfy the filter, keeping their
// order.
func (f *Filter) Select(entries []todo.Entry) ([]todo.Entry, error) {
	out := make([]todo.Entry, 0, len(entries))
	for _, e := range entries {
		ok, err := f.Match(e.Item)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}
