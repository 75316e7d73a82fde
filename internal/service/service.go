// Package service defines the interfaces commands work against.
package service

import (
	"context"

	"todolist/internal/todo"
)

// Service is the local to-do list. Commands never touch storage directly.
type Service interface {
	// State returns the current state.
	State() todo.State

	// Dispatch applies an action and returns the resulting state. Persisting
	// the change happens before Dispatch returns; a failed write is reported
	// through State.Error, not as a return value.
	Dispatch(action todo.Action) todo.State

	// Subscribe registers fn for every state change, including changes loaded
	// from other sessions. The returned func removes it.
	Subscribe(fn todo.Listener) func()

	// Remote returns the remote mirror used by push and pull.
	Remote(ctx context.Context) (Remote, error)

	// Close releases storage and stops watching for external changes.
	Close() error
}
