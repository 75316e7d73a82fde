package service

import (
	"context"
	"errors"
)

// ErrNotLoggedIn is returned when the remote needs credentials that are not
// stored yet.
var ErrNotLoggedIn = errors.New("not logged in (run: todolist login)")

// RemoteList is a task list on the remote backend.
type RemoteList struct {
	ID    string
	Title string
}

// RemoteTask is a task on the remote backend.
type RemoteTask struct {
	ID        string
	Title     string
	Notes     string
	Completed bool
}

// Remote mirrors the local list to a task backend.
type Remote interface {
	// FindOrCreateList returns the list titled title (case-insensitive,
	// trimmed), creating it when none exists.
	FindOrCreateList(ctx context.Context, title string) (RemoteList, error)

	// ListTasks returns every task of a list, completed ones included, in
	// list order.
	ListTasks(ctx context.Context, listID string) ([]RemoteTask, error)

	// ReplaceTasks deletes every task of a list and inserts tasks so that the
	// list reads in the given order.
	ReplaceTasks(ctx context.Context, listID string, tasks []RemoteTask) error
}
