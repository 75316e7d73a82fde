package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"todolist/internal/service"
)

// FakeRemote is an in-memory implementation of service.Remote for testing.
type FakeRemote struct {
	mu     sync.Mutex
	lists  []service.RemoteList
	tasks  map[string][]service.RemoteTask // listID -> tasks
	nextID int

	// Error injection for testing
	FindOrCreateListErr error
	ListTasksErr        error
	ReplaceTasksErr     error
}

// NewFakeRemote creates an empty FakeRemote.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{tasks: make(map[string][]service.RemoteTask)}
}

// AddList adds a list with tasks and returns its id.
func (f *FakeRemote) AddList(title string, tasks ...service.RemoteTask) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id("list")
	f.lists = append(f.lists, service.RemoteList{ID: id, Title: title})
	f.tasks[id] = f.withIDs(tasks)
	return id
}

// Tasks returns the tasks of the list titled title.
func (f *FakeRemote) Tasks(title string) []service.RemoteTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.lists {
		if l.Title == title {
			return append([]service.RemoteTask(nil), f.tasks[l.ID]...)
		}
	}
	return nil
}

// FindOrCreateList implements service.Remote.
func (f *FakeRemote) FindOrCreateList(ctx context.Context, title string) (service.RemoteList, error) {
	if f.FindOrCreateListErr != nil {
		return service.RemoteList{}, f.FindOrCreateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	title = strings.TrimSpace(title)
	for _, l := range f.lists {
		if strings.EqualFold(strings.TrimSpace(l.Title), title) {
			return l, nil
		}
	}
	l := service.RemoteList{ID: f.id("list"), Title: title}
	f.lists = append(f.lists, l)
	f.tasks[l.ID] = nil
	return l, nil
}

// ListTasks implements service.Remote.
func (f *FakeRemote) ListTasks(ctx context.Context, listID string) ([]service.RemoteTask, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tasks, ok := f.tasks[listID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return append([]service.RemoteTask(nil), tasks...), nil
}

// ReplaceTasks implements service.Remote.
func (f *FakeRemote) ReplaceTasks(ctx context.Context, listID string, tasks []service.RemoteTask) error {
	if f.ReplaceTasksErr != nil {
		return f.ReplaceTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[listID]; !ok {
		return fmt.Errorf("not found")
	}
	f.tasks[listID] = f.withIDs(tasks)
	return nil
}

func (f *FakeRemote) withIDs(tasks []service.RemoteTask) []service.RemoteTask {
	out := make([]service.RemoteTask, len(tasks))
	for i, t := range tasks {
		t.ID = f.id("task")
		out[i] = t
	}
	return out
}

func (f *FakeRemote) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}
