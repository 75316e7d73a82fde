// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"todolist/internal/persist"
	"todolist/internal/service"
	"todolist/internal/storage"
	"todolist/internal/todo"
)

// FakeService is a real persist.Session over an in-memory hub, with
// predictable item ids and a FakeRemote behind Remote.
type FakeService struct {
	*persist.Session

	// Hub is the shared storage. Sessions opened with Peer use it too.
	Hub *storage.MemoryHub

	// Mirror is returned by Remote unless RemoteErr is set.
	Mirror *FakeRemote

	// RemoteErr is returned by Remote when set.
	RemoteErr error

	seq *counter
}

// NewFakeService creates a FakeService holding items.
func NewFakeService(items ...todo.Item) *FakeService {
	f := &FakeService{
		Hub:    storage.NewMemoryHub(),
		Mirror: NewFakeRemote(),
		seq:    &counter{},
	}
	f.Session = f.open()
	if len(items) > 0 {
		f.Session.Dispatch(todo.LoadState{Items: items})
	}
	return f
}

// Peer opens another session on the same hub, like a second process.
func (f *FakeService) Peer() *persist.Session {
	return f.open()
}

// SetQuota sets the hub's storage quota in bytes. 0 removes it.
func (f *FakeService) SetQuota(n int) {
	f.Hub.SetQuota(n)
}

// Titles returns the stored item titles in stored order.
func (f *FakeService) Titles() []string {
	items := f.State().Items
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func (f *FakeService) open() *persist.Session {
	s, err := persist.Open(context.Background(), f.Hub.Slot(), persist.Options{
		Reducer: todo.Reducer{NewID: f.seq.next},
		Remote:  f.remote,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		panic(err)
	}
	return s
}

func (f *FakeService) remote(ctx context.Context) (service.Remote, error) {
	if f.RemoteErr != nil {
		return nil, f.RemoteErr
	}
	return f.Mirror, nil
}

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) next() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fmt.Sprintf("id%d", c.n)
}
