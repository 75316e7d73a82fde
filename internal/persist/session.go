// Package persist keeps a todo.Store in sync with a storage.Slot.
//
// A Session loads the stored list when it opens and whenever another session
// writes the slot, and writes the list back after every change to it. Reads
// that fail or do not parse are ignored. Writes that fail raise the store's
// error flag and leave the in-memory state as it is. There is no merging:
// the last writer wins.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"todolist/internal/service"
	"todolist/internal/storage"
	"todolist/internal/todo"
)

// DefaultKey is the slot key holding the serialized item list.
const DefaultKey = "todoListState"

// ErrNoRemote is returned by Remote when no remote is configured.
var ErrNoRemote = errors.New("persist: no remote configured")

// RemoteFactory builds the remote mirror on first use.
type RemoteFactory func(ctx context.Context) (service.Remote, error)

// Options configures Open.
type Options struct {
	// Key is the slot key. Default: DefaultKey.
	Key string

	// Reducer replaces the default reducer.
	Reducer todo.Reducer

	// Remote builds the remote mirror. Optional.
	Remote RemoteFactory

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Session is a todo.Store attached to a storage.Slot. It implements
// service.Service.
type Session struct {
	store  *todo.Store
	slot   storage.Slot
	key    string
	log    *slog.Logger
	remote RemoteFactory

	ctx    context.Context
	cancel context.CancelFunc

	// mu serializes writes and guards lastSynced, the value last loaded from
	// or saved to the slot.
	mu         sync.Mutex
	lastSynced string

	unsubscribe func()
	stopWatch   func()
	closeOnce   sync.Once
	closeErr    error
}

var _ service.Service = (*Session)(nil)

// Open attaches a new store to slot, loads the stored list, and starts
// watching for writes from other sessions until ctx is done or Close is
// called. The session owns slot and closes it.
func Open(ctx context.Context, slot storage.Slot, opts Options) (*Session, error) {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Session{
		store:  todo.NewStore(todo.State{}, todo.WithReducer(opts.Reducer)),
		slot:   slot,
		key:    opts.Key,
		log:    opts.Logger.With("key", opts.Key, "writer", slot.Writer()),
		remote: opts.Remote,
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	// Arm the watch before the first read so nothing written in between is
	// missed.
	stop, err := slot.Watch(s.ctx, s.key, s.reload)
	if err != nil {
		s.cancel()
		return nil, err
	}
	s.stopWatch = stop

	s.load()
	s.unsubscribe = s.store.Subscribe(s.onChange)
	return s, nil
}

// State implements service.Service.
func (s *Session) State() todo.State { return s.store.State() }

// Dispatch implements service.Service.
func (s *Session) Dispatch(action todo.Action) todo.State {
	s.store.Dispatch(action)
	return s.store.State()
}

// Subscribe implements service.Service.
func (s *Session) Subscribe(fn todo.Listener) func() { return s.store.Subscribe(fn) }

// Remote implements service.Service.
func (s *Session) Remote(ctx context.Context) (service.Remote, error) {
	if s.remote == nil {
		return nil, ErrNoRemote
	}
	return s.remote(ctx)
}

// Close implements service.Service.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		if s.stopWatch != nil {
			s.stopWatch()
		}
		s.cancel()
		s.closeErr = s.slot.Close()
	})
	return s.closeErr
}

func (s *Session) reload() {
	s.log.Debug("persist: external change")
	s.load()
}

// load reads the slot and replaces the list. Missing, unreadable and
// unparsable values, and a JSON null, leave the state untouched.
func (s *Session) load() {
	raw, ok, err := s.slot.Get(s.ctx, s.key)
	if err != nil {
		s.log.Debug("persist: read failed", "error", err)
		return
	}
	if !ok || raw == "" {
		return
	}

	var items []todo.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Debug("persist: stored value does not parse", "error", err)
		return
	}
	if items == nil {
		s.log.Debug("persist: stored value is not a list")
		return
	}

	s.mu.Lock()
	s.lastSynced = raw
	s.mu.Unlock()

	s.store.Dispatch(todo.LoadState{Items: items})
}

func (s *Session) onChange(prev, next todo.State) {
	if todo.Equal(prev.Items, next.Items) {
		return
	}
	if err := s.save(); err != nil {
		s.log.Warn("persist: write failed", "error", err)
		s.store.Dispatch(todo.ShowError{Reason: err.Error()})
	}
}

// save writes the current list. It reads the store under s.mu so that the
// last save to run always writes the latest state.
func (s *Session) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(s.store.State().Items)
	if err != nil {
		return err
	}
	raw := string(data)
	if raw == s.lastSynced {
		return nil
	}
	if err := s.slot.Set(s.ctx, s.key, raw); err != nil {
		return err
	}
	s.lastSynced = raw
	s.log.Debug("persist: saved", "bytes", len(raw))
	return nil
}
