package storage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// MemoryHub is an in-memory storage origin. Slots created from the same hub
// share values and see each other's writes, the way browser tabs of one origin
// share local storage. Intended for tests and ephemeral sessions.
type MemoryHub struct {
	mu       sync.Mutex
	values   map[string]string
	quota    int
	watchers map[int]memoryWatcher
	nextID   int
}

type memoryWatcher struct {
	writer string
	key    string
	fn     func()
}

// MemoryOption configures a MemoryHub.
type MemoryOption func(*MemoryHub)

// WithMemoryQuota limits the total size of all entries in bytes. 0 means no
// limit.
func WithMemoryQuota(bytes int) MemoryOption {
	return func(h *MemoryHub) { h.quota = bytes }
}

// NewMemoryHub creates an empty hub.
func NewMemoryHub(opts ...MemoryOption) *MemoryHub {
	h := &MemoryHub{
		values:   make(map[string]string),
		watchers: make(map[int]memoryWatcher),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// SetQuota changes the quota. 0 means no limit.
func (h *MemoryHub) SetQuota(bytes int) {
	h.mu.Lock()
	h.quota = bytes
	h.mu.Unlock()
}

// Slot attaches a new slot to the hub.
func (h *MemoryHub) Slot() *MemorySlot {
	return &MemorySlot{hub: h, writer: uuid.NewString()}
}

func (h *MemoryHub) get(key string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.values[key]
	return v, ok
}

func (h *MemoryHub) set(writer, key, value string) error {
	h.mu.Lock()
	if old, ok := h.values[key]; ok && old == value {
		h.mu.Unlock()
		return nil
	}
	if h.quota > 0 {
		total := entrySize(key, value)
		for k, v := range h.values {
			if k != key {
				total += entrySize(k, v)
			}
		}
		if total > h.quota {
			h.mu.Unlock()
			return quotaError(key, entrySize(key, value), h.quota)
		}
	}
	h.values[key] = value

	var notify []func()
	for id := 0; id < h.nextID; id++ {
		w, ok := h.watchers[id]
		if ok && w.key == key && w.writer != writer {
			notify = append(notify, w.fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range notify {
		fn()
	}
	return nil
}

func (h *MemoryHub) watch(writer, key string, fn func()) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.watchers[id] = memoryWatcher{writer: writer, key: key, fn: fn}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.watchers, id)
		h.mu.Unlock()
	}
}

// MemorySlot is a Slot attached to a MemoryHub. Notifications are delivered
// synchronously on the writer's goroutine.
type MemorySlot struct {
	hub    *MemoryHub
	writer string
	closed atomic.Bool

	mu    sync.Mutex
	stops []func()
}

var _ Slot = (*MemorySlot)(nil)

// Get implements Slot.
func (s *MemorySlot) Get(_ context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, ErrClosed
	}
	v, ok := s.hub.get(key)
	return v, ok, nil
}

// Set implements Slot.
func (s *MemorySlot) Set(_ context.Context, key, value string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.hub.set(s.writer, key, value)
}

// Watch implements Slot.
func (s *MemorySlot) Watch(ctx context.Context, key string, fn func()) (func(), error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	unregister := s.hub.watch(s.writer, key, fn)
	var once sync.Once
	stop := func() { once.Do(unregister) }
	context.AfterFunc(ctx, stop)

	s.mu.Lock()
	s.stops = append(s.stops, stop)
	s.mu.Unlock()
	return stop, nil
}

// Writer implements Slot.
func (s *MemorySlot) Writer() string { return s.writer }

// Close implements Slot.
func (s *MemorySlot) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.mu.Lock()
	stops := s.stops
	s.stops = nil
	s.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
	return nil
}
