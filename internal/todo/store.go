package todo

import "sync"

// Listener observes a dispatch. prev and next are snapshots and must not be
// modified.
type Listener func(prev, next State)

// Store holds the current state and applies actions one at a time.
// It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	state   State
	reducer Reducer

	subsMu sync.RWMutex
	subs   map[int]Listener
	nextID int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithReducer replaces the default reducer.
func WithReducer(r Reducer) StoreOption {
	return func(s *Store) { s.reducer = r }
}

// NewStore creates a store holding initial.
func NewStore(initial State, opts ...StoreOption) *Store {
	s := &Store{
		state: initial,
		subs:  make(map[int]Listener),
	}
	if s.state.Items == nil {
		s.state.Items = []Item{}
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies action and returns the resulting state. Listeners run
// after the state is updated and outside the store lock, so they may
// dispatch themselves.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	prev := s.state
	next := s.reducer.Reduce(prev, action)
	s.state = next
	s.mu.Unlock()

	for _, fn := range s.listeners() {
		fn(prev, next)
	}
	return next
}

// Subscribe registers fn for every subsequent dispatch. The returned func
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) listeners() []Listener {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	if len(s.subs) == 0 {
		return nil
	}
	// Registration order.
	out := make([]Listener, 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
