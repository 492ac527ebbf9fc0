package state

import "sync"

// Listener receives the snapshot produced by a single store update
type Listener func(State)

// Store holds the mutable state of one session and notifies listeners on every update.
//
// Updates are serialized: each listener sees every update exactly once, in order, before
// the next update is applied. Listeners may call Snapshot but must not call Update or
// UpdateIf synchronously.
type Store struct {
	notifyMu  sync.Mutex
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a store holding the initial state
func NewStore(initial State) *Store {
	return &Store{
		state:     initial,
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Update applies fn to the state and notifies listeners with the result
func (s *Store) Update(fn func(*State)) State {
	next, _ := s.apply(func(st *State) bool {
		fn(st)
		return true
	})
	return next
}

// UpdateIf applies fn and notifies listeners only when fn returns true.
// Mutations made by fn are discarded when it returns false.
func (s *Store) UpdateIf(fn func(*State) bool) bool {
	_, changed := s.apply(fn)
	return changed
}

// Subscribe registers l and returns a function that removes it
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) apply(fn func(*State) bool) (State, bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	working := s.state
	if !fn(&working) {
		snapshot := s.state
		s.mu.Unlock()
		return snapshot, false
	}
	s.state = working
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(working)
	}
	return working, true
}
