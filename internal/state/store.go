package state

import "sync"

// Listener is called after a dispatch with the state before and after it.
type Listener func(prev, next State)

// Store holds the current State and applies actions to it one at a time.
// The zero value is not usable; call NewStore.
type Store struct {
	mu        sync.Mutex
	current   State
	listeners []Listener
}

func NewStore(initial State) *Store {
	if initial.Patients == nil && initial.Diagnoses == nil {
		initial = Empty()
	}
	return &Store{current: initial}
}

// State returns the current state. Callers must treat it as read-only.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Dispatch reduces each action in order and replaces the held state.
// Listeners run after the lock is released.
func (s *Store) Dispatch(actions ...Action) State {
	s.mu.Lock()
	prev := s.current
	next := prev
	for _, a := range actions {
		next = Reduce(next, a)
	}
	s.current = next
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(prev, next)
	}
	return next
}

// Subscribe registers l for all later dispatches.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}
