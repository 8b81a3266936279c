// Package store provides a small state container: one value, one pure reducer,
// and subscribers notified after every dispatched action.
package store

import (
	"log/slog"
	"sync"
)

// Action is anything a reducer knows how to apply. Type names the action for logging.
type Action interface {
	Type() string
}

// Reducer computes the next state from the current one. Reducers must be pure and
// must not modify slices or maps reachable from the state they receive.
type Reducer[S any] func(state S, action Action) S

// Listener is notified with the state produced by a dispatch.
type Listener[S any] func(state S)

// Store holds a single state value. Every mutation goes through Dispatch,
// which serializes reducers so concurrent network callbacks interleave
// the way event-loop callbacks would.
type Store[S any] struct {
	mu     sync.Mutex
	state  S
	reduce Reducer[S]

	notifyMu  sync.Mutex
	listeners map[int]Listener[S]
	nextID    int

	logger *slog.Logger
}

// New creates a store with the given initial state and reducer.
// A nil logger disables action logging.
func New[S any](initial S, reduce Reducer[S], logger *slog.Logger) *Store[S] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store[S]{
		state:     initial,
		reduce:    reduce,
		listeners: make(map[int]Listener[S]),
		logger:    logger,
	}
}

// State returns the current state.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies action and notifies listeners. It returns the new state.
// Listeners see states in dispatch order and must not dispatch themselves.
func (s *Store[S]) Dispatch(action Action) S {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	next := s.reduce(s.state, action)
	s.state = next
	s.mu.Unlock()

	s.logger.Debug("dispatch", "action", action.Type())

	for _, id := range s.listenerIDs() {
		if fn, ok := s.listeners[id]; ok {
			fn(next)
		}
	}
	return next
}

// Subscribe registers fn for state changes and returns a function that removes it.
// Listeners must not call Subscribe or the returned unsubscribe function themselves.
func (s *Store[S]) Subscribe(fn Listener[S]) func() {
	s.notifyMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.notifyMu.Lock()
			delete(s.listeners, id)
			s.notifyMu.Unlock()
		})
	}
}

// listenerIDs returns subscription ids in registration order. Caller holds notifyMu.
func (s *Store[S]) listenerIDs() []int {
	ids := make([]int, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if _, ok := s.listeners[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
