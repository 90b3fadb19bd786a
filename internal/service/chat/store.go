package chat

import (
	"sync"

	"github.com/aicookbook/recipechat/internal/model/recipe"
)

// Store holds the session state rendered by the views. Views only read it;
// every mutation goes through the Orchestrator.
type Store struct {
	mu      sync.RWMutex
	state   State
	subs    map[int]chan struct{}
	nextSub int
}

// NewStore returns an empty, uninitialized store.
func NewStore() *Store {
	return &Store{
		state: State{Transcript: []recipe.Message{}},
		subs:  make(map[int]chan struct{}),
	}
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Phase returns the current lifecycle phase.
func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Phase
}

// SessionID returns the current session id, empty when there is none.
func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.SessionID
}

// Transcript returns a copy of the conversation.
func (s *Store) Transcript() []recipe.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recipe.CloneMessages(s.state.Transcript)
}

// Info returns the last loaded session metadata, or nil.
func (s *Store) Info() *recipe.SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Info.Clone()
}

// Recipe returns the cached final recipe, or nil.
func (s *Store) Recipe() *recipe.FinalRecipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Recipe.Clone()
}

// Loading reports whether an operation is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading
}

// Err returns the last error message for display.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Err
}

// Subscribe returns a channel that receives a value after state changes.
// Notifications coalesce; the receiver should re-read the state. The cancel
// func closes the channel.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// apply runs a transition atomically and notifies subscribers.
func (s *Store) apply(fn func(State) State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = fn(s.state)
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
