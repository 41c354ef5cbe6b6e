package session

import "sync"

// Store holds the one current session. Login, logout and bootstrap all go
// through it so every consumer sees the same identity.
type Store struct {
	mu        sync.RWMutex
	current   *Session
	observers []func(Principal)
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces whatever session was installed. A nil session is the same as Clear.
func (s *Store) Set(sess *Session) {
	if sess == nil {
		s.Clear()
		return
	}

	s.mu.Lock()
	s.current = sess
	observers := append([]func(Principal){}, s.observers...)
	s.mu.Unlock()

	notify(observers, sess)
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.current = nil
	observers := append([]func(Principal){}, s.observers...)
	s.mu.Unlock()

	notify(observers, Anonymous{})
}

// Current never returns nil: no session is reported as Anonymous.
func (s *Store) Current() Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Anonymous{}
	}
	return s.current
}

func (s *Store) Session() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current, s.current != nil
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.Session()
	return ok
}

// Subscribe registers fn to be called after every Set or Clear with the new principal.
// Observers run outside the lock, so they may read the store.
func (s *Store) Subscribe(fn func(Principal)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers = append(s.observers, fn)
}

func notify(observers []func(Principal), p Principal) {
	for _, fn := range observers {
		fn(p)
	}
}
