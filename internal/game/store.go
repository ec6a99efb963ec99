package game

import (
	"context"
	"errors"
	"sync"
)

// ErrStoreConflict is returned when an update keeps losing to concurrent
// writers.
var ErrStoreConflict = errors.New("session store: too many concurrent updates")

// SessionStore keeps one Session per identity.
//
// Update is the only way to mutate a session: fn runs against the current
// value (created on first use) and its result is written atomically. If fn
// returns an error nothing is written, not even a newly created session,
// and Update returns the unchanged session together with that error.
type SessionStore interface {
	GetOrCreate(ctx context.Context, identity string) (Session, error)
	Update(ctx context.Context, identity string, fn func(s *Session) error) (Session, error)
}

type InMemorySessionStore struct {
	mu          sync.Mutex
	m           map[string]*Session
	maxAttempts int
}

func NewInMemorySessionStore(maxAttempts int) *InMemorySessionStore {
	return &InMemorySessionStore{
		m:           make(map[string]*Session),
		maxAttempts: maxAttempts,
	}
}

func (s *InMemorySessionStore) GetOrCreate(_ context.Context, identity string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.getOrCreateLocked(identity), nil
}

func (s *InMemorySessionStore) Update(_ context.Context, identity string, fn func(s *Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.m[identity]
	if !ok {
		n := newSession(identity, s.maxAttempts)
		cur = &n
	}
	next := *cur
	if err := fn(&next); err != nil {
		return *cur, err
	}
	*cur = next
	if !ok {
		s.m[identity] = cur
	}
	return next, nil
}

func (s *InMemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *InMemorySessionStore) getOrCreateLocked(identity string) *Session {
	sess, ok := s.m[identity]
	if !ok {
		n := newSession(identity, s.maxAttempts)
		sess = &n
		s.m[identity] = sess
	}
	return sess
}
