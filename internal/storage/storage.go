package storage

import (
	"sync"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/oracle/internal/session"
)

// Factory builds a fresh session for the given ID
type Factory func(id string) *session.Session

// SessionStore keeps one reading session per browser tab
type SessionStore struct {
	sessions map[string]*session.Session
	factory  Factory
	mu       sync.RWMutex
}

func New(factory Factory) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session.Session),
		factory:  factory,
	}
}

// Create starts a new session under a random ID
func (s *SessionStore) Create() *session.Session {
	sess := s.factory(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess
	return sess
}

func (s *SessionStore) Get(sessionID string) (*session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, exists := s.sessions[sessionID]
	return sess, exists
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Delete resets the session, releasing any camera it holds, and forgets it
func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	sess, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if exists {
		sess.Reset()
	}
	return exists
}

// Close resets every session
func (s *SessionStore) Close() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*session.Session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.Reset()
	}
}
