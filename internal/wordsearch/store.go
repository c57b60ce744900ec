package wordsearch

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrGameNotFound is returned for unknown or expired session IDs
var ErrGameNotFound = errors.New("word search game not found")

// SessionStore holds active word-search sessions in memory
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewSessionStore creates an empty store; sessions idle longer than ttl are expired
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Save assigns an ID to the session and stores it
func (s *SessionStore) Save(session *Session) *Session {
	session.ID = uuid.New().String()

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// View returns a snapshot of the session with the given ID
func (s *SessionStore) View(id string) (View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok || s.expired(session, time.Now()) {
		return View{}, ErrGameNotFound
	}
	return session.Snapshot(), nil
}

// Update runs fn against the session while holding the store lock
func (s *SessionStore) Update(id string, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok || s.expired(session, time.Now()) {
		return ErrGameNotFound
	}
	return fn(session)
}

// Delete removes a session
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of stored sessions, expired or not
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CleanupExpired drops sessions idle past the TTL and returns how many were removed
func (s *SessionStore) CleanupExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) expired(session *Session, now time.Time) bool {
	if s.ttl <= 0 {
		return false
	}
	return now.Sub(session.UpdatedAt) > s.ttl
}
