package session

import (
	"fmt"
	"sync"

	"github.com/flowgentic/agentloop/core"
)

// InMemoryStore is a thread-safe process-local SessionStore. Get returns
// deep clones so callers can inspect history without racing the loop.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewInMemoryStore creates an empty session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Create registers a new active session under id. Fails if the id exists.
func (s *InMemoryStore) Create(id string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; exists {
		return nil, fmt.Errorf("session %q already exists", id)
	}
	sess := core.NewSession(id)
	s.sessions[id] = sess
	return sess.Clone(), nil
}

// Get returns a deep clone of the session, or SessionNotFound.
func (s *InMemoryStore) Get(id string) (*core.Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// AppendTurn commits a turn to the stored session.
func (s *InMemoryStore) AppendTurn(sessionID string, turn core.Turn) error {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	return sess.AppendTurn(turn)
}

// SetStatus transitions the stored session's status (forward-only).
func (s *InMemoryStore) SetStatus(sessionID string, status core.Status) error {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	return sess.SetStatus(status)
}

func (s *InMemoryStore) lookup(id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[id]
	if !exists {
		return nil, core.NewError(core.ErrSessionNotFound, "session %q not found", id)
	}
	return sess, nil
}

var _ core.SessionStore = (*InMemoryStore)(nil)
