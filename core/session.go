package core

import (
	"fmt"
	"sync"
	"time"
)

// Status is the lifecycle state of a Session. Transitions are forward-only:
// Active -> Completed or Active -> Failed, never backward. A terminal status
// is immutable.
type Status string

const (
	// StatusActive marks a session still accepting turns.
	StatusActive Status = "active"
	// StatusCompleted marks a session that ended with a final answer.
	StatusCompleted Status = "completed"
	// StatusFailed marks a session that ended with a terminal error.
	StatusFailed Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusFailed }

// ToolInvocation records one tool call attempt sequence within a Turn: the
// validated arguments, the result or error kind, total latency across
// attempts and how many attempts were made.
type ToolInvocation struct {
	Tool         string        `json:"tool"`
	CallID       string        `json:"call_id"`
	Arguments    string        `json:"arguments,omitempty"`
	Result       any           `json:"result,omitempty"`
	ErrorKind    ErrorKind     `json:"error_kind,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Latency      time.Duration `json:"latency"`
	Attempts     int           `json:"attempts"`
}

// Failed reports whether the invocation ended in an error.
func (ti ToolInvocation) Failed() bool { return ti.ErrorKind != "" }

// Turn is one request/response cycle: the input that triggered it (user text
// or joined tool results), the reasoning decision, and any tool invocations
// it produced. Turns are immutable once committed to a session.
type Turn struct {
	ID          string           `json:"id"`
	Index       int              `json:"index"`
	Input       string           `json:"input,omitempty"`
	InputSource string           `json:"input_source"` // "user" or "tool"
	Decision    string           `json:"decision"`     // "final", "tool_calls", "needs_input", "error"
	Answer      string           `json:"answer,omitempty"`
	Prompt      string           `json:"prompt,omitempty"`
	ErrorKind   ErrorKind        `json:"error_kind,omitempty"`
	Invocations []ToolInvocation `json:"invocations,omitempty"`
	Committed   time.Time        `json:"committed"`
}

// Session is the unit of agent interaction: an identifier, an ordered turn
// history and a forward-only status. It is safe for concurrent access.
//
// Contract:
//   - AppendTurn and SetStatus update the Updated timestamp
//   - AppendTurn fails once the session is terminal
//   - SetStatus enforces forward-only transitions
//   - Clone performs deep copies for safe divergence.
type Session struct {
	ID      string    `json:"id"`
	Turns   []Turn    `json:"turns"`
	Status  Status    `json:"status"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	mu      sync.RWMutex
}

// NewSession creates an active session with the given ID.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{ID: id, Turns: []Turn{}, Status: StatusActive, Created: now, Updated: now}
}

// GetStatus returns the current lifecycle status.
func (s *Session) GetStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// SetStatus transitions the session status. Terminal states never change and
// a transition back to Active is rejected.
func (s *Session) SetStatus(next Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status.Terminal() {
		return fmt.Errorf("session %s is %s; terminal status is immutable", s.ID, s.Status)
	}
	if next == StatusActive {
		return fmt.Errorf("session %s cannot transition back to active", s.ID)
	}
	s.Status = next
	s.Updated = time.Now().UTC()
	return nil
}

// AppendTurn commits a turn to the history, assigning the next index. Fails
// on terminal sessions; committed turns are never rewritten.
func (s *Session) AppendTurn(t Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status.Terminal() {
		return fmt.Errorf("session %s is %s; no further turns accepted", s.ID, s.Status)
	}
	t.Index = len(s.Turns)
	if t.Committed.IsZero() {
		t.Committed = time.Now().UTC()
	}
	s.Turns = append(s.Turns, t)
	s.Updated = time.Now().UTC()
	return nil
}

// GetTurns returns a defensive copy of the turn history.
func (s *Session) GetTurns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]Turn, len(s.Turns))
	copy(turns, s.Turns)
	return turns
}

// TurnCount returns the number of committed turns.
func (s *Session) TurnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Turns)
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{ID: s.ID, Turns: make([]Turn, len(s.Turns)), Status: s.Status, Created: s.Created, Updated: s.Updated}
	copy(clone.Turns, s.Turns)
	return clone
}

// SessionStore persists sessions and their evolving turn history.
type SessionStore interface {
	Create(id string) (*Session, error)
	Get(id string) (*Session, error)
	AppendTurn(sessionID string, turn Turn) error
	SetStatus(sessionID string, status Status) error
}
