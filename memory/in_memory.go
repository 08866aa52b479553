package memory

import (
	"iter"
	"sync"
	"time"

	"github.com/flowgentic/agentloop/core"
)

// sessionLog holds one session's entries behind its own lock so appends to
// different sessions never contend.
type sessionLog struct {
	mu      sync.RWMutex
	entries []core.MemoryEntry
}

// InMemoryStore is a thread-safe process-local MemoryStore. Entries live for
// the lifetime of the process; use AppendLogStore when recovery across
// restarts matters.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionLog
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*sessionLog)}
}

func (s *InMemoryStore) log(sessionID string) *sessionLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, exists := s.sessions[sessionID]
	if !exists {
		l = &sessionLog{}
		s.sessions[sessionID] = l
	}
	return l
}

// Append stores entry and returns the assigned ordering index. Indices are
// strictly increasing and gap-free per session; assignment for one session
// never blocks appends to another.
func (s *InMemoryStore) Append(sessionID string, entry core.MemoryEntry) (int64, error) {
	l := s.log(sessionID)

	l.mu.Lock()
	defer l.mu.Unlock()

	entry.Index = int64(len(l.entries))
	if entry.Stored.IsZero() {
		entry.Stored = time.Now().UTC()
	}
	l.entries = append(l.entries, entry)
	return entry.Index, nil
}

// Query returns the windowed entries in index order. The sequence is built
// over a snapshot taken at call time, so it is finite, restartable and
// unaffected by concurrent appends. Unknown sessions yield an empty sequence.
func (s *InMemoryStore) Query(sessionID string, window core.Window) (iter.Seq[core.MemoryEntry], error) {
	l := s.log(sessionID)

	l.mu.RLock()
	snapshot := make([]core.MemoryEntry, len(l.entries))
	copy(snapshot, l.entries)
	l.mu.RUnlock()

	clipped := window.Clip(snapshot)
	return func(yield func(core.MemoryEntry) bool) {
		for _, e := range clipped {
			if !yield(e) {
				return
			}
		}
	}, nil
}

var _ core.MemoryStore = (*InMemoryStore)(nil)
