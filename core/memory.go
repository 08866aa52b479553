package core

import (
	"encoding/json"
	"fmt"
	"iter"
	"time"
)

// Well-known memory keys. Later entries under the same key supersede earlier
// ones; tool results use a composite key so every invocation stays addressable.
const (
	KeyInput  = "input"
	KeyAnswer = "answer"
	KeyPrompt = "prompt"
	KeyError  = "error"

	keyToolPrefix = "tool:"
)

// ToolResultKey builds the memory key for a tool invocation result.
func ToolResultKey(tool, callID string) string {
	return fmt.Sprintf("%s%s:%s", keyToolPrefix, tool, callID)
}

// IsToolResultKey reports whether key addresses a tool invocation result.
func IsToolResultKey(key string) bool {
	return len(key) > len(keyToolPrefix) && key[:len(keyToolPrefix)] == keyToolPrefix
}

// MemoryEntry is one append-only record in a session's memory: a
// session-scoped key, an opaque value, the turn that produced it and the
// strictly increasing per-session ordering index assigned by the store.
// Entries are never mutated after write, only superseded by later entries
// under the same key.
type MemoryEntry struct {
	Key    string    `json:"key"`
	Value  any       `json:"value"`
	TurnID string    `json:"turn_id,omitempty"`
	Index  int64     `json:"index"`
	Stored time.Time `json:"stored"`
}

// Window bounds a memory query. Zero values mean unbounded for that
// dimension; LastN keeps the newest N entries, MaxBytes caps the cumulative
// rendered size of entry values walking backward from the newest entry.
type Window struct {
	LastN    int
	MaxBytes int
}

// Clip applies the window to entries (which must already be in index order)
// and returns the retained suffix, still in index order.
func (w Window) Clip(entries []MemoryEntry) []MemoryEntry {
	if w.LastN > 0 && len(entries) > w.LastN {
		entries = entries[len(entries)-w.LastN:]
	}
	if w.MaxBytes > 0 {
		total := 0
		cut := 0
		for i := len(entries) - 1; i >= 0; i-- {
			total += entrySize(entries[i])
			if total > w.MaxBytes {
				cut = i + 1
				break
			}
		}
		entries = entries[cut:]
	}
	return entries
}

// entrySize approximates the serialized size of an entry's value.
func entrySize(e MemoryEntry) int {
	if s, ok := e.Value.(string); ok {
		return len(s)
	}
	b, err := json.Marshal(e.Value)
	if err != nil {
		return 0
	}
	return len(b)
}

// MemoryStore is the append-only, queryable context store keyed by session.
//
// Contract:
//   - Append is the only mutation; it assigns the next ordering index
//     atomically per session (strictly increasing, gap-free) and returns it.
//     Index assignment is independent across sessions; no global lock.
//   - Query produces a lazy, finite, restartable sequence of entries in
//     ordering-index order bounded by the caller-supplied window.
type MemoryStore interface {
	Append(sessionID string, entry MemoryEntry) (int64, error)
	Query(sessionID string, window Window) (iter.Seq[MemoryEntry], error)
}
