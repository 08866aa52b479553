package memory

import (
	"bufio"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/flowgentic/agentloop/core"
)

// AppendLogStore is a MemoryStore persisted as one JSONL file per session
// under a directory. Appends are synchronous writes; on first access to a
// session the log is replayed to recover the next ordering index, so a
// restarted process continues the sequence without gaps.
type AppendLogStore struct {
	dir string

	mu       sync.Mutex
	sessions map[string]*logFile
}

type logFile struct {
	mu   sync.Mutex
	path string
	next int64
	// next is -1 until the file has been replayed once.
}

// NewAppendLogStore creates a store writing per-session JSONL logs under dir.
// The directory is created if missing.
func NewAppendLogStore(dir string) (*AppendLogStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create memory log dir: %w", err)
	}
	return &AppendLogStore{
		dir:      dir,
		sessions: make(map[string]*logFile),
	}, nil
}

func (s *AppendLogStore) file(sessionID string) *logFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, exists := s.sessions[sessionID]
	if !exists {
		f = &logFile{
			path: filepath.Join(s.dir, sessionID+".jsonl"),
			next: -1,
		}
		s.sessions[sessionID] = f
	}
	return f
}

// Append encodes entry as one JSONL record and returns the assigned ordering
// index. The first append after process start replays the existing log to
// continue the index sequence.
func (s *AppendLogStore) Append(sessionID string, entry core.MemoryEntry) (int64, error) {
	f := s.file(sessionID)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.next < 0 {
		entries, err := readLog(f.path)
		if err != nil {
			return 0, err
		}
		f.next = int64(len(entries))
	}

	entry.Index = f.next
	if entry.Stored.IsZero() {
		entry.Stored = time.Now().UTC()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return 0, fmt.Errorf("encode memory entry: %w", err)
	}

	out, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open memory log: %w", err)
	}
	defer out.Close()

	if _, err := out.Write(append(line, '\n')); err != nil {
		return 0, fmt.Errorf("write memory entry: %w", err)
	}

	f.next++
	return entry.Index, nil
}

// Query replays the session log, applies the window and returns a restartable
// sequence over the resulting snapshot. A missing log yields an empty sequence.
func (s *AppendLogStore) Query(sessionID string, window core.Window) (iter.Seq[core.MemoryEntry], error) {
	f := s.file(sessionID)

	f.mu.Lock()
	entries, err := readLog(f.path)
	if err == nil && f.next < 0 {
		f.next = int64(len(entries))
	}
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	clipped := window.Clip(entries)
	return func(yield func(core.MemoryEntry) bool) {
		for _, e := range clipped {
			if !yield(e) {
				return
			}
		}
	}, nil
}

// readLog decodes every JSONL record in the file at path, in file order.
func readLog(path string) ([]core.MemoryEntry, error) {
	in, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open memory log: %w", err)
	}
	defer in.Close()

	var entries []core.MemoryEntry
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e core.MemoryEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("decode memory entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read memory log: %w", err)
	}
	return entries, nil
}

var _ core.MemoryStore = (*AppendLogStore)(nil)
