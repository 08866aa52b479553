package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgentic/agentloop/core"
)

func collect(t *testing.T, s core.MemoryStore, sessionID string, w core.Window) []core.MemoryEntry {
	t.Helper()
	seq, err := s.Query(sessionID, w)
	require.NoError(t, err)
	var entries []core.MemoryEntry
	for e := range seq {
		entries = append(entries, e)
	}
	return entries
}

func TestInMemoryStoreAppendAssignsIndices(t *testing.T) {
	s := NewInMemoryStore()

	for i := 0; i < 5; i++ {
		idx, err := s.Append("s1", core.MemoryEntry{Key: core.KeyInput, Value: fmt.Sprintf("v%d", i)})
		require.NoError(t, err)
		assert.Equal(t, int64(i), idx)
	}

	entries := collect(t, s, "s1", core.Window{})
	require.Len(t, entries, 5)
	for i, e := range entries {
		assert.Equal(t, int64(i), e.Index, "indices are gap-free and in order")
		assert.False(t, e.Stored.IsZero())
	}
}

func TestInMemoryStoreIndicesAreIndependentAcrossSessions(t *testing.T) {
	s := NewInMemoryStore()

	idx1, err := s.Append("s1", core.MemoryEntry{Key: "k", Value: "a"})
	require.NoError(t, err)
	idx2, err := s.Append("s2", core.MemoryEntry{Key: "k", Value: "b"})
	require.NoError(t, err)

	assert.Equal(t, int64(0), idx1)
	assert.Equal(t, int64(0), idx2)
}

func TestInMemoryStoreConcurrentAppends(t *testing.T) {
	s := NewInMemoryStore()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Append("s1", core.MemoryEntry{Key: "k", Value: i})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	entries := collect(t, s, "s1", core.Window{})
	require.Len(t, entries, n)
	for i, e := range entries {
		assert.Equal(t, int64(i), e.Index, "concurrent appends still produce a gap-free sequence")
	}
}

func TestInMemoryStoreQueryIsRestartable(t *testing.T) {
	s := NewInMemoryStore()
	for i := 0; i < 3; i++ {
		_, err := s.Append("s1", core.MemoryEntry{Key: "k", Value: i})
		require.NoError(t, err)
	}

	seq, err := s.Query("s1", core.Window{})
	require.NoError(t, err)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, 3, first)
	assert.Equal(t, 3, second, "the same sequence can be ranged twice")
}

func TestInMemoryStoreQuerySnapshotIgnoresLaterAppends(t *testing.T) {
	s := NewInMemoryStore()
	_, err := s.Append("s1", core.MemoryEntry{Key: "k", Value: "a"})
	require.NoError(t, err)

	seq, err := s.Query("s1", core.Window{})
	require.NoError(t, err)

	_, err = s.Append("s1", core.MemoryEntry{Key: "k", Value: "b"})
	require.NoError(t, err)

	count := 0
	for range seq {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestInMemoryStoreQueryWindow(t *testing.T) {
	s := NewInMemoryStore()
	for i := 0; i < 10; i++ {
		_, err := s.Append("s1", core.MemoryEntry{Key: "k", Value: i})
		require.NoError(t, err)
	}

	entries := collect(t, s, "s1", core.Window{LastN: 3})
	require.Len(t, entries, 3)
	assert.Equal(t, int64(7), entries[0].Index)
}

func TestInMemoryStoreUnknownSession(t *testing.T) {
	s := NewInMemoryStore()
	assert.Empty(t, collect(t, s, "nope", core.Window{}))
}

func TestInMemoryStoreEarlyBreak(t *testing.T) {
	s := NewInMemoryStore()
	for i := 0; i < 5; i++ {
		_, err := s.Append("s1", core.MemoryEntry{Key: "k", Value: i})
		require.NoError(t, err)
	}

	seq, err := s.Query("s1", core.Window{})
	require.NoError(t, err)

	count := 0
	for range seq {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}
