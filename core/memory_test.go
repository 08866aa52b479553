package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entriesWithKeys(keys ...string) []MemoryEntry {
	entries := make([]MemoryEntry, len(keys))
	for i, k := range keys {
		entries[i] = MemoryEntry{Key: k, Value: k, Index: int64(i)}
	}
	return entries
}

func TestToolResultKey(t *testing.T) {
	key := ToolResultKey("search", "call_1")
	assert.Equal(t, "tool:search:call_1", key)
	assert.True(t, IsToolResultKey(key))
	assert.False(t, IsToolResultKey(KeyInput))
	assert.False(t, IsToolResultKey("tool:"))
}

func TestWindowClipUnbounded(t *testing.T) {
	entries := entriesWithKeys("a", "b", "c")
	assert.Equal(t, entries, Window{}.Clip(entries))
}

func TestWindowClipLastN(t *testing.T) {
	entries := entriesWithKeys("a", "b", "c", "d")

	clipped := Window{LastN: 2}.Clip(entries)
	require.Len(t, clipped, 2)
	assert.Equal(t, "c", clipped[0].Key)
	assert.Equal(t, "d", clipped[1].Key)

	assert.Len(t, Window{LastN: 10}.Clip(entries), 4, "window larger than history keeps everything")
}

func TestWindowClipMaxBytes(t *testing.T) {
	entries := []MemoryEntry{
		{Key: "a", Value: strings.Repeat("x", 100), Index: 0},
		{Key: "b", Value: strings.Repeat("y", 40), Index: 1},
		{Key: "c", Value: strings.Repeat("z", 40), Index: 2},
	}

	clipped := Window{MaxBytes: 90}.Clip(entries)
	require.Len(t, clipped, 2)
	assert.Equal(t, "b", clipped[0].Key)
	assert.Equal(t, "c", clipped[1].Key)
}

func TestWindowClipCombined(t *testing.T) {
	entries := []MemoryEntry{
		{Key: "a", Value: strings.Repeat("x", 10), Index: 0},
		{Key: "b", Value: strings.Repeat("y", 10), Index: 1},
		{Key: "c", Value: strings.Repeat("z", 50), Index: 2},
		{Key: "d", Value: strings.Repeat("w", 10), Index: 3},
	}

	// LastN drops "a" first, then the byte budget walks backward and drops "b" and "c".
	clipped := Window{LastN: 3, MaxBytes: 30}.Clip(entries)
	require.Len(t, clipped, 1)
	assert.Equal(t, "d", clipped[0].Key)
}

func TestWindowClipNonStringValues(t *testing.T) {
	entries := []MemoryEntry{
		{Key: "a", Value: map[string]any{"n": 1}, Index: 0},
		{Key: "b", Value: 42, Index: 1},
	}
	assert.Len(t, Window{MaxBytes: 1000}.Clip(entries), 2)
}
