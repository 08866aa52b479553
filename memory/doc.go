// Package memory provides MemoryStore implementations: a process-local
// in-memory store and a JSONL append-log store that survives restarts.
// Both assign the per-session ordering index atomically on append and serve
// lazy, restartable windowed queries.
package memory
