// Package core defines the shared data model and service contracts of the
// agentloop framework: sessions with their ordered turn history, append-only
// memory entries, the error taxonomy used across the orchestration loop, and
// the store interfaces (SessionStore, MemoryStore) that pluggable backends
// implement. Higher level packages (orchestrator, tool, engine) depend on
// core; core depends only on logging.
package core
