// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. A contextual LoopLogger adds session/component scoping
// and domain helpers for tool and engine call records.
package logging
