package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger defines the minimal structured logging interface for agentloop.
// Arguments follow the slog key/value convention.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// LoopLoggerConfig configures construction of a LoopLogger.
type LoopLoggerConfig struct {
	Level     slog.Level
	Format    string // json or text
	Output    io.Writer
	AddSource bool
}

// DefaultLoopLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoopLoggerConfig() *LoopLoggerConfig {
	return &LoopLoggerConfig{Level: slog.LevelInfo, Format: "json", Output: os.Stdout}
}

// LoopLogger wraps slog.Logger adding contextual cloning helpers and domain
// convenience methods for the orchestration loop. It is cheap to copy via
// With* methods.
type LoopLogger struct {
	logger    *slog.Logger
	component string
	sessionID string
}

// NewLoopLogger builds a LoopLogger from a config (or defaults if nil).
func NewLoopLogger(cfg *LoopLoggerConfig) *LoopLogger {
	if cfg == nil {
		cfg = DefaultLoopLoggerConfig()
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return &LoopLogger{logger: slog.New(handler)}
}

// WithComponent sets the logical component (orchestrator, tool, engine, ...).
func (l *LoopLogger) WithComponent(c string) *LoopLogger {
	nl := *l
	nl.component = c
	return &nl
}

// WithSession attaches a session identifier to every log entry.
func (l *LoopLogger) WithSession(sessionID string) *LoopLogger {
	nl := *l
	nl.sessionID = sessionID
	return &nl
}

func (l *LoopLogger) scoped(args []any) []any {
	if l.component != "" {
		args = append(args, "component", l.component)
	}
	if l.sessionID != "" {
		args = append(args, "session_id", l.sessionID)
	}
	return args
}

// Debug logs at debug level.
func (l *LoopLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, l.scoped(args)...)
}

// Info logs at info level.
func (l *LoopLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.scoped(args)...)
}

// Warn logs at warn level.
func (l *LoopLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, l.scoped(args)...)
}

// Error logs at error level.
func (l *LoopLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, l.scoped(args)...)
}

// LogToolCall records execution details for a tool invocation.
func (l *LoopLogger) LogToolCall(tool string, attempts int, dur time.Duration, err error) {
	args := l.scoped([]any{"tool_name", tool, "attempts", attempts, "duration_ms", dur.Milliseconds()})
	if err != nil {
		args = append(args, "error", err.Error())
		l.logger.Log(context.Background(), slog.LevelError, "Tool execution failed", args...)
		return
	}
	l.logger.Log(context.Background(), slog.LevelInfo, "Tool execution completed", args...)
}

// LogEngineCall records reasoning engine call latency and outcome.
func (l *LoopLogger) LogEngineCall(engine string, dur time.Duration, err error) {
	args := l.scoped([]any{"engine", engine, "duration_ms", dur.Milliseconds()})
	if err != nil {
		args = append(args, "error", err.Error())
		l.logger.Log(context.Background(), slog.LevelError, "Engine call failed", args...)
		return
	}
	l.logger.Log(context.Background(), slog.LevelInfo, "Engine call completed", args...)
}
