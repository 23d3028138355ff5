// logging.go: Pluggable logging for the grid plugin runtime
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"sync"
)

// Logger is the pluggable logging interface every runtime component and
// plugin writes diagnostic entries to. Entries carry a message plus
// structured key-value pairs; With attaches persistent context, which the
// runtime uses to tag each plugin's entries with its component name.
//
// The interface has no external dependencies so hosts can adapt whatever
// logging framework they already run (zap, zerolog, slog) with a thin
// wrapper. A nil logger anywhere in the runtime falls back to NoOpLogger.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, args ...any)

	// Info logs an info message with optional key-value pairs
	Info(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs
	Warn(msg string, args ...any)

	// Error logs an error message with optional key-value pairs
	Error(msg string, args ...any)

	// With returns a new logger carrying persistent context key-value pairs
	With(args ...any) Logger
}

// NoOpLogger discards every entry. It is the default when the host does not
// supply a logger and is handy in tests that do not assert on log output.
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-operation logger.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// Debug implements Logger interface (no-op)
func (n *NoOpLogger) Debug(msg string, args ...any) {}

// Info implements Logger interface (no-op)
func (n *NoOpLogger) Info(msg string, args ...any) {}

// Warn implements Logger interface (no-op)
func (n *NoOpLogger) Warn(msg string, args ...any) {}

// Error implements Logger interface (no-op)
func (n *NoOpLogger) Error(msg string, args ...any) {}

// With implements Logger interface (no-op)
func (n *NoOpLogger) With(args ...any) Logger {
	return n
}

// DefaultLogger returns the logger used when the host supplies none.
func DefaultLogger() Logger {
	return NewNoOpLogger()
}

// TestLogger captures entries for assertion in tests.
type TestLogger struct {
	mu       sync.RWMutex
	context  []any
	Messages []TestLogMessage
}

// TestLogMessage is one captured log entry.
type TestLogMessage struct {
	Level   string
	Message string
	Args    []any
}

// NewTestLogger creates a new capturing logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{
		Messages: make([]TestLogMessage, 0),
	}
}

func (t *TestLogger) record(level, msg string, args []any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry := TestLogMessage{Level: level, Message: msg}
	entry.Args = append(entry.Args, t.context...)
	entry.Args = append(entry.Args, args...)
	t.Messages = append(t.Messages, entry)
}

// Debug implements Logger interface (captures message)
func (t *TestLogger) Debug(msg string, args ...any) {
	t.record("DEBUG", msg, args)
}

// Info implements Logger interface (captures message)
func (t *TestLogger) Info(msg string, args ...any) {
	t.record("INFO", msg, args)
}

// Warn implements Logger interface (captures message)
func (t *TestLogger) Warn(msg string, args ...any) {
	t.record("WARN", msg, args)
}

// Error implements Logger interface (captures message)
func (t *TestLogger) Error(msg string, args ...any) {
	t.record("ERROR", msg, args)
}

// With returns a logger that records into this logger's message buffer with
// extra persistent context, so component-tagged entries stay visible to the
// test.
func (t *TestLogger) With(args ...any) Logger {
	return &testContextLogger{parent: t, context: append(append([]any{}, t.context...), args...)}
}

// testContextLogger delegates to a parent TestLogger with bound context.
type testContextLogger struct {
	parent  *TestLogger
	context []any
}

func (c *testContextLogger) log(level, msg string, args []any) {
	c.parent.record(level, msg, append(append([]any{}, c.context...), args...))
}

func (c *testContextLogger) Debug(msg string, args ...any) { c.log("DEBUG", msg, args) }
func (c *testContextLogger) Info(msg string, args ...any)  { c.log("INFO", msg, args) }
func (c *testContextLogger) Warn(msg string, args ...any)  { c.log("WARN", msg, args) }
func (c *testContextLogger) Error(msg string, args ...any) { c.log("ERROR", msg, args) }

func (c *testContextLogger) With(args ...any) Logger {
	return &testContextLogger{parent: c.parent, context: append(append([]any{}, c.context...), args...)}
}

// HasMessage reports whether an entry with the given level and message was
// captured.
func (t *TestLogger) HasMessage(level, message string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, msg := range t.Messages {
		if msg.Level == level && msg.Message == message {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (t *TestLogger) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Messages = t.Messages[:0]
}
