package logger

import (
	"context"
	"strings"
	"sync"
)

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

type capture struct {
	mu      sync.RWMutex
	entries []LogEntry
}

// TestLogger records every entry in memory so tests can assert on them.
// Children created through WithField(s) write into the same buffer.
type TestLogger struct {
	buf    *capture
	fields map[string]interface{}
}

// NewTestLogger returns an empty TestLogger.
func NewTestLogger() *TestLogger {
	return &TestLogger{
		buf:    &capture{},
		fields: map[string]interface{}{},
	}
}

func (l *TestLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	l.record("debug", msg, fields)
}

func (l *TestLogger) Info(ctx context.Context, msg string, fields map[string]interface{}) {
	l.record("info", msg, fields)
}

func (l *TestLogger) Warn(ctx context.Context, msg string, fields map[string]interface{}) {
	l.record("warn", msg, fields)
}

func (l *TestLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {
	l.record("error", msg, fields)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return &TestLogger{
		buf:    l.buf,
		fields: mergeFields(l.fields, fields),
	}
}

func (l *TestLogger) record(level, msg string, fields map[string]interface{}) {
	l.buf.mu.Lock()
	defer l.buf.mu.Unlock()
	l.buf.entries = append(l.buf.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  mergeFields(l.fields, fields),
	})
}

// Entries returns a copy of everything logged so far.
func (l *TestLogger) Entries() []LogEntry {
	l.buf.mu.RLock()
	defer l.buf.mu.RUnlock()
	out := make([]LogEntry, len(l.buf.entries))
	copy(out, l.buf.entries)
	return out
}

// EntriesAt returns the captured entries for one level.
func (l *TestLogger) EntriesAt(level string) []LogEntry {
	var out []LogEntry
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether any entry at level has a message containing substr.
// An empty level matches every level.
func (l *TestLogger) Contains(level, substr string) bool {
	for _, e := range l.Entries() {
		if (level == "" || e.Level == level) && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// Reset drops all captured entries.
func (l *TestLogger) Reset() {
	l.buf.mu.Lock()
	defer l.buf.mu.Unlock()
	l.buf.entries = nil
}

func mergeFields(base, extra map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
