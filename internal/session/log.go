package session

import (
	"sync"
	"time"

	"clinweaver/internal/types"
)

const defaultLogCapacity = 500

// Log is the user-visible session log: a bounded, append-only buffer of
// timestamped entries. When full, the oldest entries are dropped.
type Log struct {
	mu      sync.Mutex
	entries []types.LogEntry
	max     int
}

// NewLog creates a log bounded to max entries.
func NewLog(max int) *Log {
	if max <= 0 {
		max = defaultLogCapacity
	}
	return &Log{max: max}
}

// Append records one entry.
func (l *Log) Append(severity types.Severity, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, types.LogEntry{
		Timestamp: time.Now(),
		Message:   message,
		Severity:  severity,
	})
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
}

// Entries returns a copy of the current log, oldest first.
func (l *Log) Entries() []types.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
