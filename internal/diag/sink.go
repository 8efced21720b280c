// Package diag collects failures from background work that must never reach
// the visitor. Entries are logged and the most recent ones kept in memory for
// the admin diagnostics page.
package diag

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Entry struct {
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Sink struct {
	logger *zap.Logger

	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
	total   int64
}

// NewSink keeps the last capacity entries.
func NewSink(logger *zap.Logger, capacity int) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = 100
	}
	return &Sink{
		logger:  logger,
		entries: make([]Entry, capacity),
	}
}

// Report records err against source. A nil err is ignored.
func (s *Sink) Report(source string, err error) {
	if err == nil {
		return
	}
	s.logger.Warn("background task failed", zap.String("source", source), zap.Error(err))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[s.next] = Entry{Source: source, Message: err.Error(), Timestamp: time.Now()}
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
	s.total++
}

// Recent returns kept entries, newest first.
func (s *Sink) Recent() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.next
	if s.full {
		n = len(s.entries)
	}
	out := make([]Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		out = append(out, s.entries[idx])
	}
	return out
}

// Total counts every reported failure, including evicted ones.
func (s *Sink) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}
