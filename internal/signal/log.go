package signal

import (
	"sync"

	"github.com/rickgao/bistwatch/internal/model"
)

// DefaultCapacity is the number of signals kept when none is configured.
const DefaultCapacity = 500

// Log is a bounded, newest-first signal history backed by a ring buffer.
// Once full, each insertion evicts the oldest entry.
type Log struct {
	mu       sync.RWMutex
	buf      []model.SignalEvent
	head     int // index of the newest entry
	count    int
	capacity int

	// Stats
	totalAppended int64
	totalEvicted  int64
}

// NewLog creates a log holding at most capacity signals.
func NewLog(capacity int) *Log {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Log{
		buf:      make([]model.SignalEvent, capacity),
		head:     capacity - 1,
		capacity: capacity,
	}
}

// Prepend inserts events in order, so the last event given ends up newest.
func (l *Log) Prepend(events ...model.SignalEvent) {
	if len(events) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, ev := range events {
		l.head = (l.head + 1) % l.capacity
		l.buf[l.head] = ev
		if l.count == l.capacity {
			l.totalEvicted++
		} else {
			l.count++
		}
		l.totalAppended++
	}
}

// Snapshot returns a copy of the log, newest first.
func (l *Log) Snapshot() []model.SignalEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.SignalEvent, l.count)
	for i := 0; i < l.count; i++ {
		out[i] = l.buf[(l.head-i+l.capacity)%l.capacity]
	}
	return out
}

// Len returns the number of signals held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Cap returns the capacity bound.
func (l *Log) Cap() int {
	return l.capacity
}

// Stats returns log statistics.
func (l *Log) Stats() LogStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return LogStats{
		Count:         l.count,
		Capacity:      l.capacity,
		TotalAppended: l.totalAppended,
		TotalEvicted:  l.totalEvicted,
	}
}

// LogStats contains log statistics.
type LogStats struct {
	Count         int
	Capacity      int
	TotalAppended int64
	TotalEvicted  int64
}
