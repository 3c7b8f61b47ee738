// Package history keeps the most recent notification records for display.
package history

import (
	"sync"

	"github.com/hammamikhairi/voicenotify/internal/domain"
)

// DefaultLimit is how many records are kept.
const DefaultLimit = 20

// Compile-time interface check.
var _ domain.History = (*Log)(nil)

// Listener is told about every publish. updated is true when the record
// replaced an existing entry.
type Listener func(info domain.NotificationInfo, updated bool)

// Log is a bounded, newest-first list of records. Publishing a record whose
// ID is already present replaces that entry in place. Safe for concurrent use.
type Log struct {
	mu        sync.RWMutex
	limit     int
	entries   []domain.NotificationInfo
	listeners []Listener
}

// New creates a log holding at most limit records. limit <= 0 uses
// DefaultLimit.
func New(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

// Subscribe registers a listener. Listeners run on the publishing goroutine
// after the log has been updated.
func (l *Log) Subscribe(fn Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Publish inserts or replaces info.
func (l *Log) Publish(info domain.NotificationInfo) {
	l.mu.Lock()
	updated := false
	for i := range l.entries {
		if l.entries[i].ID == info.ID {
			l.entries[i] = info
			updated = true
			break
		}
	}
	if !updated {
		l.entries = append([]domain.NotificationInfo{info}, l.entries...)
		if len(l.entries) > l.limit {
			l.entries = l.entries[:l.limit]
		}
	}
	listeners := make([]Listener, len(l.listeners))
	copy(listeners, l.listeners)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(info, updated)
	}
}

// Entries returns the records, newest first.
func (l *Log) Entries() []domain.NotificationInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.NotificationInfo, len(l.entries))
	copy(out, l.entries)
	return out
}

// Get returns the record with the given ID.
func (l *Log) Get(id string) (domain.NotificationInfo, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.NotificationInfo{}, domain.ErrNotFound
}

// Len returns the number of records held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
