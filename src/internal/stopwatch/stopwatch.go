package stopwatch

import (
	"sync"
	"time"

	"github.com/denull/loggy-agent/src/internal/core"
)

// Entry is one running stopwatch: its start instant and the fields
// captured when it was started.
type Entry struct {
	Start  time.Time
	Fields core.Fields
}

// Registry tracks named stopwatches for a single client instance.
// Labels are independent; restarting a label resets its start time and
// replaces its fields.
type Registry struct {
	mu      sync.Mutex
	entries map[string]Entry
	now     func() time.Time
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Start begins (or restarts) the stopwatch named label, capturing a
// copy of fields for later measurement calls.
func (r *Registry) Start(label string, fields core.Fields) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[label] = Entry{
		Start:  r.now(),
		Fields: core.CloneFields(fields),
	}
}

// Measure returns the elapsed time in fractional seconds and a copy of
// the stored fields. The stopwatch keeps running. ok is false when no
// stopwatch with that label exists.
func (r *Registry) Measure(label string) (elapsed float64, fields core.Fields, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[label]
	if !ok {
		return 0, nil, false
	}
	return r.now().Sub(entry.Start).Seconds(), core.CloneFields(entry.Fields), true
}

// Remove discards the stopwatch named label, whether or not it exists.
func (r *Registry) Remove(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, label)
}

// Len reports the number of running stopwatches.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
