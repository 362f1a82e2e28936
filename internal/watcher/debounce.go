package watcher

import (
	"sort"
	"sync"
	"time"
)

// Debouncer coalesces bursts of events into a single callback.
// Every Add restarts the delay; when it expires the callback receives the
// distinct paths collected since the previous callback.
type Debouncer struct {
	delay    time.Duration
	timer    *time.Timer
	pending  map[string]struct{}
	callback func(paths []string)
	mu       sync.Mutex
}

// NewDebouncer creates a new Debouncer with the specified delay and callback.
func NewDebouncer(delay time.Duration, callback func(paths []string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		pending:  make(map[string]struct{}),
		callback: callback,
	}
}

// Add records path and restarts the delay.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(d.pending))
	for path := range d.pending {
		paths = append(paths, path)
	}
	d.pending = make(map[string]struct{})
	d.timer = nil
	d.mu.Unlock()

	sort.Strings(paths)

	// Invoke the callback outside the lock so it may call Add
	if d.callback != nil {
		d.callback(paths)
	}
}

// Cancel drops every pending path without invoking the callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = make(map[string]struct{})
}

// PendingCount returns the number of distinct paths waiting for the callback.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// IsPending returns true if path is waiting for the callback.
func (d *Debouncer) IsPending(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, exists := d.pending[path]
	return exists
}

// GetDelay returns the configured debounce delay.
func (d *Debouncer) GetDelay() time.Duration {
	return d.delay
}
