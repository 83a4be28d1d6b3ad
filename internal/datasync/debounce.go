package datasync

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid repeated signals per key into one delayed
// callback; only the latest callback for a key fires. Flush triggers a
// pending key immediately so tests never wait on real timers.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	fns    map[string]func()
}

// NewDebouncer creates a debouncer with the given coalescing delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		fns:    make(map[string]func()),
	}
}

// Trigger schedules fn under key, replacing any pending callback for the
// same key and restarting its delay.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.fns[key] = fn
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = time.AfterFunc(d.delay, func() { d.fire(key) })
}

// Flush fires the pending callback for key immediately, if any.
func (d *Debouncer) Flush(key string) {
	d.mu.Lock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.mu.Unlock()
	d.fire(key)
}

// FlushAll fires every pending callback immediately.
func (d *Debouncer) FlushAll() {
	d.mu.Lock()
	keys := make([]string, 0, len(d.fns))
	for key := range d.fns {
		keys = append(keys, key)
	}
	d.mu.Unlock()

	for _, key := range keys {
		d.Flush(key)
	}
}

// Stop cancels every pending callback without firing it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
		delete(d.fns, key)
	}
}

func (d *Debouncer) fire(key string) {
	d.mu.Lock()
	fn := d.fns[key]
	delete(d.fns, key)
	delete(d.timers, key)
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}
