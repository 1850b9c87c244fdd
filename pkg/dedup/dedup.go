// Package dedup suppresses repeats of the same key inside a time window.
package dedup

import (
	"sync"
	"time"
)

// Deduper remembers keys for ttl and reports whether a key is new.
// A zero-value window disables suppression.
type Deduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	max  int
	now  func() time.Time
	seen map[string]time.Time
}

// New builds a Deduper that reads time from now. A nil now uses time.Now.
func New(ttl time.Duration, max int, now func() time.Time) *Deduper {
	if max <= 0 {
		max = 1000
	}
	if now == nil {
		now = time.Now
	}
	return &Deduper{ttl: ttl, max: max, now: now, seen: make(map[string]time.Time)}
}

// ShouldProcess returns false if key was accepted less than ttl ago.
func (d *Deduper) ShouldProcess(key string) bool {
	if d == nil || d.ttl <= 0 || key == "" {
		return true
	}
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	if exp, ok := d.seen[key]; ok && now.Before(exp) {
		return false
	}
	d.seen[key] = now.Add(d.ttl)
	if len(d.seen) > d.max {
		for k, v := range d.seen {
			if !now.Before(v) {
				delete(d.seen, k)
			}
		}
	}
	return true
}

// Reset forgets every key.
func (d *Deduper) Reset() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.seen = make(map[string]time.Time)
	d.mu.Unlock()
}

// Len reports how many keys are remembered.
func (d *Deduper) Len() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
