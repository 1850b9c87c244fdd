package session

import (
	"sync"
	"time"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
)

type entry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Registry keeps one Controller per browser session id.
type Registry struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry builds the controllers of every session from cfg.
func NewRegistry(cfg Config) (*Registry, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Registry{cfg: cfg, now: cfg.Clock.Now, entries: make(map[string]*entry)}, nil
}

// Get returns the controller for id, creating a logged out one on first use.
func (r *Registry) Get(id string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		// cfg already has its defaults, NewController cannot fail
		ctrl, _ := NewController(r.cfg)
		e = &entry{ctrl: ctrl}
		r.entries[id] = e
		r.cfg.Logger.Debugw("session: registered", "session_id", id)
	}
	e.lastSeen = r.now()
	return e.ctrl
}

// Lookup returns the controller for id without creating one.
func (r *Registry) Lookup(id string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.ctrl, true
}

// Remove logs the session out and forgets it.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if ok {
		e.ctrl.Logout()
	}
}

// Sweep forgets logged out sessions not seen for idle and returns how many
// were dropped. Logged in sessions are never swept.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.entries {
		if e.lastSeen.After(cutoff) {
			continue
		}
		if e.ctrl.State() == model.StateLoggedIn {
			continue
		}
		delete(r.entries, id)
		n++
	}
	if n > 0 {
		r.cfg.Logger.Debugw("session: swept idle sessions", "dropped", n)
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// LoggedIn counts sessions with a mounted dashboard.
func (r *Registry) LoggedIn() int {
	r.mu.Lock()
	ctrls := make([]*Controller, 0, len(r.entries))
	for _, e := range r.entries {
		ctrls = append(ctrls, e.ctrl)
	}
	r.mu.Unlock()
	n := 0
	for _, c := range ctrls {
		if c.State() == model.StateLoggedIn {
			n++
		}
	}
	return n
}

// Close logs every session out.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()
	for _, e := range entries {
		e.ctrl.Logout()
	}
}
