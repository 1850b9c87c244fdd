package schedule

import (
	"sync"
	"time"
)

// Group registers tasks on a Clock and cancels them together.
// Once stopped, a Group refuses new tasks and any callback already handed to
// the clock becomes a no-op.
type Group struct {
	clock Clock

	mu     sync.Mutex
	closed bool
	nextID uint64
	tasks  map[uint64]*Task
}

// Task is a registered periodic or one-shot callback.
type Task struct {
	g      *Group
	id     uint64
	period time.Duration // 0 for one-shot
	fn     func()
	timer  Timer
}

func NewGroup(clock Clock) *Group {
	if clock == nil {
		clock = Real()
	}
	return &Group{clock: clock, tasks: make(map[uint64]*Task)}
}

// Clock returns the clock the group schedules on.
func (g *Group) Clock() Clock { return g.clock }

// After runs fn once after d. It returns nil if the group is stopped.
func (g *Group) After(d time.Duration, fn func()) *Task {
	return g.add(d, 0, fn)
}

// Every runs fn every period, first after one period.
// It returns nil if the group is stopped.
func (g *Group) Every(period time.Duration, fn func()) *Task {
	if period <= 0 {
		return nil
	}
	return g.add(period, period, fn)
}

func (g *Group) add(d, period time.Duration, fn func()) *Task {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.nextID++
	t := &Task{g: g, id: g.nextID, period: period, fn: fn}
	g.tasks[t.id] = t
	t.timer = g.clock.AfterFunc(d, t.fire)
	return t
}

func (t *Task) fire() {
	g := t.g
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	if _, ok := g.tasks[t.id]; !ok {
		g.mu.Unlock()
		return
	}
	if t.period > 0 {
		// re-arm before running so a slow callback does not drift the period
		t.timer = g.clock.AfterFunc(t.period, t.fire)
	} else {
		delete(g.tasks, t.id)
	}
	g.mu.Unlock()

	t.fn()
}

// Stop cancels the task. Stopping a finished or nil task is a no-op.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	g := t.g
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.tasks[t.id]; !ok {
		return
	}
	delete(g.tasks, t.id)
	if t.timer != nil {
		t.timer.Stop()
	}
}

// Stop cancels every pending task and closes the group.
func (g *Group) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	for id, t := range g.tasks {
		if t.timer != nil {
			t.timer.Stop()
		}
		delete(g.tasks, id)
	}
}

// Pending reports how many tasks are still registered.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}

// Stopped reports whether Stop has been called.
func (g *Group) Stopped() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}
