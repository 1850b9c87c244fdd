// Package schedule owns the timers of a dashboard: a Clock to read and wait on
// time, and a Group that registers periodic and one-shot tasks and cancels
// them all at once on teardown.
package schedule

import "time"

// Clock is the time source used by every scheduled task.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	Stop() bool
}

type realClock struct{}

// Real returns a Clock backed by the runtime timers.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
