// Package sched provides the deferred-callback primitive every timing
// component is built on: callbacks scheduled against a monotonic clock and
// executed one at a time on a single logical thread.
package sched

import "time"

// Handle is a pending callback.
type Handle interface {
	// Cancel prevents the callback from running. Cancelling a handle that has
	// already fired or been cancelled is a no-op.
	Cancel()
	// Pending reports whether the callback is still waiting to run.
	Pending() bool
}

// Scheduler runs deferred callbacks sequentially. Callbacks scheduled for the
// same instant run in an unspecified order.
type Scheduler interface {
	Now() time.Time
	// After schedules fn to run d from now on the scheduler's thread.
	After(d time.Duration, fn func()) Handle
	// Do runs fn on the scheduler's thread and waits for it to return. It
	// must not be called from inside a scheduled callback.
	Do(fn func())
}

// Group is an owned collection of handles so that stopping a component is a
// single CancelAll. The zero value is ready to use. A Group belongs to the
// scheduler's thread like the handles it holds.
type Group struct {
	handles []Handle
}

// After schedules fn on s and tracks the handle.
func (g *Group) After(s Scheduler, d time.Duration, fn func()) Handle {
	h := s.After(d, fn)
	g.Add(h)
	return h
}

// Add tracks h. Handles that already fired are dropped on the way in.
func (g *Group) Add(h Handle) {
	live := g.handles[:0]
	for _, existing := range g.handles {
		if existing.Pending() {
			live = append(live, existing)
		}
	}
	g.handles = append(live, h)
}

// CancelAll cancels every tracked handle and empties the group. It returns
// how many handles were still pending.
func (g *Group) CancelAll() int {
	n := 0
	for _, h := range g.handles {
		if h.Pending() {
			n++
		}
		h.Cancel()
	}
	clear(g.handles)
	g.handles = g.handles[:0]
	return n
}

// Len returns the number of pending handles.
func (g *Group) Len() int {
	n := 0
	for _, h := range g.handles {
		if h.Pending() {
			n++
		}
	}
	return n
}
