package sched

import (
	"container/heap"
	"time"
)

// Fake is a manually driven Scheduler. Time only moves on Advance, and every
// callback runs synchronously inside it, in due order. Callbacks due at the
// same instant run in the order they were scheduled.
type Fake struct {
	now   time.Time
	seq   uint64
	queue fakeQueue
}

// NewFake returns a fake clock starting at the Unix epoch.
func NewFake() *Fake {
	return &Fake{now: time.Unix(0, 0)}
}

func (f *Fake) Now() time.Time {
	return f.now
}

func (f *Fake) After(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	f.seq++
	t := &fakeTimer{when: f.now.Add(d), seq: f.seq, fn: fn}
	heap.Push(&f.queue, t)
	return t
}

// Do runs fn immediately; there is only one thread.
func (f *Fake) Do(fn func()) {
	fn()
}

// Advance moves the clock forward by d, running every callback that comes
// due, including ones scheduled by callbacks along the way.
func (f *Fake) Advance(d time.Duration) {
	target := f.now.Add(d)
	for f.queue.Len() > 0 {
		next := f.queue[0]
		if next.when.After(target) {
			break
		}
		heap.Pop(&f.queue)
		if next.cancelled {
			continue
		}
		f.now = next.when
		next.fired = true
		next.fn()
	}
	f.now = target
}

// Elapsed is the time since the fake started.
func (f *Fake) Elapsed() time.Duration {
	return f.now.Sub(time.Unix(0, 0))
}

// Pending counts callbacks that are still scheduled.
func (f *Fake) Pending() int {
	n := 0
	for _, t := range f.queue {
		if !t.cancelled {
			n++
		}
	}
	return n
}

type fakeTimer struct {
	when      time.Time
	seq       uint64
	fn        func()
	fired     bool
	cancelled bool
	index     int
}

func (t *fakeTimer) Cancel() {
	if !t.fired {
		t.cancelled = true
	}
}

func (t *fakeTimer) Pending() bool {
	return !t.fired && !t.cancelled
}

type fakeQueue []*fakeTimer

func (q fakeQueue) Len() int { return len(q) }

func (q fakeQueue) Less(i, j int) bool {
	if q[i].when.Equal(q[j].when) {
		return q[i].seq < q[j].seq
	}
	return q[i].when.Before(q[j].when)
}

func (q fakeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *fakeQueue) Push(x any) {
	t := x.(*fakeTimer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *fakeQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
