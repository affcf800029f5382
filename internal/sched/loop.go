package sched

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Loop is the real Scheduler. Timers are armed with time.AfterFunc but the
// callbacks are funnelled through one goroutine, the one calling Run, so
// components never see two callbacks at once.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
	log   *slog.Logger
}

// NewLoop creates a loop. Nothing runs until Run is called.
func NewLoop(log *slog.Logger) *Loop {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
		log:   log.With("component", "loop"),
	}
}

// Run executes callbacks until ctx is cancelled. Pending timers are left to
// expire harmlessly once the loop is gone.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Debug("loop started")
	defer l.log.Debug("loop stopped")
	for {
		select {
		case <-ctx.Done():
			l.once.Do(func() { close(l.done) })
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

func (l *Loop) post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Now returns the wall clock, which carries Go's monotonic reading.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// After implements Scheduler. The returned handle must only be used on the
// loop goroutine.
func (l *Loop) After(d time.Duration, fn func()) Handle {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.post(func() {
			// A timer cancelled after it was posted but before it ran ends up here.
			if t.state != statePending {
				return
			}
			t.state = stateFired
			fn()
		})
	})
	return t
}

// Do implements Scheduler. It returns early if the loop has stopped.
func (l *Loop) Do(fn func()) {
	finished := make(chan struct{})
	if !l.post(func() {
		defer close(finished)
		fn()
	}) {
		return
	}
	select {
	case <-finished:
	case <-l.done:
	}
}

type timerState int

const (
	statePending timerState = iota
	stateFired
	stateCancelled
)

type loopTimer struct {
	timer *time.Timer
	state timerState
}

func (t *loopTimer) Cancel() {
	if t.state != statePending {
		return
	}
	t.state = stateCancelled
	t.timer.Stop()
}

func (t *loopTimer) Pending() bool {
	return t.state == statePending
}
