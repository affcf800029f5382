package transport

import "github.com/NoahYB/drum-machine/internal/tempo"

// Remote is a Transport driven from other goroutines: every call is handed
// to the scheduler's thread and waits for it. If the scheduler has stopped,
// commands do nothing and State returns a zero snapshot.
type Remote struct {
	t *Transport
}

// Remote returns a handle safe to use off the scheduler's thread.
func (t *Transport) Remote() *Remote {
	return &Remote{t: t}
}

func (r *Remote) Record() error {
	return r.call(r.t.Record)
}

func (r *Remote) PlayStop() error {
	return r.call(r.t.PlayStop)
}

func (r *Remote) Stop() error {
	return r.call(r.t.Stop)
}

func (r *Remote) Clear() error {
	return r.call(r.t.Clear)
}

func (r *Remote) Hit(pad int) bool {
	var captured bool
	r.t.sched.Do(func() { captured = r.t.Hit(pad) })
	return captured
}

func (r *Remote) SetSettings(s Settings) {
	r.t.sched.Do(func() { r.t.SetSettings(s) })
}

func (r *Remote) State() State {
	st := State{Position: tempo.Start()}
	r.t.sched.Do(func() { st = r.t.State() })
	return st
}

func (r *Remote) call(fn func() error) error {
	var err error
	r.t.sched.Do(func() { err = fn() })
	return err
}
