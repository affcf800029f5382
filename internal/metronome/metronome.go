// Package metronome emits one click per beat while a timeline is active.
package metronome

import (
	"log/slog"
	"time"

	"github.com/NoahYB/drum-machine/internal/sched"
	"github.com/NoahYB/drum-machine/internal/tempo"
)

// ClickSink renders a click. Downbeat is set on every fourth click, starting
// with the first.
type ClickSink interface {
	Click(downbeat bool)
}

// ClickFunc adapts a function to ClickSink.
type ClickFunc func(downbeat bool)

func (f ClickFunc) Click(downbeat bool) { f(downbeat) }

// Clicks fans a click out to several sinks.
type Clicks []ClickSink

func (c Clicks) Click(downbeat bool) {
	for _, s := range c {
		s.Click(downbeat)
	}
}

// Metronome drives the beat. Beats are anchored to the instant Start was
// called (beat n is due at start + n*beat), so timer jitter never accumulates.
//
// When disabled it still keeps time but stays silent; the count-in relies on
// that to find bar boundaries with the clicks turned off.
type Metronome struct {
	sched   sched.Scheduler
	sink    ClickSink
	log     *slog.Logger
	enabled bool

	running bool
	bpm     int
	beat    time.Duration
	anchor  time.Time
	count   int
	gen     int
	timers  sched.Group

	// OnBeat observes every beat, zero-based, before its click is emitted.
	// It may stop or restart the metronome.
	OnBeat func(n int)
}

// New creates an enabled, stopped metronome. sink may be nil.
func New(s sched.Scheduler, sink ClickSink, log *slog.Logger) *Metronome {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Metronome{
		sched:   s,
		sink:    sink,
		log:     log.With("component", "metronome"),
		enabled: true,
	}
}

// SetEnabled turns the clicks on or off without touching the beat.
func (m *Metronome) SetEnabled(on bool) {
	m.enabled = on
}

func (m *Metronome) Enabled() bool {
	return m.enabled
}

func (m *Metronome) Running() bool {
	return m.running
}

// Beats returns how many beats have been emitted since Start.
func (m *Metronome) Beats() int {
	return m.count
}

// Start begins a click stream at bpm and clicks once immediately. A running
// stream is stopped first, so there is never more than one.
func (m *Metronome) Start(bpm int) {
	if m.running {
		m.Stop()
	}
	m.running = true
	m.bpm = bpm
	m.beat = tempo.BeatDuration(bpm)
	m.anchor = m.sched.Now()
	m.count = 0
	m.gen++
	m.log.Debug("start", "bpm", bpm, "enabled", m.enabled)
	m.tick()
}

// Stop cancels every pending click. Stopping a stopped metronome is a no-op.
func (m *Metronome) Stop() {
	if !m.running {
		return
	}
	m.running = false
	n := m.timers.CancelAll()
	m.log.Debug("stop", "beats", m.count, "cancelled", n)
}

func (m *Metronome) tick() {
	n := m.count
	m.count++
	gen := m.gen

	if m.OnBeat != nil {
		m.OnBeat(n)
	}
	if !m.running || gen != m.gen {
		return
	}

	if m.enabled && m.sink != nil {
		m.sink.Click(n%tempo.BeatsPerBar == 0)
	}

	next := m.anchor.Add(time.Duration(m.count) * m.beat)
	m.timers.After(m.sched, next.Sub(m.sched.Now()), m.tick)
}
