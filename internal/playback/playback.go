// Package playback loops a finished Recording in real time.
//
// Each iteration re-anchors to the clock: the iteration start is read from
// Now() rather than advanced by the loop length, so timer error from one
// iteration never carries into the next.
package playback

import (
	"errors"
	"log/slog"
	"time"

	"github.com/NoahYB/drum-machine/internal/capture"
	"github.com/NoahYB/drum-machine/internal/sched"
	"github.com/NoahYB/drum-machine/internal/tempo"
)

const (
	DefaultPollInterval = 25 * time.Millisecond
	DefaultSettleDelay  = 20 * time.Millisecond
)

var (
	ErrEmpty   = errors.New("recording has no hits")
	ErrPlaying = errors.New("already playing")
)

// PadSink plays a pad. It must not block and silently ignores unbound pads.
type PadSink interface {
	PlayPad(pad int)
}

// PadFunc adapts a function to PadSink.
type PadFunc func(pad int)

func (f PadFunc) PlayPad(pad int) { f(pad) }

// Pads fans a trigger out to several sinks.
type Pads []PadSink

func (p Pads) PlayPad(pad int) {
	for _, s := range p {
		s.PlayPad(pad)
	}
}

// Beat is the metronome as seen by playback: restarted at the top of every
// iteration and stopped at its end.
type Beat interface {
	Start(bpm int)
	Stop()
}

type Options struct {
	// PollInterval is how often the position is recomputed and the end of an
	// iteration detected.
	PollInterval time.Duration
	// SettleDelay is the pause between iterations.
	SettleDelay time.Duration
	Logger      *slog.Logger
}

// Scheduler plays one Recording at a time.
type Scheduler struct {
	sched  sched.Scheduler
	sink   PadSink
	log    *slog.Logger
	poll   time.Duration
	settle time.Duration

	beat      Beat
	rec       capture.Recording
	duration  time.Duration
	playing   bool
	loopStart time.Time
	iteration int
	position  tempo.Position

	triggers sched.Group
	timers   sched.Group

	// OnPosition observes every position update.
	OnPosition func(tempo.Position)
	// OnIteration fires at the start of each iteration, 1-based.
	OnIteration func(n int)
}

func New(s sched.Scheduler, sink PadSink, opts Options) *Scheduler {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		sched:    s,
		sink:     sink,
		log:      opts.Logger.With("component", "playback"),
		poll:     opts.PollInterval,
		settle:   opts.SettleDelay,
		position: tempo.Start(),
	}
}

// SetBeat sets the metronome driven by the next Start; nil plays without one.
func (p *Scheduler) SetBeat(b Beat) {
	p.beat = b
}

// Start loops rec until Stop.
func (p *Scheduler) Start(rec capture.Recording) error {
	if p.playing {
		return ErrPlaying
	}
	if rec.Empty() {
		return ErrEmpty
	}
	p.rec = rec
	p.duration = rec.Duration()
	p.playing = true
	p.iteration = 0
	p.log.Debug("start", "hits", len(rec.Hits), "bars", rec.Bars, "bpm", rec.BPM, "duration", p.duration)
	p.begin()
	return nil
}

// Stop cancels every pending trigger, the position poll, a pending restart
// and the metronome, and rewinds the position. No trigger fires after Stop
// returns.
func (p *Scheduler) Stop() {
	if !p.playing {
		return
	}
	p.playing = false
	n := p.triggers.CancelAll()
	p.timers.CancelAll()
	if p.beat != nil {
		p.beat.Stop()
	}
	p.position = tempo.Start()
	p.log.Debug("stop", "iteration", p.iteration, "cancelled", n)
}

func (p *Scheduler) Playing() bool {
	return p.playing
}

func (p *Scheduler) Position() tempo.Position {
	return p.position
}

// Iteration is the 1-based number of the current iteration, 0 when stopped.
func (p *Scheduler) Iteration() int {
	if !p.playing {
		return 0
	}
	return p.iteration
}

// Pending reports how many triggers of the current iteration have not fired.
func (p *Scheduler) Pending() int {
	return p.triggers.Len()
}

func (p *Scheduler) begin() {
	p.loopStart = p.sched.Now()
	p.iteration++
	p.position = tempo.Start()

	for _, hit := range p.rec.Hits {
		pad := hit.Pad
		offset := time.Duration(hit.OffsetMs) * time.Millisecond
		p.triggers.After(p.sched, offset, func() { p.sink.PlayPad(pad) })
	}
	if p.beat != nil {
		p.beat.Start(p.rec.BPM)
	}
	if p.OnIteration != nil {
		p.OnIteration(p.iteration)
	}
	p.timers.After(p.sched, p.poll, p.update)
}

func (p *Scheduler) update() {
	elapsed := p.sched.Now().Sub(p.loopStart)
	p.position = tempo.Since(elapsed, p.duration, p.rec.Bars)
	if p.OnPosition != nil {
		p.OnPosition(p.position)
	}

	if elapsed < p.duration {
		p.timers.After(p.sched, p.poll, p.update)
		return
	}
	p.finish()
}

// finish ends the current iteration and arms the next one.
func (p *Scheduler) finish() {
	if n := p.triggers.CancelAll(); n > 0 {
		p.log.Warn("triggers left at end of iteration", "iteration", p.iteration, "count", n)
	}
	p.timers.CancelAll()
	if p.beat != nil {
		p.beat.Stop()
	}
	p.timers.After(p.sched, p.settle, p.begin)
}
