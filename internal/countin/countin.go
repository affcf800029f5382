// Package countin gates entry into recording behind N bars of pre-roll.
//
// Bar boundaries come from the metronome's own beat count (every fourth beat
// starts a bar) rather than from a second timer, so the bar counter and the
// clicks cannot drift apart. The metronome keeps time even when its clicks
// are disabled.
package countin

import (
	"log/slog"

	"github.com/NoahYB/drum-machine/internal/metronome"
	"github.com/NoahYB/drum-machine/internal/tempo"
)

// Controller runs one count-in at a time.
type Controller struct {
	metro *metronome.Metronome
	log   *slog.Logger

	active bool
	bar    int
	bars   int

	// OnBar reports entry into bar k of n, starting with bar 1.
	OnBar func(k, n int)
	// OnComplete fires once, on the beat that would start bar n+1, after the
	// controller is back to idle and the metronome is stopped.
	OnComplete func()
}

func New(m *metronome.Metronome, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{metro: m, log: log.With("component", "countin")}
}

// Start counts in bars bars at bpm. It returns false, doing nothing, when bars
// is zero or less (no count-in) or a count-in is already running.
func (c *Controller) Start(bpm, bars int) bool {
	if bars <= 0 || c.active {
		return false
	}
	c.active = true
	c.bars = bars
	c.bar = 1
	c.log.Debug("start", "bpm", bpm, "bars", bars)

	if c.OnBar != nil {
		c.OnBar(1, bars)
	}
	c.metro.OnBeat = c.onBeat
	c.metro.Start(bpm)
	return true
}

// Cancel abandons a running count-in. It returns false if none was running.
func (c *Controller) Cancel() bool {
	if !c.active {
		return false
	}
	c.log.Debug("cancel", "bar", c.bar, "bars", c.bars)
	c.reset()
	return true
}

func (c *Controller) Active() bool {
	return c.active
}

// Bar returns the current bar (1-based) and the bar count, or 0, 0 when idle.
func (c *Controller) Bar() (k, n int) {
	if !c.active {
		return 0, 0
	}
	return c.bar, c.bars
}

func (c *Controller) onBeat(n int) {
	if !c.active || n == 0 || n%tempo.BeatsPerBar != 0 {
		return
	}

	next := n/tempo.BeatsPerBar + 1
	if next > c.bars {
		c.log.Debug("complete", "bars", c.bars)
		c.reset()
		if c.OnComplete != nil {
			c.OnComplete()
		}
		return
	}

	c.bar = next
	if c.OnBar != nil {
		c.OnBar(next, c.bars)
	}
}

func (c *Controller) reset() {
	c.metro.OnBeat = nil
	c.metro.Stop()
	c.active = false
	c.bar = 0
	c.bars = 0
}
