// Package capture holds the hit log filled while recording and the immutable
// Recording it turns into when recording stops.
package capture

import (
	"time"

	"github.com/NoahYB/drum-machine/internal/tempo"
)

// HitEvent is one pad trigger, timed from the start of its recording window.
type HitEvent struct {
	Pad      int
	OffsetMs int
}

// Recording is a finished take. It is replaced wholesale, never edited.
type Recording struct {
	Hits []HitEvent
	Bars int
	BPM  int
}

// DurationMs is bars * 4 beats * (60000 / bpm).
func (r Recording) DurationMs() float64 {
	return tempo.DurationMs(r.Bars, r.BPM)
}

func (r Recording) Duration() time.Duration {
	return tempo.Duration(r.Bars, r.BPM)
}

func (r Recording) Empty() bool {
	return len(r.Hits) == 0
}

// Log is an append-only list of hits in call order. Gating on whether the
// transport is recording is the caller's job.
type Log struct {
	hits []HitEvent
}

// OnHit appends a hit. Duplicate pads and offsets are kept.
func (l *Log) OnHit(pad, offsetMs int) {
	l.hits = append(l.hits, HitEvent{Pad: pad, OffsetMs: offsetMs})
}

// Reset empties the log for a new recording cycle.
func (l *Log) Reset() {
	l.hits = nil
}

func (l *Log) Len() int {
	return len(l.hits)
}

// Hits returns a copy of the captured hits.
func (l *Log) Hits() []HitEvent {
	out := make([]HitEvent, len(l.hits))
	copy(out, l.hits)
	return out
}

// Recording materializes the log into a Recording. The log keeps no reference
// to the returned hits.
func (l *Log) Recording(bars, bpm int) Recording {
	return Recording{Hits: l.Hits(), Bars: bars, BPM: bpm}
}
