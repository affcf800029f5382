// Package tempo converts a tempo and bar count into absolute durations and
// derives bar/beat positions from elapsed time. Every function is pure.
//
// Callers are expected to clamp bpm into [MinBPM, MaxBPM] before calling in;
// a bpm of zero or less is not handled here.
package tempo

import (
	"math"
	"time"
)

const (
	BeatsPerBar = 4
	MinBPM      = 60
	MaxBPM      = 200

	msPerMinute = 60000.0
)

// Position is a point on a timeline. It is always derived, never stored.
type Position struct {
	Fraction float64 // 0..1 through the timeline
	Bar      int     // 1-based
	Beat     int     // 1..BeatsPerBar
}

// Start is the position at the very beginning of a timeline.
func Start() Position {
	return Position{Fraction: 0, Bar: 1, Beat: 1}
}

// BeatMs returns the length of one beat in milliseconds.
func BeatMs(bpm int) float64 {
	return msPerMinute / float64(bpm)
}

// DurationMs returns bars * 4 * (60000 / bpm).
func DurationMs(bars, bpm int) float64 {
	return float64(bars*BeatsPerBar) * BeatMs(bpm)
}

// BeatDuration is BeatMs as a time.Duration.
func BeatDuration(bpm int) time.Duration {
	return msToDuration(BeatMs(bpm))
}

// BarDuration is the length of one bar.
func BarDuration(bpm int) time.Duration {
	return msToDuration(BeatMs(bpm) * BeatsPerBar)
}

// Duration is DurationMs as a time.Duration.
func Duration(bars, bpm int) time.Duration {
	return msToDuration(DurationMs(bars, bpm))
}

// At computes the position elapsedMs into a timeline of totalMs that spans
// the given number of bars. The fraction is clamped to [0, 1]. At the very end
// of the timeline the position stays on the last beat instead of rolling into
// a bar that does not exist.
func At(elapsedMs, totalMs float64, bars int) Position {
	if totalMs <= 0 || bars <= 0 {
		return Start()
	}

	fraction := elapsedMs / totalMs
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}

	beats := bars * BeatsPerBar
	beatIndex := int(math.Floor(fraction * float64(beats)))
	if beatIndex >= beats {
		beatIndex = beats - 1
	}

	return Position{
		Fraction: fraction,
		Bar:      beatIndex/BeatsPerBar + 1,
		Beat:     beatIndex%BeatsPerBar + 1,
	}
}

// Since is At for durations, the form the schedulers use.
func Since(elapsed, total time.Duration, bars int) Position {
	return At(durationToMs(elapsed), durationToMs(total), bars)
}

// ClampBPM pins bpm into [MinBPM, MaxBPM].
func ClampBPM(bpm int) int {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

func msToDuration(ms float64) time.Duration {
	return time.Duration(math.Round(ms * float64(time.Millisecond)))
}

func durationToMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
