package tempo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationMs(t *testing.T) {
	for _, bars := range []int{8, 16} {
		for bpm := MinBPM; bpm <= MaxBPM; bpm++ {
			want := float64(bars) * 4 * 60000 / float64(bpm)
			assert.InDelta(t, want, DurationMs(bars, bpm), 1e-9, "bars=%d bpm=%d", bars, bpm)
		}
	}
}

func TestDurationAt120BPM(t *testing.T) {
	assert.Equal(t, 16000.0, DurationMs(8, 120))
	assert.Equal(t, 16*time.Second, Duration(8, 120))
	assert.Equal(t, 500*time.Millisecond, BeatDuration(120))
	assert.Equal(t, 2*time.Second, BarDuration(120))
}

func TestAt(t *testing.T) {
	tests := []struct {
		name    string
		elapsed float64
		total   float64
		bars    int
		want    Position
	}{
		{"start", 0, 16000, 8, Position{0, 1, 1}},
		{"second beat", 500, 16000, 8, Position{500.0 / 16000, 1, 2}},
		{"second bar", 2000, 16000, 8, Position{0.125, 2, 1}},
		{"last beat", 15999, 16000, 8, Position{15999.0 / 16000, 8, 4}},
		{"end stays on last beat", 16000, 16000, 8, Position{1, 8, 4}},
		{"past end clamps", 20000, 16000, 8, Position{1, 8, 4}},
		{"negative clamps", -5, 16000, 8, Position{0, 1, 1}},
		{"zero total", 100, 0, 8, Start()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := At(tt.elapsed, tt.total, tt.bars)
			assert.InDelta(t, tt.want.Fraction, got.Fraction, 1e-12)
			assert.Equal(t, tt.want.Bar, got.Bar)
			assert.Equal(t, tt.want.Beat, got.Beat)
		})
	}
}

func TestSinceMatchesAt(t *testing.T) {
	total := Duration(16, 120)
	for _, elapsed := range []time.Duration{0, 333 * time.Millisecond, 10 * time.Second, total} {
		assert.Equal(t,
			At(float64(elapsed)/float64(time.Millisecond), DurationMs(16, 120), 16),
			Since(elapsed, total, 16))
	}
}

func TestClampBPM(t *testing.T) {
	assert.Equal(t, 60, ClampBPM(10))
	assert.Equal(t, 60, ClampBPM(0))
	assert.Equal(t, 200, ClampBPM(250))
	assert.Equal(t, 128, ClampBPM(128))
}
