package audio

import (
	"math"
	"sync"
	"time"
)

const (
	sampleRate   = 44100
	channelCount = 2 // stereo
	bitDepth     = 2 // 16-bit
)

// WaveType represents different oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
)

// Drum is a synthesized one-shot: an oscillator with an optional pitch
// sweep, mixed with noise, under an exponential decay.
type Drum struct {
	Name    string
	Wave    WaveType
	Note    uint8   // start pitch
	EndNote uint8   // pitch at the end of the decay, 0 for no sweep
	Noise   float64 // 0 tone only, 1 noise only
	Decay   time.Duration
	Gain    float64
}

// DefaultKit is bound to pads 0-7 when no sample is loaded for them.
var DefaultKit = []Drum{
	{Name: "kick", Wave: WaveSine, Note: 43, EndNote: 28, Decay: 350 * time.Millisecond, Gain: 1},
	{Name: "snare", Wave: WaveTriangle, Note: 55, Noise: 0.7, Decay: 180 * time.Millisecond, Gain: 0.8},
	{Name: "closed hat", Wave: WaveSquare, Note: 100, Noise: 0.9, Decay: 45 * time.Millisecond, Gain: 0.4},
	{Name: "open hat", Wave: WaveSquare, Note: 100, Noise: 0.9, Decay: 300 * time.Millisecond, Gain: 0.35},
	{Name: "low tom", Wave: WaveSine, Note: 50, EndNote: 43, Decay: 300 * time.Millisecond, Gain: 0.8},
	{Name: "high tom", Wave: WaveSine, Note: 57, EndNote: 50, Decay: 250 * time.Millisecond, Gain: 0.8},
	{Name: "clap", Wave: WaveSawtooth, Note: 60, Noise: 0.85, Decay: 120 * time.Millisecond, Gain: 0.6},
	{Name: "rim", Wave: WaveSquare, Note: 84, Noise: 0.2, Decay: 30 * time.Millisecond, Gain: 0.5},
}

// voice is one sounding one-shot. A voice with a sample plays it through
// once; otherwise it runs the oscillator.
type voice struct {
	sample []float32
	pos    int

	wave      WaveType
	frequency float64
	sweep     float64 // per-sample frequency multiplier
	noise     float64
	phase     float64
	seed      uint32

	gain     float64
	envelope float64
	decay    float64 // per-sample envelope multiplier
	active   bool
}

func newDrumVoice(d Drum) *voice {
	n := decaySamples(d.Decay)
	v := &voice{
		wave:      d.Wave,
		frequency: midiNoteToFreq(d.Note),
		sweep:     1,
		noise:     d.Noise,
		seed:      0x9e3779b9,
		gain:      d.Gain,
		envelope:  1,
		decay:     math.Pow(0.001, 1/n),
		active:    true,
	}
	if d.EndNote > 0 {
		v.sweep = math.Pow(midiNoteToFreq(d.EndNote)/v.frequency, 1/n)
	}
	return v
}

func newSampleVoice(sample []float32, gain float64) *voice {
	return &voice{sample: sample, gain: gain, envelope: 1, decay: 1, active: len(sample) > 0}
}

// newBlip is a short sine click.
func newBlip(freq float64, d time.Duration, gain float64) *voice {
	return &voice{
		wave:      WaveSine,
		frequency: freq,
		sweep:     1,
		gain:      gain,
		envelope:  1,
		decay:     math.Pow(0.001, 1/decaySamples(d)),
		active:    true,
	}
}

func (v *voice) next() float64 {
	if v.sample != nil {
		if v.pos >= len(v.sample) {
			v.active = false
			return 0
		}
		s := float64(v.sample[v.pos]) * v.gain
		v.pos++
		return s
	}

	out := generateWave(v.wave, v.phase)
	if v.noise > 0 {
		out = out*(1-v.noise) + v.white()*v.noise
	}
	out *= v.envelope * v.gain

	v.phase += v.frequency / sampleRate
	if v.phase >= 1.0 {
		v.phase -= 1.0
	}
	v.frequency *= v.sweep
	v.envelope *= v.decay
	if v.envelope < 0.001 {
		v.active = false
	}
	return out
}

// white is xorshift noise in [-1, 1).
func (v *voice) white() float64 {
	v.seed ^= v.seed << 13
	v.seed ^= v.seed >> 17
	v.seed ^= v.seed << 5
	return float64(v.seed)/float64(math.MaxUint32)*2 - 1
}

// mixer sums every active voice into 16-bit stereo. Voices are started from
// the scheduler's thread and drained from the audio thread.
type mixer struct {
	mu        sync.Mutex
	voices    []*voice
	maxVoices int
	volume    float64
}

func newMixer() *mixer {
	return &mixer{maxVoices: 64, volume: 0.6}
}

// start adds v, stealing the oldest voice when all are busy.
func (m *mixer) start(v *voice) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.voices {
		if !existing.active {
			m.voices[i] = v
			return
		}
	}
	if len(m.voices) < m.maxVoices {
		m.voices = append(m.voices, v)
		return
	}
	copy(m.voices, m.voices[1:])
	m.voices[len(m.voices)-1] = v
}

func (m *mixer) setVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = min(max(vol, 0), 1)
}

func (m *mixer) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.voices {
		if v.active {
			n++
		}
	}
	return n
}

func (m *mixer) Read(buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	numSamples := len(buf) / (channelCount * bitDepth)
	for i := 0; i < numSamples; i++ {
		var sample float64
		for _, v := range m.voices {
			if v.active {
				sample += v.next()
			}
		}

		sample *= m.volume
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}

		sampleInt := int16(sample * 32767)
		idx := i * channelCount * bitDepth
		buf[idx] = byte(sampleInt)
		buf[idx+1] = byte(sampleInt >> 8)
		buf[idx+2] = byte(sampleInt)
		buf[idx+3] = byte(sampleInt >> 8)
	}

	return len(buf), nil
}

func generateWave(waveType WaveType, phase float64) float64 {
	switch waveType {
	case WaveSine:
		return math.Sin(2 * math.Pi * phase)
	case WaveSquare:
		if phase < 0.5 {
			return 0.8
		}
		return -0.8
	case WaveSawtooth:
		return 2*phase - 1
	case WaveTriangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

func decaySamples(d time.Duration) float64 {
	return max(d.Seconds()*sampleRate, 1)
}

// midiNoteToFreq converts a MIDI note number to frequency in Hz
func midiNoteToFreq(note uint8) float64 {
	// A4 (note 69) = 440 Hz
	return 440.0 * math.Pow(2.0, (float64(note)-69.0)/12.0)
}
