package audio

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var ErrNotWAV = errors.New("not a wav file")

// SampleBank holds one mono sample per pad, at the engine's sample rate.
type SampleBank struct {
	samples map[int][]float32
}

// LoadSampleBank decodes every file in paths. A nil map gives an empty bank.
func LoadSampleBank(paths map[int]string) (*SampleBank, error) {
	b := &SampleBank{samples: make(map[int][]float32, len(paths))}
	pads := make([]int, 0, len(paths))
	for pad := range paths {
		pads = append(pads, pad)
	}
	sort.Ints(pads)

	for _, pad := range pads {
		s, err := LoadWAV(paths[pad])
		if err != nil {
			return nil, fmt.Errorf("pad %d: %w", pad, err)
		}
		b.samples[pad] = s
	}
	return b, nil
}

func (b *SampleBank) Sample(pad int) ([]float32, bool) {
	s, ok := b.samples[pad]
	return s, ok
}

func (b *SampleBank) Len() int {
	return len(b.samples)
}

// LoadWAV reads a PCM WAV file and returns it as mono float samples in
// [-1, 1] at the engine's sample rate.
func LoadWAV(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotWAV)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return toMono(buf, sampleRate), nil
}

// toMono averages the channels, scales by the source bit depth and
// resamples to rate by nearest neighbour.
func toMono(buf *audio.IntBuffer, rate int) []float32 {
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil
	}
	channels := max(buf.Format.NumChannels, 1)
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = 16
	}
	scale := float64(int64(1) << (depth - 1))

	frames := len(buf.Data) / channels
	mono := make([]float64, frames)
	for i := range mono {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		mono[i] = sum / float64(channels) / scale
	}

	src := buf.Format.SampleRate
	if src <= 0 || src == rate {
		out := make([]float32, frames)
		for i, v := range mono {
			out[i] = float32(v)
		}
		return out
	}

	n := int(int64(frames) * int64(rate) / int64(src))
	out := make([]float32, n)
	for i := range out {
		j := int(int64(i) * int64(src) / int64(rate))
		if j >= frames {
			j = frames - 1
		}
		out[i] = float32(mono[j])
	}
	return out
}
