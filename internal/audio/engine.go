// Package audio renders pad hits and metronome clicks on the sound card.
package audio

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	clickLength   = 30 * time.Millisecond
	downbeatPitch = 1500.0
	beatPitch     = 1000.0
)

type Options struct {
	// Volume is the master volume, 0-1.
	Volume float64
	// Samples maps pads to WAV files. Pads without one use DefaultKit.
	Samples map[int]string
	Logger  *slog.Logger
}

// Engine owns the single output stream. PlayPad and Click only add a voice
// to the mix, so they never block and are safe from any goroutine.
type Engine struct {
	otoCtx *oto.Context
	player *oto.Player
	mix    *mixer
	bank   *SampleBank
	log    *slog.Logger
}

// NewEngine opens the default output device.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	bank, err := LoadSampleBank(opts.Samples)
	if err != nil {
		return nil, err
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   10 * time.Millisecond,
	}
	otoCtx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-readyChan

	e := newEngine(bank, opts.Logger)
	e.otoCtx = otoCtx
	if opts.Volume > 0 {
		e.mix.setVolume(opts.Volume)
	}
	e.player = otoCtx.NewPlayer(e.mix)
	e.player.Play()
	e.log.Info("audio ready", "sample_rate", sampleRate, "samples", bank.Len())
	return e, nil
}

func newEngine(bank *SampleBank, log *slog.Logger) *Engine {
	if bank == nil {
		bank = &SampleBank{}
	}
	return &Engine{mix: newMixer(), bank: bank, log: log.With("component", "audio")}
}

// PlayPad starts the pad's sample, or its kit drum. Unbound pads are silent.
func (e *Engine) PlayPad(pad int) {
	if s, ok := e.bank.Sample(pad); ok {
		e.mix.start(newSampleVoice(s, 1))
		return
	}
	if pad < 0 || pad >= len(DefaultKit) {
		return
	}
	e.mix.start(newDrumVoice(DefaultKit[pad]))
}

// Click plays a metronome blip, higher on the downbeat.
func (e *Engine) Click(downbeat bool) {
	freq := beatPitch
	if downbeat {
		freq = downbeatPitch
	}
	e.mix.start(newBlip(freq, clickLength, 0.5))
}

// SetVolume sets the master volume (0.0 - 1.0)
func (e *Engine) SetVolume(vol float64) {
	e.mix.setVolume(vol)
}

// Close stops the output stream.
func (e *Engine) Close() error {
	// oto v3.4 releases players on GC; pausing is enough.
	if e.player != nil {
		e.player.Pause()
	}
	return nil
}
