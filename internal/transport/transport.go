// Package transport composes the metronome, count-in, capture log and
// playback scheduler into one recorder/player with a single mode.
//
// Every method must be called on the scheduler's thread.
package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/NoahYB/drum-machine/internal/capture"
	"github.com/NoahYB/drum-machine/internal/countin"
	"github.com/NoahYB/drum-machine/internal/metronome"
	"github.com/NoahYB/drum-machine/internal/playback"
	"github.com/NoahYB/drum-machine/internal/sched"
	"github.com/NoahYB/drum-machine/internal/tempo"
)

var (
	// ErrInvalidTransition is returned for a command the current mode does
	// not accept. State is left untouched.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrEmptyRecording is returned when play is asked for with nothing
	// recorded.
	ErrEmptyRecording = errors.New("nothing recorded")
)

type Mode int

const (
	Idle Mode = iota
	CountingIn
	Recording
	Playing
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case CountingIn:
		return "counting in"
	case Recording:
		return "recording"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Settings are read when a transition happens, never while it runs.
type Settings struct {
	BPM         int
	Bars        int
	Metronome   bool
	CountInBars int
}

func DefaultSettings() Settings {
	return Settings{BPM: 120, Bars: 8, Metronome: true, CountInBars: 1}
}

// Clamp pins bpm into the tempo range, falls back to the default bar count
// for a non-positive one and keeps the count-in between 0 and 2 bars.
func (s Settings) Clamp() Settings {
	s.BPM = tempo.ClampBPM(s.BPM)
	if s.Bars <= 0 {
		s.Bars = DefaultSettings().Bars
	}
	s.CountInBars = min(max(s.CountInBars, 0), 2)
	return s
}

// State is a snapshot for the UI.
type State struct {
	Mode     Mode
	Position tempo.Position
	// CountInBar of CountInBars while counting in, 0 otherwise.
	CountInBar  int
	CountInBars int
	// Captured is the number of hits in the open recording window.
	Captured int
	// Hits is the number of hits in the stored recording.
	Hits         int
	HasRecording bool
	Iteration    int
	Settings     Settings
}

type Options struct {
	Settings     Settings
	Logger       *slog.Logger
	PollInterval time.Duration
	SettleDelay  time.Duration
}

type Transport struct {
	sched    sched.Scheduler
	pads     playback.PadSink
	log      *slog.Logger
	poll     time.Duration
	settings Settings

	mode    Mode
	metro   *metronome.Metronome
	countin *countin.Controller
	player  *playback.Scheduler
	capture capture.Log

	rec    capture.Recording
	hasRec bool

	// the open recording window
	take     Settings
	start    time.Time
	window   time.Duration
	position tempo.Position
	timers   sched.Group

	// OnChange observes every mode change.
	OnChange func(from, to Mode)
}

// New wires a transport to its output sinks. Either sink may be nil.
func New(s sched.Scheduler, pads playback.PadSink, clicks metronome.ClickSink, opts Options) *Transport {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = playback.DefaultPollInterval
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = playback.DefaultSettleDelay
	}
	if opts.Settings == (Settings{}) {
		opts.Settings = DefaultSettings()
	}
	if pads == nil {
		pads = playback.PadFunc(func(int) {})
	}

	t := &Transport{
		sched:    s,
		pads:     pads,
		log:      opts.Logger.With("component", "transport"),
		poll:     opts.PollInterval,
		settings: opts.Settings.Clamp(),
		position: tempo.Start(),
	}
	t.metro = metronome.New(s, clicks, opts.Logger)
	t.countin = countin.New(t.metro, opts.Logger)
	t.countin.OnComplete = t.beginRecording
	t.player = playback.New(s, pads, playback.Options{
		PollInterval: opts.PollInterval,
		SettleDelay:  opts.SettleDelay,
		Logger:       opts.Logger,
	})
	t.player.SetBeat(t.metro)
	return t
}

// SetSettings stores new settings. They apply from the next transition on.
func (t *Transport) SetSettings(s Settings) {
	t.settings = s.Clamp()
	t.log.Debug("settings", "bpm", t.settings.BPM, "bars", t.settings.Bars,
		"metronome", t.settings.Metronome, "count_in", t.settings.CountInBars)
}

func (t *Transport) Settings() Settings {
	return t.settings
}

func (t *Transport) Mode() Mode {
	return t.mode
}

// Recording returns the stored recording, if any.
func (t *Transport) Recording() (capture.Recording, bool) {
	return t.rec, t.hasRec
}

func (t *Transport) State() State {
	st := State{
		Mode:         t.mode,
		Position:     tempo.Start(),
		Captured:     t.capture.Len(),
		HasRecording: t.hasRec,
		Settings:     t.settings,
	}
	if t.hasRec {
		st.Hits = len(t.rec.Hits)
	}
	switch t.mode {
	case CountingIn:
		st.CountInBar, st.CountInBars = t.countin.Bar()
	case Recording:
		st.Position = t.position
	case Playing:
		st.Position = t.player.Position()
		st.Iteration = t.player.Iteration()
	}
	return st
}

// Record is the record button. From Idle it starts a new take, through the
// count-in when one is configured. While counting in it cancels, while
// recording it stops. It is rejected while playing.
func (t *Transport) Record() error {
	switch t.mode {
	case Idle:
		t.take = t.settings
		t.capture.Reset()
		t.metro.SetEnabled(t.take.Metronome)
		if t.take.CountInBars > 0 {
			t.setMode(CountingIn)
			t.countin.Start(t.take.BPM, t.take.CountInBars)
			return nil
		}
		t.beginRecording()
		return nil
	case CountingIn:
		t.cancelCountIn()
		return nil
	case Recording:
		t.stopRecording("stop")
		return nil
	default:
		t.log.Debug("rejected", "command", "record", "mode", t.mode)
		return fmt.Errorf("record while %s: %w", t.mode, ErrInvalidTransition)
	}
}

// PlayStop is the play button: it starts playback from Idle and otherwise
// stops whatever is running.
func (t *Transport) PlayStop() error {
	if t.mode != Idle {
		return t.Stop()
	}
	if !t.hasRec || t.rec.Empty() {
		t.log.Debug("rejected", "command", "play", "reason", "empty")
		return ErrEmptyRecording
	}
	t.metro.SetEnabled(t.settings.Metronome)
	if err := t.player.Start(t.rec); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}
	t.setMode(Playing)
	return nil
}

// Stop ends count-in, recording or playback.
func (t *Transport) Stop() error {
	switch t.mode {
	case CountingIn:
		t.cancelCountIn()
	case Recording:
		t.stopRecording("stop")
	case Playing:
		t.player.Stop()
		t.setMode(Idle)
	default:
		return fmt.Errorf("stop while %s: %w", t.mode, ErrInvalidTransition)
	}
	return nil
}

// Clear discards the stored recording. Only legal while Idle.
func (t *Transport) Clear() error {
	if t.mode != Idle {
		t.log.Debug("rejected", "command", "clear", "mode", t.mode)
		return fmt.Errorf("clear while %s: %w", t.mode, ErrInvalidTransition)
	}
	t.rec = capture.Recording{}
	t.hasRec = false
	t.capture.Reset()
	t.log.Debug("cleared")
	return nil
}

// Hit plays pad right away and, while recording, captures it. It reports
// whether the hit was captured. Negative pads are ignored.
func (t *Transport) Hit(pad int) bool {
	if pad < 0 {
		t.log.Debug("rejected", "command", "hit", "pad", pad)
		return false
	}
	t.pads.PlayPad(pad)
	if t.mode != Recording {
		return false
	}
	elapsed := t.sched.Now().Sub(t.start)
	if elapsed < 0 || elapsed >= t.window {
		return false
	}
	t.capture.OnHit(pad, int(elapsed/time.Millisecond))
	return true
}

func (t *Transport) beginRecording() {
	t.start = t.sched.Now()
	t.window = tempo.Duration(t.take.Bars, t.take.BPM)
	t.position = tempo.Start()
	t.setMode(Recording)

	t.timers.After(t.sched, t.window, func() { t.stopRecording("window closed") })
	t.timers.After(t.sched, t.poll, t.updatePosition)
	t.metro.Start(t.take.BPM)
}

func (t *Transport) updatePosition() {
	elapsed := t.sched.Now().Sub(t.start)
	t.position = tempo.Since(elapsed, t.window, t.take.Bars)
	if elapsed < t.window {
		t.timers.After(t.sched, t.poll, t.updatePosition)
	}
}

func (t *Transport) stopRecording(reason string) {
	t.timers.CancelAll()
	t.metro.Stop()
	t.rec = t.capture.Recording(t.take.Bars, t.take.BPM)
	t.hasRec = true
	t.position = tempo.Start()
	t.log.Debug("recorded", "reason", reason, "hits", len(t.rec.Hits), "bars", t.rec.Bars, "bpm", t.rec.BPM)
	t.setMode(Idle)
}

func (t *Transport) cancelCountIn() {
	t.countin.Cancel()
	t.setMode(Idle)
}

func (t *Transport) setMode(m Mode) {
	from := t.mode
	t.mode = m
	t.log.Debug("transition", "from", from, "to", m)
	if t.OnChange != nil {
		t.OnChange(from, m)
	}
}
