// Package midiio maps MIDI notes to pads: note-ons from a controller become
// pad hits, and pad hits and clicks can be echoed to a MIDI output.
package midiio

import (
	"fmt"
	"log/slog"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

const (
	// DefaultBaseNote is GM kick drum; pads count up from it.
	DefaultBaseNote = 36
	DefaultPads     = 8
	// drumChannel is GM channel 10, zero-based.
	drumChannel = 9

	clickHigh = 76 // hi wood block
	clickLow  = 77 // low wood block
)

// Mapping binds Pads consecutive notes starting at BaseNote to pads 0..Pads-1.
// Channel is 1-16, or 0 to accept any channel (and send on channel 10).
type Mapping struct {
	BaseNote uint8
	Pads     int
	Channel  int
}

func DefaultMapping() Mapping {
	return Mapping{BaseNote: DefaultBaseNote, Pads: DefaultPads}
}

// Pad returns the pad a message hits. Only note-ons with a non-zero velocity
// on the mapped channel and in the mapped range count.
func (m Mapping) Pad(msg midi.Message) (int, bool) {
	var ch, key, vel uint8
	if !msg.GetNoteStart(&ch, &key, &vel) {
		return 0, false
	}
	if m.Channel > 0 && int(ch) != m.Channel-1 {
		return 0, false
	}
	if key < m.BaseNote || int(key-m.BaseNote) >= m.Pads {
		return 0, false
	}
	return int(key - m.BaseNote), true
}

// Note is the note a pad sends, false if the pad is outside the mapping.
func (m Mapping) Note(pad int) (uint8, bool) {
	if pad < 0 || pad >= m.Pads || int(m.BaseNote)+pad > 127 {
		return 0, false
	}
	return m.BaseNote + uint8(pad), true //nolint:gosec // bounded above
}

func (m Mapping) outChannel() uint8 {
	if m.Channel <= 0 || m.Channel > 16 {
		return drumChannel
	}
	return uint8(m.Channel - 1) //nolint:gosec // 1-16
}

// Listen feeds pad hits from in to hit until stop is called. hit runs on the
// driver's goroutine.
func Listen(in drivers.In, m Mapping, hit func(pad int), log *slog.Logger) (stop func(), err error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("component", "midi", "port", in.String())
	stop, err = midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		if pad, ok := m.Pad(msg); ok {
			log.Debug("pad", "pad", pad, "msg", msg.String())
			hit(pad)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to listen to MIDI port %s: %w", in.String(), err)
	}
	log.Info("listening")
	return stop, nil
}

// FindIn opens the input port whose name contains name.
func FindIn(name string) (drivers.In, error) {
	in, err := midi.FindInPort(name)
	if err != nil {
		return nil, fmt.Errorf("MIDI input %q: %w", name, err)
	}
	return in, nil
}

// InPorts lists the available input port names.
func InPorts() []string {
	var names []string
	for _, in := range midi.GetInPorts() {
		names = append(names, in.String())
	}
	return names
}

// OutPorts lists the available output port names.
func OutPorts() []string {
	var names []string
	for _, out := range midi.GetOutPorts() {
		names = append(names, out.String())
	}
	return names
}

// Virtual is a virtual input port other applications can send to.
type Virtual struct {
	driver *rtmididrv.Driver
	In     drivers.In
}

func OpenVirtual(name string) (*Virtual, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MIDI driver: %w", err)
	}
	port, err := driver.OpenVirtualIn(name)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to create virtual MIDI port: %w", err)
	}
	return &Virtual{driver: driver, In: port}, nil
}

func (v *Virtual) Close() error {
	v.In.Close()
	return v.driver.Close()
}

// OutSink echoes pads and clicks to a MIDI output as short notes.
type OutSink struct {
	send    func(msg midi.Message) error
	close   func() error
	mapping Mapping
	log     *slog.Logger
}

func NewOutSink(send func(msg midi.Message) error, m Mapping, log *slog.Logger) *OutSink {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &OutSink{send: send, mapping: m, log: log.With("component", "midi-out")}
}

// OpenOut opens the output port whose name contains name.
func OpenOut(name string, m Mapping, log *slog.Logger) (*OutSink, error) {
	out, err := midi.FindOutPort(name)
	if err != nil {
		return nil, fmt.Errorf("MIDI output %q: %w", name, err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open MIDI output: %w", err)
	}
	o := NewOutSink(send, m, log)
	o.close = out.Close
	return o, nil
}

// Close releases the output port. Sinks built with NewOutSink own no port.
func (o *OutSink) Close() error {
	if o.close == nil {
		return nil
	}
	fn := o.close
	o.close = nil
	return fn()
}

func (o *OutSink) PlayPad(pad int) {
	if note, ok := o.mapping.Note(pad); ok {
		o.trigger(note, 100)
	}
}

func (o *OutSink) Click(downbeat bool) {
	if downbeat {
		o.trigger(clickHigh, 110)
		return
	}
	o.trigger(clickLow, 80)
}

func (o *OutSink) trigger(note, velocity uint8) {
	ch := o.mapping.outChannel()
	if err := o.send(midi.NoteOn(ch, note, velocity)); err != nil {
		o.log.Warn("send failed", "note", note, "err", err)
		return
	}
	_ = o.send(midi.NoteOff(ch, note))
}

// CloseDriver releases the MIDI driver behind the package-level port
// functions.
func CloseDriver() {
	midi.CloseDriver()
}
