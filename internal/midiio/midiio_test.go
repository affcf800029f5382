package midiio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
)

func TestMappingPad(t *testing.T) {
	tests := []struct {
		name    string
		mapping Mapping
		msg     midi.Message
		pad     int
		ok      bool
	}{
		{"kick", DefaultMapping(), midi.NoteOn(9, 36, 100), 0, true},
		{"last pad", DefaultMapping(), midi.NoteOn(0, 43, 1), 7, true},
		{"above range", DefaultMapping(), midi.NoteOn(9, 44, 100), 0, false},
		{"below range", DefaultMapping(), midi.NoteOn(9, 35, 100), 0, false},
		{"zero velocity", DefaultMapping(), midi.NoteOn(9, 36, 0), 0, false},
		{"note off", DefaultMapping(), midi.NoteOff(9, 36), 0, false},
		{"control change", DefaultMapping(), midi.ControlChange(9, 36, 100), 0, false},
		{"channel match", Mapping{BaseNote: 60, Pads: 4, Channel: 2}, midi.NoteOn(1, 62, 90), 2, true},
		{"channel mismatch", Mapping{BaseNote: 60, Pads: 4, Channel: 2}, midi.NoteOn(0, 62, 90), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pad, ok := tt.mapping.Pad(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.pad, pad)
		})
	}
}

func TestMappingNote(t *testing.T) {
	m := DefaultMapping()
	note, ok := m.Note(2)
	assert.True(t, ok)
	assert.Equal(t, uint8(38), note)

	_, ok = m.Note(8)
	assert.False(t, ok)
	_, ok = m.Note(-1)
	assert.False(t, ok)
	_, ok = Mapping{BaseNote: 126, Pads: 8}.Note(3)
	assert.False(t, ok)
}

type sent struct {
	on           bool
	ch, key, vel uint8
}

func recorder(out *[]sent, fail error) func(midi.Message) error {
	return func(msg midi.Message) error {
		if fail != nil {
			return fail
		}
		var s sent
		switch {
		case msg.GetNoteOn(&s.ch, &s.key, &s.vel):
			s.on = true
		case msg.GetNoteOff(&s.ch, &s.key, &s.vel):
		}
		*out = append(*out, s)
		return nil
	}
}

func TestOutSink(t *testing.T) {
	var got []sent
	o := NewOutSink(recorder(&got, nil), DefaultMapping(), nil)

	o.PlayPad(1)
	o.PlayPad(99)
	o.Click(true)
	o.Click(false)

	assert.Equal(t, []sent{
		{on: true, ch: 9, key: 37, vel: 100},
		{on: false, ch: 9, key: 37},
		{on: true, ch: 9, key: clickHigh, vel: 110},
		{on: false, ch: 9, key: clickHigh},
		{on: true, ch: 9, key: clickLow, vel: 80},
		{on: false, ch: 9, key: clickLow},
	}, got)
}

func TestOutSinkChannel(t *testing.T) {
	var got []sent
	o := NewOutSink(recorder(&got, nil), Mapping{BaseNote: 60, Pads: 2, Channel: 3}, nil)
	o.PlayPad(0)
	assert.Equal(t, uint8(2), got[0].ch)
	assert.Equal(t, uint8(60), got[0].key)
}

func TestOutSinkSwallowsErrors(t *testing.T) {
	var got []sent
	o := NewOutSink(recorder(&got, errors.New("port gone")), DefaultMapping(), nil)
	assert.NotPanics(t, func() { o.PlayPad(0) })
	assert.Empty(t, got)
}

func TestOutSinkClose(t *testing.T) {
	var got []sent
	o := NewOutSink(recorder(&got, nil), DefaultMapping(), nil)
	assert.NoError(t, o.Close(), "no port to release")

	closed := 0
	o.close = func() error { closed++; return nil }
	require.NoError(t, o.Close())
	require.NoError(t, o.Close())
	assert.Equal(t, 1, closed)
}
