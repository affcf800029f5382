package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoahYB/drum-machine/internal/sched"
	"github.com/NoahYB/drum-machine/internal/transport"
)

type panel struct {
	fake  *sched.Fake
	model Model
	pads  []int
}

func newPanel(t *testing.T, s transport.Settings) *panel {
	t.Helper()
	p := &panel{fake: sched.NewFake()}
	tr := transport.New(p.fake, padRecorder{&p.pads}, nil, transport.Options{Settings: s})
	p.model = New(tr.Remote(), "Drum Machine", "MIDI in: test")
	return p
}

type padRecorder struct{ pads *[]int }

func (r padRecorder) PlayPad(pad int) { *r.pads = append(*r.pads, pad) }

func (p *panel) send(msg tea.Msg) tea.Cmd {
	m, cmd := p.model.Update(msg)
	p.model = m.(Model)
	return cmd
}

func (p *panel) press(k string) tea.Cmd {
	if k == " " {
		return p.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	}
	return p.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

func plain() transport.Settings {
	return transport.Settings{BPM: 120, Bars: 8, Metronome: true}
}

func TestRecordAndPlay(t *testing.T) {
	p := newPanel(t, plain())

	p.press("r")
	assert.Equal(t, transport.Recording, p.model.state.Mode)
	assert.Contains(t, p.model.View(), "RECORDING")

	p.fake.Advance(100 * time.Millisecond)
	p.press("1")
	p.press("3")
	assert.Equal(t, []int{0, 2}, p.pads)
	assert.Equal(t, 2, p.model.state.Captured)
	assert.Contains(t, p.model.View(), "Capturing: 2 hits")

	p.press(" ")
	assert.Equal(t, transport.Idle, p.model.state.Mode)
	assert.Contains(t, p.model.View(), "Recording: 2 hits")

	p.press(" ")
	assert.Equal(t, transport.Playing, p.model.state.Mode)
	view := p.model.View()
	assert.Contains(t, view, "PLAYING")
	assert.Contains(t, view, "loop 1")

	p.press("s")
	assert.Equal(t, transport.Idle, p.model.state.Mode)
}

func TestPlayWithNothingRecorded(t *testing.T) {
	p := newPanel(t, plain())
	p.press(" ")
	assert.Equal(t, transport.Idle, p.model.state.Mode)
	assert.Contains(t, p.model.View(), "Nothing recorded yet")
}

func TestRecordWhilePlaying(t *testing.T) {
	p := newPanel(t, plain())
	p.press("r")
	p.press("2")
	p.press("r")
	p.press(" ")
	require.Equal(t, transport.Playing, p.model.state.Mode)

	p.press("r")
	assert.Equal(t, transport.Playing, p.model.state.Mode)
	assert.Contains(t, p.model.View(), "Not while playing")

	p.press("c")
	assert.True(t, p.model.state.HasRecording, "clear is refused while playing")
}

func TestCountInDisplay(t *testing.T) {
	s := plain()
	s.CountInBars = 2
	p := newPanel(t, s)

	p.press("r")
	assert.Contains(t, p.model.View(), "count-in 1/2")

	p.fake.Advance(2 * time.Second)
	p.send(tickMsg(time.Now()))
	assert.Contains(t, p.model.View(), "count-in 2/2")

	p.fake.Advance(2 * time.Second)
	p.send(tickMsg(time.Now()))
	assert.Equal(t, transport.Recording, p.model.state.Mode)
}

func TestSettingsKeys(t *testing.T) {
	p := newPanel(t, plain())

	p.press("+")
	assert.Equal(t, 125, p.model.state.Settings.BPM)
	p.press("-")
	p.press("-")
	assert.Equal(t, 115, p.model.state.Settings.BPM)

	p.press("b")
	assert.Equal(t, 16, p.model.state.Settings.Bars)
	p.press("b")
	assert.Equal(t, 8, p.model.state.Settings.Bars)

	p.press("n")
	assert.Equal(t, 1, p.model.state.Settings.CountInBars)
	p.press("n")
	p.press("n")
	assert.Equal(t, 0, p.model.state.Settings.CountInBars)

	p.press("m")
	assert.False(t, p.model.state.Settings.Metronome)
	assert.Contains(t, p.model.View(), "Metronome: off")
}

func TestTempoStaysInRange(t *testing.T) {
	s := plain()
	s.BPM = 200
	p := newPanel(t, s)
	p.press("+")
	assert.Equal(t, 200, p.model.state.Settings.BPM)
}

func TestExternalHit(t *testing.T) {
	p := newPanel(t, plain())
	p.press("r")
	p.send(HitMsg{Pad: 4, Source: "midi"})

	assert.Equal(t, []int{4}, p.pads)
	assert.Equal(t, 1, p.model.state.Captured)
	assert.Equal(t, flashFrames, p.model.flash[4])

	for range flashFrames {
		p.send(tickMsg(time.Now()))
	}
	assert.Zero(t, p.model.flash[4])
}

func TestTickRefreshesPosition(t *testing.T) {
	p := newPanel(t, plain())
	p.press("r")
	p.fake.Advance(2500 * time.Millisecond)

	cmd := p.send(tickMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.Equal(t, 2, p.model.state.Position.Bar)
	assert.Contains(t, p.model.View(), "bar 2  beat 2/4")
}

func TestQuitStopsTransport(t *testing.T) {
	p := newPanel(t, plain())
	p.press("r")

	cmd := p.press("q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, 0, p.fake.Pending())
}

func TestClockCell(t *testing.T) {
	assert.Equal(t, 0, clockCell(0))
	assert.Equal(t, 8, clockCell(0.5))
	assert.Equal(t, clockCells-1, clockCell(1))
	assert.Equal(t, 0, clockCell(-0.2))
}

func TestHelpToggle(t *testing.T) {
	p := newPanel(t, plain())
	short := p.model.View()
	p.press("?")
	assert.True(t, p.model.help.ShowAll)
	assert.NotEqual(t, short, p.model.View())
	assert.Contains(t, p.model.View(), "count-in")
}
