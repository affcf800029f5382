// Package tui is the terminal front panel: transport status, the loop clock,
// and keyboard pads.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NoahYB/drum-machine/internal/tempo"
	"github.com/NoahYB/drum-machine/internal/transport"
)

const (
	frameInterval = 33 * time.Millisecond
	bpmStep       = 5
	flashFrames   = 4
)

// Transport is the part of the transport the panel drives. Calls come from
// the bubbletea goroutine.
type Transport interface {
	Record() error
	PlayStop() error
	Stop() error
	Clear() error
	Hit(pad int) bool
	SetSettings(transport.Settings)
	State() transport.State
}

// HitMsg is a pad hit from outside the keyboard, such as a MIDI controller.
type HitMsg struct {
	Pad    int
	Source string
}

// tickMsg refreshes the panel.
type tickMsg time.Time

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	modeStyles = map[transport.Mode]lipgloss.Style{
		transport.Idle:       lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		transport.CountingIn: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		transport.Recording:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3B3B")).Bold(true),
		transport.Playing:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true),
	}

	padStyle    = lipgloss.NewStyle().Width(5).Align(lipgloss.Center).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444"))
	padHitStyle = padStyle.BorderForeground(lipgloss.Color("#FFD700")).Foreground(lipgloss.Color("#FFD700")).Bold(true)
)

// Model is the bubbletea model for the panel.
type Model struct {
	tr      Transport
	keys    keyMap
	help    help.Model
	state   transport.State
	title   string
	source  string
	message string
	flash   [numPads]int
	width   int
}

// New creates the panel. source describes where external hits come from
// and is shown under the title.
func New(tr Transport, title, source string) Model {
	return Model{
		tr:     tr,
		keys:   defaultKeyMap(),
		help:   help.New(),
		state:  tr.State(),
		title:  title,
		source: source,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		for i := range m.flash {
			if m.flash[i] > 0 {
				m.flash[i]--
			}
		}
		m.state = m.tr.State()
		return m, tick()

	case HitMsg:
		m.hit(msg.Pad)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if pad, ok := m.keys.pad(msg.String()); ok {
		m.hit(pad)
		return m, nil
	}

	m.message = ""
	settings := m.state.Settings

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.state.Mode != transport.Idle {
			_ = m.tr.Stop()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Record):
		m.report(m.tr.Record())
	case key.Matches(msg, m.keys.PlayStop):
		m.report(m.tr.PlayStop())
	case key.Matches(msg, m.keys.Stop):
		m.report(m.tr.Stop())
	case key.Matches(msg, m.keys.Clear):
		m.report(m.tr.Clear())
	case key.Matches(msg, m.keys.Metronome):
		settings.Metronome = !settings.Metronome
		m.tr.SetSettings(settings)
	case key.Matches(msg, m.keys.Faster):
		settings.BPM += bpmStep
		m.tr.SetSettings(settings)
	case key.Matches(msg, m.keys.Slower):
		settings.BPM -= bpmStep
		m.tr.SetSettings(settings)
	case key.Matches(msg, m.keys.Bars):
		if settings.Bars == 8 {
			settings.Bars = 16
		} else {
			settings.Bars = 8
		}
		m.tr.SetSettings(settings)
	case key.Matches(msg, m.keys.CountIn):
		settings.CountInBars = (settings.CountInBars + 1) % 3
		m.tr.SetSettings(settings)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	m.state = m.tr.State()
	return m, nil
}

func (m *Model) hit(pad int) {
	m.tr.Hit(pad)
	if pad >= 0 && pad < numPads {
		m.flash[pad] = flashFrames
	}
	m.state = m.tr.State()
}

func (m *Model) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, transport.ErrEmptyRecording):
		m.message = "Nothing recorded yet"
	case errors.Is(err, transport.ErrInvalidTransition):
		m.message = fmt.Sprintf("Not while %s", m.state.Mode)
	default:
		m.message = fmt.Sprintf("Error: %v", err)
	}
}

func (m Model) View() string {
	var b strings.Builder
	st := m.state

	b.WriteString(titleStyle.Render(m.title) + "\n")
	if m.source != "" {
		b.WriteString(subtitleStyle.Render(m.source) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(statusLine(st) + "\n\n")
	b.WriteString(renderClockBar(st.Mode, st.Position) + "\n\n")
	b.WriteString(settingsLine(st.Settings) + "\n")
	b.WriteString(recordingLine(st) + "\n\n")
	b.WriteString(m.renderPads() + "\n")

	if m.message != "" {
		b.WriteString(errorStyle.Render(m.message) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func statusLine(st transport.State) string {
	label := modeStyles[st.Mode].Render("● " + strings.ToUpper(st.Mode.String()))
	switch st.Mode {
	case transport.CountingIn:
		return label + fmt.Sprintf("  count-in %d/%d", st.CountInBar, st.CountInBars)
	case transport.Recording, transport.Playing:
		return label + fmt.Sprintf("  bar %d  beat %d/%d", st.Position.Bar, st.Position.Beat, tempo.BeatsPerBar) +
			subtitleStyle.Render(fmt.Sprintf("  %d%%", int(st.Position.Fraction*100)))
	default:
		return label
	}
}

func settingsLine(s transport.Settings) string {
	metronome := "off"
	if s.Metronome {
		metronome = "on"
	}
	countIn := "none"
	if s.CountInBars > 0 {
		countIn = fmt.Sprintf("%d bar", s.CountInBars)
		if s.CountInBars > 1 {
			countIn += "s"
		}
	}
	return fmt.Sprintf("BPM: %d • Bars: %d • Metronome: %s • Count-in: %s", s.BPM, s.Bars, metronome, countIn)
}

func recordingLine(st transport.State) string {
	switch {
	case st.Mode == transport.Recording:
		return fmt.Sprintf("Capturing: %d hits", st.Captured)
	case st.HasRecording:
		line := fmt.Sprintf("Recording: %d hits", st.Hits)
		if st.Mode == transport.Playing {
			line += fmt.Sprintf(" • loop %d", st.Iteration)
		}
		return line
	default:
		return subtitleStyle.Render("No recording")
	}
}

func (m Model) renderPads() string {
	cells := make([]string, numPads)
	for i := range cells {
		style := padStyle
		if m.flash[i] > 0 {
			style = padHitStyle
		}
		cells[i] = style.Render(fmt.Sprintf("%d", i+1))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}
