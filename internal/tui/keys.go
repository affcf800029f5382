package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
)

const numPads = 8

type keyMap struct {
	Pads      []key.Binding
	Record    key.Binding
	PlayStop  key.Binding
	Stop      key.Binding
	Clear     key.Binding
	Metronome key.Binding
	Faster    key.Binding
	Slower    key.Binding
	Bars      key.Binding
	CountIn   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	k := keyMap{
		Record:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record")),
		PlayStop:  key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "play/stop")),
		Stop:      key.NewBinding(key.WithKeys("s", "esc"), key.WithHelp("s", "stop")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Metronome: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "metronome")),
		Faster:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "tempo up")),
		Slower:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "tempo down")),
		Bars:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "8/16 bars")),
		CountIn:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "count-in")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	for i := 0; i < numPads; i++ {
		n := strconv.Itoa(i + 1)
		k.Pads = append(k.Pads, key.NewBinding(key.WithKeys(n), key.WithHelp(n, "pad "+n)))
	}
	return k
}

// pad returns the pad bound to msg, if any.
func (k keyMap) pad(msg string) (int, bool) {
	for i, b := range k.Pads {
		for _, bound := range b.Keys() {
			if bound == msg {
				return i, true
			}
		}
	}
	return 0, false
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Record, k.PlayStop, k.Clear, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Record, k.PlayStop, k.Stop, k.Clear},
		{k.Faster, k.Slower, k.Bars},
		{k.Metronome, k.CountIn},
		{k.Help, k.Quit},
	}
}
