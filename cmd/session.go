package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/NoahYB/drum-machine/internal/audio"
	"github.com/NoahYB/drum-machine/internal/config"
	"github.com/NoahYB/drum-machine/internal/metronome"
	"github.com/NoahYB/drum-machine/internal/midiio"
	"github.com/NoahYB/drum-machine/internal/oscio"
	"github.com/NoahYB/drum-machine/internal/playback"
	"github.com/NoahYB/drum-machine/internal/sched"
	"github.com/NoahYB/drum-machine/internal/transport"
	"github.com/NoahYB/drum-machine/internal/tui"
)

// session is one running drum machine: the scheduler loop, the transport
// and every output it plays through.
type session struct {
	cfg     *config.Config
	log     *slog.Logger
	loop    *sched.Loop
	tr      *transport.Transport
	outputs []string
	closers []io.Closer
	// midiDriver is set once a port has been opened through the shared
	// MIDI driver, which Close then releases.
	midiDriver bool
}

func newSession(cfg *config.Config, log *slog.Logger) (*session, error) {
	s := &session{cfg: cfg, log: log, loop: sched.NewLoop(log)}

	var pads playback.Pads
	var clicks metronome.Clicks

	if cfg.Audio.Enabled {
		samples, err := cfg.SamplePaths()
		if err != nil {
			return nil, err
		}
		engine, err := audio.NewEngine(audio.Options{Volume: cfg.Audio.Volume, Samples: samples, Logger: log})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize audio: %w", err)
		}
		pads = append(pads, engine)
		clicks = append(clicks, engine)
		s.closers = append(s.closers, engine)
		s.outputs = append(s.outputs, "audio")
	}

	if cfg.OSC.Host != "" {
		sink := oscio.NewSink(cfg.OSC.Host, cfg.OSC.Port, log)
		pads = append(pads, sink)
		clicks = append(clicks, sink)
		s.outputs = append(s.outputs, fmt.Sprintf("osc %s:%d", cfg.OSC.Host, cfg.OSC.Port))
	}

	if cfg.MIDI.OutPort != "" {
		s.midiDriver = true
		out, err := midiio.OpenOut(cfg.MIDI.OutPort, cfg.Mapping(), log)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, out)
		pads = append(pads, out)
		clicks = append(clicks, out)
		s.outputs = append(s.outputs, "midi "+cfg.MIDI.OutPort)
	}

	s.tr = transport.New(s.loop, pads, clicks, transport.Options{
		Settings: cfg.Settings(),
		Logger:   log,
	})
	s.tr.OnChange = func(from, to transport.Mode) {
		log.Info("transport", "from", from.String(), "to", to.String())
	}
	return s, nil
}

func (s *session) Close() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.log.Warn("close", "err", err)
		}
	}
	s.closers = nil
	if s.midiDriver {
		midiio.CloseDriver()
		s.midiDriver = false
	}
}

// input feeds external pad hits to the running panel. It returns a stop
// function.
type input func(p *tea.Program) (stop func(), err error)

// run starts the scheduler loop, the OSC listener and every input, then
// blocks in the panel until the user quits.
func (s *session) run(title, source string, inputs ...input) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopErr := make(chan error, 1)
	go func() { loopErr <- s.loop.Run(ctx) }()

	remote := s.tr.Remote()
	p := tea.NewProgram(tui.New(remote, title, source), tea.WithAltScreen())

	if addr := s.cfg.OSC.Listen; addr != "" {
		cmds := oscio.Commands{
			Hit:      func(pad int) { p.Send(tui.HitMsg{Pad: pad, Source: "osc"}) },
			Record:   func() { _ = remote.Record() },
			PlayStop: func() { _ = remote.PlayStop() },
			Clear:    func() { _ = remote.Clear() },
		}
		go func() {
			if err := oscio.Listen(ctx, addr, cmds, s.log); err != nil {
				s.log.Error("osc listener", "err", err)
			}
		}()
	}

	for _, in := range inputs {
		stop, err := in(p)
		if err != nil {
			return err
		}
		defer stop()
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			p.Send(tea.Quit())
		case <-ctx.Done():
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	cancel()
	if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// midiInput listens on in and forwards mapped note-ons as pad hits.
func midiInput(in drivers.In, mapping midiio.Mapping, log *slog.Logger) input {
	return func(p *tea.Program) (func(), error) {
		return midiio.Listen(in, mapping, func(pad int) {
			p.Send(tui.HitMsg{Pad: pad, Source: "midi"})
		}, log)
	}
}

// applyTransportFlags lets command-line flags override the config file.
func applyTransportFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("bpm") {
		c.BPM, _ = flags.GetInt("bpm")
	}
	if flags.Changed("bars") {
		c.Bars, _ = flags.GetInt("bars")
	}
	if flags.Changed("count-in") {
		c.CountInBars, _ = flags.GetInt("count-in")
	}
	if flags.Changed("no-metronome") {
		off, _ := flags.GetBool("no-metronome")
		c.Metronome = !off
	}
	if flags.Changed("no-audio") {
		off, _ := flags.GetBool("no-audio")
		c.Audio.Enabled = !off
	}
	if flags.Changed("osc-host") {
		c.OSC.Host, _ = flags.GetString("osc-host")
	}
	if flags.Changed("osc-port") {
		c.OSC.Port, _ = flags.GetInt("osc-port")
	}
	if flags.Changed("osc-listen") {
		c.OSC.Listen, _ = flags.GetString("osc-listen")
	}
	if flags.Changed("midi-out") {
		c.MIDI.OutPort, _ = flags.GetString("midi-out")
	}
	c.Clamp()
}

func addTransportFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().Int("bpm", d.BPM, "tempo in beats per minute (60-200)")
	cmd.Flags().Int("bars", d.Bars, "recording length in bars (8 or 16)")
	cmd.Flags().Int("count-in", d.CountInBars, "count-in bars before recording (0-2)")
	cmd.Flags().Bool("no-metronome", false, "start with the metronome muted")
	cmd.Flags().Bool("no-audio", false, "do not open the audio device")
	cmd.Flags().String("osc-host", "", "send pads and clicks to this OSC host")
	cmd.Flags().Int("osc-port", d.OSC.Port, "OSC host port")
	cmd.Flags().String("osc-listen", "", "accept pads and commands over OSC on this address, e.g. :9000")
	cmd.Flags().String("midi-out", "", "echo pads and clicks to the MIDI output matching this name")
}
