package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/NoahYB/drum-machine/internal/midiio"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the drum pad and loop recorder",
	Long: `Start the drum pad and loop recorder with an interactive TUI interface.

Pads 1-8 are played from the keyboard, or from a MIDI controller with --midi-in.
Press r to record (after the count-in), space to play the loop back and c to clear it.

Example:
  drum-machine run --bpm 96 --bars 16 --midi-in "Launchpad"
`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("midi-in", "", "play pads from the MIDI input matching this name")
	addTransportFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	applyTransportFlags(cmd, cfg)
	if cmd.Flags().Changed("midi-in") {
		cfg.MIDI.InPort, _ = cmd.Flags().GetString("midi-in")
	}

	s, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	var inputs []input
	sources := []string{"keys 1-8"}
	if cfg.MIDI.InPort != "" {
		s.midiDriver = true
		in, err := midiio.FindIn(cfg.MIDI.InPort)
		if err != nil {
			return err
		}
		inputs = append(inputs, midiInput(in, cfg.Mapping(), logger))
		sources = append(sources, "MIDI "+in.String())
	}
	if cfg.OSC.Listen != "" {
		sources = append(sources, "OSC "+cfg.OSC.Listen)
	}

	source := "Pads: " + strings.Join(sources, ", ")
	if len(s.outputs) > 0 {
		source += " • Out: " + strings.Join(s.outputs, ", ")
	}
	return s.run("🥁 Drum Machine", source, inputs...)
}
