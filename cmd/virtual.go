package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/NoahYB/drum-machine/internal/midiio"
)

var virtualCmd = &cobra.Command{
	Use:   "virtual",
	Short: "Create a virtual MIDI device that plays the pads",
	Long: `Create a virtual MIDI input device that can receive MIDI notes from other applications.

The virtual device will show up as a MIDI output destination in other music software.
Note-ons from the base note upward (36, GM kick, by default) hit pads 1-8, and are
captured while recording just like keyboard hits.

Example:
  drum-machine virtual --name "My Drums"
`,
	RunE: runVirtual,
}

func init() {
	virtualCmd.Flags().StringP("name", "n", "", "Name for the virtual MIDI device (default from config)")
	virtualCmd.Flags().Int("base-note", 0, "MIDI note for pad 1 (default from config)")
	addTransportFlags(virtualCmd)
	rootCmd.AddCommand(virtualCmd)
}

func runVirtual(cmd *cobra.Command, args []string) error {
	applyTransportFlags(cmd, cfg)
	if cmd.Flags().Changed("name") {
		cfg.MIDI.VirtualName, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("base-note") {
		cfg.MIDI.BaseNote, _ = cmd.Flags().GetInt("base-note")
		cfg.Clamp()
	}

	s, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	port, err := midiio.OpenVirtual(cfg.MIDI.VirtualName)
	if err != nil {
		return err
	}
	defer port.Close()

	source := "Virtual MIDI port: " + port.In.String()
	if len(s.outputs) > 0 {
		source += " • Out: " + strings.Join(s.outputs, ", ")
	}
	return s.run("🥁 Drum Machine Virtual Pads", source, midiInput(port.In, cfg.Mapping(), logger))
}
