package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/NoahYB/drum-machine/internal/midiio"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer midiio.CloseDriver()
		out := cmd.OutOrStdout()
		printPorts(out, "Inputs", midiio.InPorts())
		printPorts(out, "Outputs", midiio.OutPorts())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func printPorts(w io.Writer, title string, names []string) {
	fmt.Fprintf(w, "%s:\n", title)
	if len(names) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", name)
	}
}
