package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/NoahYB/drum-machine/internal/config"
	"github.com/NoahYB/drum-machine/internal/logging"
)

var (
	configPath string
	logPath    string
	logLevel   string

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "drum-machine",
	Short: "A terminal drum pad with a tempo-locked loop recorder",
	Long: `drum-machine is a Terminal User Interface (TUI) drum pad built with Bubbletea.

Hit pads from the keyboard, a MIDI controller or OSC, record a take of 8 or 16 bars
against the metronome (with an optional count-in), and loop it back in time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, logCloser, err = logging.Setup(logPath, logLevel)
		if err != nil {
			return err
		}
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/drum-machine/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "write logs to this file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
