package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NoahYB/drum-machine/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration the other commands start with, as TOML.

With --write the configuration is saved to the config file, which creates it with
the defaults on first use.`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().Bool("write", false, "save the effective configuration")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))

	if write, _ := cmd.Flags().GetBool("write"); !write {
		return nil
	}
	path := configPath
	if path == "" {
		if path, err = config.Path(); err != nil {
			return err
		}
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return nil
}
