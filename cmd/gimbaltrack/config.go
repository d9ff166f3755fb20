package main

import (
	"github.com/spf13/cobra"

	"github.com/ayusman/gimbaltrack/internal/config"
)

var flagDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration gimbaltrack would run with, after applying the
config file and GIMBALTRACK_* environment variables. The output is a valid
config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if !flagDefaults {
			var err error
			cfg, err = config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
		}

		out, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	configCmd.Flags().BoolVar(&flagDefaults, "defaults", false, "print the built-in defaults, ignoring file and environment")
}
