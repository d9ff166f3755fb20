// Command gimbaltrack finds a black-bordered target in camera frames and
// streams its position to a gimbal controller over a serial line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// configFile is set by the --config flag.
var configFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gimbaltrack",
	Short: "gimbaltrack drives a pan/tilt gimbal toward a black-bordered target",
	Long: `gimbaltrack reads frames from a camera, finds the dark rectangular border
of a target, picks the most plausible candidate and writes its centre as
"<x>,<y>\n" to the gimbal controller's serial port.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./gimbaltrack.yaml or ~/.gimbaltrack/gimbaltrack.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gimbaltrack version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "gimbaltrack", version)
	},
}
