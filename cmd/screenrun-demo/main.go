// Screenrun-demo is an interactive tour of the screenrun runtime.
//
// It registers a menu, a counter and a help screen, and switches between
// them with runtime commands. Settings come from a YAML file and flags.
//
// Usage:
//
//	screenrun-demo [flags]
//	screenrun-demo config [init]
//	screenrun-demo version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/screenrun/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "screenrun-demo",
	Short: "Interactive demo of the screenrun runtime",
	Long: `Runs a three-screen terminal program on the screenrun runtime.

The menu links to a counter and a help page. Screens keep their state
while inactive, and every frame is paced to the configured rate.`,
	Version:      version.Version,
	SilenceUsage: true,
	RunE:         runDemo,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "screenrun-demo %s\n", version.Full())
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/screenrun/config.yaml)")
	flags.IntVar(&opts.fps, "fps", 0, "Frames per second")
	flags.DurationVar(&opts.pollRate, "poll", 0, "Event poll interval (default half the frame interval)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default $SCREENRUN_LOG_LEVEL, silent when unset)")
	flags.StringVar(&opts.logFile, "log-file", "", "Log file (default screenrun.log)")
	flags.StringVar(&opts.screen, "screen", "", "Initial screen: menu, counter or help")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}
