// Package commands provides the CLI commands for prefpane.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prefpane/prefpane/internal/logging"
)

// Set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
)

// Global flags
var (
	logLevel  string
	prettyLog bool
)

var rootCmd = &cobra.Command{
	Use:   "prefpane",
	Short: "Prefpane - layered settings engine",
	Long: `Prefpane reconciles layered settings documents: vendor defaults,
user overrides, and the derived views a settings surface needs
(effective values, minimal deltas, change markers).

Run 'prefpane serve' to host the HTTP API, or use the document
commands to inspect settings files directly.`,
	Version:      version,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&prettyLog, "pretty", false, "Human-readable log output")

	rootCmd.SetVersionTemplate(fmt.Sprintf("prefpane %s (%s)\n", version, commit))

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(effectiveCmd)
	rootCmd.AddCommand(deltaCmd)
	rootCmd.AddCommand(changedCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(sharelinkCmd)
}

// initLogging wires the persistent flags into the global logger before
// any command runs.
func initLogging() {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(logLevel)
	cfg.Pretty = prettyLog
	logging.Init(cfg)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
