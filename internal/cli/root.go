// Package cli implements the loopd command line: the HTTP server plus a few
// commands that work on the device's local loop store directly.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

// newRootCmd builds the full command tree. Tests build a fresh tree per run
// so flag values never leak between cases.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "loopd",
		Short: "Plan meetups and share them as links",
		Long: `loopd keeps the loops created or accepted on this device and serves
them over a local HTTP API. A loop travels between devices as a share link;
opening the link on another device stores a copy there.`,
		SilenceUsage: true,
	}
	root.Version = Version
	root.SetVersionTemplate("loopd version {{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file applied before .env and the environment")

	cfg := func() string { return configPath }
	root.AddCommand(
		newServeCmd(cfg),
		newCreateCmd(cfg),
		newOpenCmd(cfg),
		newShareCmd(cfg),
		newListCmd(cfg),
		newDiscardCmd(cfg),
		newExportCmd(cfg),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
