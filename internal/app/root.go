// Package app wires idlereap's commands together.
package app

import (
	"github.com/spf13/cobra"
)

// RootCmd is the root command for idlereap
var RootCmd = &cobra.Command{
	Use:   "idlereap",
	Short: "Self-terminating inactivity reclaimer for cloud instances",
	Long: `idlereap watches a directory tree for filesystem activity and, after a
configurable quiet period with no changes to regular files, destroys the
DigitalOcean droplet it is running on via the control API.

It is built for short-lived GPU instances that should tear themselves
down once nobody is using them: run it under a process supervisor,
point it at the working directory users touch, and forget about it.

Configuration:
  INACTIVITY_TIMEOUT   inactivity threshold in seconds (default 28800)
  DIGITALOCEAN_TOKEN   API token, required only when the destroy fires

  Optional config file: ~/.config/idlereap/config.toml

Examples:
  # Watch /data/models in the foreground (Ctrl+C to stop)
  idlereap watch /data/models

  # Run as a background daemon
  idlereap watch /data/models --daemon

  # Stop a running daemon without destroying anything
  idlereap watch /data/models --stop

  # Inspect what kept the instance alive
  idlereap journal`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(watchCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(journalCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
