// Package cli implements trackctl, an offline companion to the dashboard API.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the trackctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trackctl",
		Short: "Project maturity dashboard tooling",
		Long: `trackctl renders timelines and alert buckets from JSON exports and runs
operational tasks against the dashboard database.`,
		SilenceUsage: true,
	}

	root.AddCommand(newTimelineCmd(), newAlertsCmd(), newOutboxCmd(), newUserCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
