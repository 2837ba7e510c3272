// Package cli wires the laddr commands. Commands are thin wrappers: they
// parse flags, build a runtime context, and delegate to the stack engine.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"laddr.dev/laddr/internal/output"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "laddr",
		Short: "laddr manages stacked git branches",
		Long: `laddr manages stacked chains of git branches: it tracks which branch
builds on which, keeps every branch rebased as its parent moves, and
submits stacks as linked pull requests.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.InitColors()
		},
	}

	rootCmd.AddCommand(
		newInitCmd(),
		newCreateCmd(),
		newTrackCmd(),
		newUntrackCmd(),
		newDeleteCmd(),
		newListCmd(),
		newLogCmd(),
		newStatusCmd(),
		newSyncCmd(),
		newRestackCmd(),
		newSubmitCmd(),
	)

	return rootCmd
}
