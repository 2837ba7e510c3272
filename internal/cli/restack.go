package cli

import (
	"context"

	"github.com/spf13/cobra"

	"laddr.dev/laddr/internal/runtime"
)

// newRestackCmd creates the restack command
func newRestackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restack [stack]",
		Short: "Repair stack bookkeeping after manual history rewrites",
		Long: `Repair stack bookkeeping after manual history rewrites.
Every branch's recorded base is force-set to its parent's current head.
The working tree and branch history are not touched; use this after you
have already rebased branches by hand.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtime.NewContext(true)
			if err != nil {
				return err
			}
			ctx := context.Background()

			name, err := resolveStackName(ctx, rt, args)
			if err != nil {
				return err
			}

			results, err := rt.Sync.RestackBranches(ctx, name)
			for _, result := range results {
				rt.Splog.Info("Rebased bookkeeping for %s (base %.8s)", result.Branch, result.NewBase)
			}
			return err
		},
	}

	return cmd
}
