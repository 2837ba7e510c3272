package cli

import (
	"context"

	"github.com/spf13/cobra"

	"laddr.dev/laddr/internal/output"
	"laddr.dev/laddr/internal/runtime"
)

// resolveStackName returns the stack named by args, falling back to the
// stack of the checked-out branch.
func resolveStackName(ctx context.Context, rt *runtime.Context, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	_, meta, err := rt.Store.GetCurrentBranchStack(ctx)
	if err != nil {
		return "", err
	}
	return meta.StackName, nil
}

// newStatusCmd creates the status command
func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [stack]",
		Short: "Show each branch's drift against its recorded parent",
		Args:  cobra.MaximumNArgs(1),
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

			status, err := rt.Sync.GetStackSyncStatus(ctx, name)
			if err != nil {
				return err
			}

			for _, branch := range status.Branches {
				rt.Splog.Info("%s ← %s  %s", branch.Branch, branch.Parent, output.SyncStateLabel(branch))
			}
			if status.NeedsSync {
				rt.Splog.Newline()
				rt.Splog.Tip("Run 'laddr sync' to bring the stack up to date")
			}
			return nil
		},
	}

	return cmd
}
