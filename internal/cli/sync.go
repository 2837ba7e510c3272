package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	laddrerrors "laddr.dev/laddr/internal/errors"
	"laddr.dev/laddr/internal/runtime"
	"laddr.dev/laddr/internal/stack"
)

// newSyncCmd creates the sync command
func newSyncCmd() *cobra.Command {
	var (
		branch string
		merge  bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "sync [stack]",
		Short: "Replay out-of-date branches onto their parents",
		Long: `Replay out-of-date branches onto their parents, root-first.
Branches already in sync are skipped. On conflict the operation is aborted,
the working tree restored, and the remaining branches left untouched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtime.NewContext(true)
			if err != nil {
				return err
			}
			ctx := context.Background()
			opts := stack.SyncOptions{Merge: merge, Force: force}

			if branch != "" {
				result, err := rt.Sync.SyncBranch(ctx, branch, opts)
				if err != nil {
					return reportSyncError(rt, err)
				}
				rt.Splog.Info("Synced %s (base %.8s)", result.Branch, result.NewBase)
				return nil
			}

			name, err := resolveStackName(ctx, rt, args)
			if err != nil {
				return err
			}

			result, err := rt.Sync.SyncStack(ctx, name, opts)
			if err != nil {
				return err
			}

			for _, branchResult := range result.Results {
				switch {
				case branchResult.Skipped:
					rt.Splog.Info("%s already in sync", branchResult.Branch)
				case branchResult.Success:
					rt.Splog.Info("Synced %s (base %.8s)", branchResult.Branch, branchResult.NewBase)
				default:
					_ = reportSyncError(rt, branchResult.Err)
				}
			}
			if result.Halted && len(result.Remaining) > 0 {
				rt.Splog.Warn("Stopped; not synced: %v", result.Remaining)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "Sync a single branch instead of a whole stack.")
	cmd.Flags().BoolVar(&merge, "merge", false, "Merge the parent in instead of rebasing.")
	cmd.Flags().BoolVar(&force, "force", false, "Proceed even with uncommitted changes.")

	return cmd
}

// reportSyncError prints a sync failure with its conflict details and hint.
func reportSyncError(rt *runtime.Context, err error) error {
	var se *laddrerrors.StackError
	if !errors.As(err, &se) {
		rt.Splog.Error("%v", err)
		return err
	}

	rt.Splog.Error("%s", se.Message)
	for _, file := range se.Conflicts {
		rt.Splog.Info("  %s", file)
	}
	if se.Hint != "" {
		rt.Splog.Tip("%s", se.Hint)
	}
	return err
}
