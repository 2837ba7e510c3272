package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	laddrerrors "laddr.dev/laddr/internal/errors"
	"laddr.dev/laddr/internal/runtime"
)

// newTrackCmd creates the track command
func newTrackCmd() *cobra.Command {
	var (
		parent    string
		stackName string
	)

	cmd := &cobra.Command{
		Use:   "track [branch]",
		Short: "Track a branch as a child of its parent inside a stack",
		Long: `Track a branch as a child of its parent inside a stack.
The branch defaults to the current branch and the parent defaults to the
branch you were on, so the usual flow is: checkout the parent, create the
new branch, run 'laddr track'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtime.NewContext(true)
			if err != nil {
				return err
			}
			ctx := context.Background()

			branch := ""
			if len(args) > 0 {
				branch = args[0]
			} else {
				branch, err = rt.Git.CurrentBranch(ctx)
				if err != nil {
					return err
				}
				if branch == "" {
					return fmt.Errorf("not on a branch and no branch specified")
				}
			}

			if parent == "" {
				return fmt.Errorf("--parent is required")
			}

			// Default the stack to the parent's stack.
			if stackName == "" {
				parentMeta, err := rt.Store.GetBranchStack(ctx, parent)
				if err != nil {
					if laddrerrors.KindOf(err) == laddrerrors.KindNotInStack {
						return fmt.Errorf("parent %s is not tracked; create a stack first with 'laddr create'", parent)
					}
					return err
				}
				stackName = parentMeta.StackName
			}

			meta, err := rt.Store.AddBranch(ctx, branch, parent, stackName)
			if err != nil {
				return err
			}

			rt.Splog.Info("Tracked %s on %s in stack %s", branch, meta.Parent, meta.StackName)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent branch this branch builds on.")
	cmd.Flags().StringVar(&stackName, "stack", "", "Stack to add the branch to. Defaults to the parent's stack.")

	return cmd
}

// newUntrackCmd creates the untrack command
func newUntrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "untrack [branch]",
		Short: "Stop tracking a branch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtime.NewContext(true)
			if err != nil {
				return err
			}
			ctx := context.Background()

			branch := ""
			if len(args) > 0 {
				branch = args[0]
			} else {
				branch, err = rt.Git.CurrentBranch(ctx)
				if err != nil {
					return err
				}
				if branch == "" {
					return fmt.Errorf("not on a branch and no branch specified")
				}
			}

			if err := rt.Store.RemoveBranch(ctx, branch); err != nil {
				return err
			}
			rt.Splog.Info("Untracked %s", branch)
			return nil
		},
	}

	return cmd
}
