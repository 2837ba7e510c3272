package cli

import (
	"context"

	"github.com/spf13/cobra"

	"laddr.dev/laddr/internal/output"
	"laddr.dev/laddr/internal/runtime"
	"laddr.dev/laddr/internal/tui"
)

// newListCmd creates the list command
func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked stacks",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtime.NewContext(true)
			if err != nil {
				return err
			}

			stacks, err := rt.Store.GetAllStacks(context.Background())
			if err != nil {
				return err
			}
			if len(stacks) == 0 {
				rt.Splog.Info("No stacks tracked. Create one with 'laddr create'.")
				return nil
			}

			for _, meta := range stacks {
				rt.Splog.Info("%s  trunk=%s root=%s created=%s",
					meta.Name, meta.Trunk, meta.Root, meta.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}

	return cmd
}

// newLogCmd creates the log command
func newLogCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the detected branch topology as a tree",
		Long: `Show the detected branch topology as a tree.
Parent relationships come from tracked metadata where available; everything
else is inferred from the commit graph.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtime.NewContext(true)
			if err != nil {
				return err
			}
			ctx := context.Background()

			stacks, err := rt.GraphBuilder().DetectStacks(ctx)
			if err != nil {
				return err
			}

			current, err := rt.Git.CurrentBranch(ctx)
			if err != nil {
				return err
			}

			if interactive {
				selected, err := tui.Run(stacks, current)
				if err != nil {
					return err
				}
				if selected != "" && selected != current {
					if err := rt.Git.Checkout(ctx, selected); err != nil {
						return err
					}
					rt.Splog.Info("Checked out %s", selected)
				}
				return nil
			}

			renderer := output.NewTreeRenderer(current)
			rt.Splog.Page(renderer.RenderForest(stacks))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse the tree and checkout a branch.")

	return cmd
}
