package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"laddr.dev/laddr/internal/config"
	"laddr.dev/laddr/internal/runtime"
)

// newCreateCmd creates the create command
func newCreateCmd() *cobra.Command {
	var (
		trunk      string
		rootBranch string
	)

	cmd := &cobra.Command{
		Use:   "create <stack>",
		Short: "Create a new tracked stack rooted at a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtime.NewContext(true)
			if err != nil {
				return err
			}
			ctx := context.Background()

			if trunk == "" {
				trunk, err = config.GetTrunk(rt.RepoRoot)
				if err != nil {
					return err
				}
			}
			if rootBranch == "" {
				rootBranch, err = rt.Git.CurrentBranch(ctx)
				if err != nil {
					return err
				}
				if rootBranch == "" {
					return fmt.Errorf("not on a branch and --root not specified")
				}
			}

			meta, err := rt.Store.InitStack(ctx, args[0], trunk, rootBranch)
			if err != nil {
				return err
			}

			rt.Splog.Info("Created stack %s (trunk %s, root %s)", meta.Name, meta.Trunk, meta.Root)
			return nil
		},
	}

	cmd.Flags().StringVar(&trunk, "trunk", "", "Trunk branch the stack targets. Defaults to the configured trunk.")
	cmd.Flags().StringVar(&rootBranch, "root", "", "Root branch of the stack. Defaults to the current branch.")

	return cmd
}
