package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"laddr.dev/laddr/internal/config"
	"laddr.dev/laddr/internal/runtime"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	var trunk string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize laddr in the current repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtime.NewContext(false)
			if err != nil {
				return err
			}

			if trunk == "" {
				trunk = "main"
			}
			exists, err := rt.Git.BranchExists(context.Background(), trunk)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("trunk branch %s does not exist", trunk)
			}

			cfg, err := config.GetRepoConfig(rt.RepoRoot)
			if err != nil {
				return err
			}
			cfg.Trunk = &trunk
			if err := config.WriteRepoConfig(rt.RepoRoot, cfg); err != nil {
				return err
			}

			rt.Splog.Info("Initialized laddr with trunk %s", trunk)
			return nil
		},
	}

	cmd.Flags().StringVar(&trunk, "trunk", "", "Trunk branch stacks target. Defaults to main.")

	return cmd
}
