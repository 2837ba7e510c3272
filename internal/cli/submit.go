package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"laddr.dev/laddr/internal/github"
	"laddr.dev/laddr/internal/runtime"
)

// newSubmitCmd creates the submit command
func newSubmitCmd() *cobra.Command {
	var (
		remote string
		noPush bool
	)

	cmd := &cobra.Command{
		Use:   "submit [stack]",
		Short: "Push a stack and open linked pull requests",
		Long: `Push a stack and open linked pull requests, root-first.
Each branch's PR targets its stack parent, so reviews stay small. Existing
PRs are retargeted when the stack shape changed.`,
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
			status, err := rt.Sync.GetStackSyncStatus(ctx, name)
			if err != nil {
				return err
			}
			if status.NeedsSync {
				return fmt.Errorf("stack %s is not in sync; run 'laddr sync' first", name)
			}

			remoteURL, err := rt.Git.RemoteURL(ctx, remote)
			if err != nil {
				return err
			}
			client, err := github.NewClient(ctx, remoteURL)
			if err != nil {
				return err
			}

			for _, branch := range status.Branches {
				if !noPush {
					if err := rt.Git.Push(ctx, remote, branch.Branch); err != nil {
						return err
					}
					rt.Splog.Info("Pushed %s", branch.Branch)
				}

				existing, err := client.FindPullRequest(ctx, branch.Branch)
				if err != nil {
					return err
				}
				if existing != nil {
					if existing.Base != branch.Parent {
						if err := client.UpdatePullRequestBase(ctx, existing.Number, branch.Parent); err != nil {
							return err
						}
					}
					rt.Splog.Info("Updated PR #%d %s", existing.Number, existing.URL)
					continue
				}

				pr, err := client.CreatePullRequest(ctx, branch.Branch, branch.Parent, branch.Branch, "")
				if err != nil {
					return err
				}
				rt.Splog.Info("Opened PR #%d %s", pr.Number, pr.URL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&remote, "remote", "origin", "Remote to push to.")
	cmd.Flags().BoolVar(&noPush, "no-push", false, "Only create/update PRs, skip pushing.")

	return cmd
}
