package cli

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"laddr.dev/laddr/internal/runtime"
)

// newDeleteCmd creates the delete command
func newDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <stack>",
		Short: "Delete a stack and all of its branch tracking metadata",
		Long: `Delete a stack and all of its branch tracking metadata.
The branches themselves are not touched; only laddr's bookkeeping is removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtime.NewContext(true)
			if err != nil {
				return err
			}
			ctx := context.Background()
			name := args[0]

			// Fail loudly on typos before prompting.
			if _, err := rt.Store.GetStackMetadata(ctx, name); err != nil {
				return err
			}

			if !force {
				confirmed := false
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("Delete stack %s and untrack all of its branches?", name),
				}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return err
				}
				if !confirmed {
					rt.Splog.Info("Aborted")
					return nil
				}
			}

			if err := rt.Store.DeleteStack(ctx, name); err != nil {
				return err
			}
			rt.Splog.Info("Deleted stack %s", name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt.")

	return cmd
}
