package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Deliver pending notes once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *App) error {
				res, err := a.sync.Run(ctx)
				if err != nil {
					return err
				}
				if res.Attempted == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to sync")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Synced %d of %d attempted\n", res.Synced, res.Attempted)
				return nil
			})
		},
	}
}
