package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the background agent",
		Long: `Keep the agent running until interrupted.

Pending notes are delivered whenever the collector becomes reachable and on
a fixed schedule (background_sync_interval in the config file).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *App) error {
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				a.logger.Info(ctx, "agent started",
					"server", a.config.ServerURL,
					"online_check_interval", a.config.OnlineCheckInterval,
					"background_sync_interval", a.config.BackgroundSyncInterval)
				a.agent.Run(ctx)
				a.logger.Info(context.Background(), "agent stopped")
				return nil
			})
		},
	}
}
