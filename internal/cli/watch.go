package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the engine loop in the foreground",
	Long: `Run the engine loop: an initial refresh, incremental updates from the
store subscription, and periodic full refreshes on the configured
interval. Stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("pulse watching (refresh every %ds), Ctrl-C to stop\n", Config.RefreshIntervalSeconds)
		if err := Engine.Run(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("engine loop: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
