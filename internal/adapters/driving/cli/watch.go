package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/learnquest/questsync/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync automatically whenever the backend is reachable",
	Long: `Probes the backend periodically. Each time it comes back online the
queued changes are replayed. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if svc.ConfigWatcher != nil {
		go func() {
			err := svc.ConfigWatcher.Watch(ctx, func() {
				cmd.Println("Configuration changed. Restart watch to apply backend settings.")
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("config watch stopped: %v", err)
			}
		}()
	}

	cmd.Println("Watching backend connectivity. Press Ctrl+C to stop.")
	err = svc.Watcher.Start(ctx)
	if stopErr := svc.Watcher.Stop(); stopErr != nil {
		logger.Warn("stopping watcher: %v", stopErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
