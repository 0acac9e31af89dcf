package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learnquest/questsync/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued changes now",
	Long: `Removes unconfirmed local students and expired queued changes, then
sends the remaining queued changes to the backend in the order they were made.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	cmd.Println("Synchronising queued changes...")
	cleanup, report, err := svc.Reconciler.Reconcile(cmd.Context())
	if errors.Is(err, domain.ErrSyncInProgress) {
		return errors.New("another sync is already running")
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if cleanup.ExpiredOperations > 0 || cleanup.TemporaryStudents > 0 {
		cmd.Printf("Cleaned up %d expired changes and %d unconfirmed students.\n",
			cleanup.ExpiredOperations, cleanup.TemporaryStudents)
	}
	if report.Attempted() == 0 && report.Unrecognized == 0 {
		cmd.Println("Nothing to sync.")
		return nil
	}
	cmd.Printf("Synced %d, failed %d, rejected %d", report.Succeeded, report.Failed, report.Rejected)
	if report.Unrecognized > 0 {
		cmd.Printf(", unsupported %d", report.Unrecognized)
	}
	cmd.Println(".")
	return nil
}
