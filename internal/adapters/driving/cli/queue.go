package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/learnquest/questsync/internal/core/domain"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect changes waiting to be synced",
	RunE:  runQueueList,
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued changes in replay order",
	Args:  cobra.NoArgs,
	RunE:  runQueueList,
}

var queueRejectedCmd = &cobra.Command{
	Use:   "rejected",
	Short: "List changes the backend refused",
	Args:  cobra.NoArgs,
	RunE:  runQueueRejected,
}

var queueClearRejectedCmd = &cobra.Command{
	Use:   "clear-rejected",
	Short: "Forget the changes the backend refused",
	Args:  cobra.NoArgs,
	RunE:  runQueueClearRejected,
}

func init() {
	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueRejectedCmd)
	queueCmd.AddCommand(queueClearRejectedCmd)
	rootCmd.AddCommand(queueCmd)
}

func runQueueList(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	ops := svc.Queue.PendingOperations(cmd.Context())
	if len(ops) == 0 {
		cmd.Println("Nothing queued.")
		return nil
	}
	printOperations(cmd, ops)
	return nil
}

func runQueueRejected(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	ops := svc.Queue.RejectedOperations(cmd.Context())
	if len(ops) == 0 {
		cmd.Println("No rejected changes.")
		return nil
	}
	printOperations(cmd, ops)
	return nil
}

func runQueueClearRejected(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	if err := svc.Queue.ClearRejected(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Rejected changes cleared.")
	return nil
}

func printOperations(cmd *cobra.Command, ops []domain.PendingOperation) {
	for i, op := range ops {
		queued := "-"
		if op.HasTimestamp() {
			queued = op.EnqueuedAt.Local().Format(time.DateTime)
		}
		kind := string(op.Op.Kind())
		if _, unknown := op.Op.(domain.UnknownOp); unknown {
			kind += " (unsupported)"
		}
		cmd.Printf("%3d  %-19s  %-28s %s\n", i+1, queued, kind, op.Op.TargetID())
	}
}
