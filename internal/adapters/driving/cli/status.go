package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/learnquest/questsync/internal/adapters/driven/notify"
)

// probeTimeout bounds the reachability check of the status command.
const probeTimeout = 5 * time.Second

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity, queue and cache state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	styles := notify.DefaultStyles()

	online := false
	if svc.Prober != nil {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		online = svc.Prober.Ping(probeCtx) == nil
		cancel()
	}
	cmd.Printf("Backend: %s\n", styles.Badge(online))

	pending := svc.Queue.PendingOperations(ctx)
	rejected := svc.Queue.RejectedOperations(ctx)
	cmd.Printf("Queued changes: %d\n", len(pending))
	if len(rejected) > 0 {
		cmd.Printf("Rejected changes: %d (see 'questsync queue rejected')\n", len(rejected))
	}

	cmd.Println()
	cmd.Println("Cache")
	for _, st := range svc.Queue.CacheStatus(ctx) {
		state := styles.Success.Render("fresh")
		if st.Stale {
			state = styles.Warning.Render("stale")
		}
		refreshed := "never"
		if !st.RefreshedAt.IsZero() {
			refreshed = st.RefreshedAt.Local().Format(time.DateTime)
		}
		cmd.Printf("  %-22s %s  %s\n", st.Kind, state, refreshed)
	}
	return nil
}
