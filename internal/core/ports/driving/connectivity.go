package driving

import "context"

// ConnectivityWatcher tracks whether the backend is reachable and
// reconciles the replay queue when it becomes reachable again.
type ConnectivityWatcher interface {
	// Start probes the backend periodically. It blocks until Stop is
	// called or ctx is cancelled.
	Start(ctx context.Context) error

	// Stop ends the probe loop and waits for running reconciliation.
	Stop() error

	// SetOnline records a connectivity change reported by the caller.
	// It never blocks on network work.
	SetOnline(ctx context.Context, online bool)

	// IsOnline returns the last known state.
	IsOnline() bool
}
