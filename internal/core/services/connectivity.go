package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/learnquest/questsync/internal/core/domain"
	"github.com/learnquest/questsync/internal/core/ports/driven"
	"github.com/learnquest/questsync/internal/core/ports/driving"
	"github.com/learnquest/questsync/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driving.ConnectivityWatcher = (*Watcher)(nil)

// Prober checks that the backend is reachable.
type Prober interface {
	Ping(ctx context.Context) error
}

// Watcher tracks backend reachability. Going from offline to online runs
// cleanup then replay on a background goroutine.
type Watcher struct {
	prober     Prober
	reconciler driving.Reconciler
	notifier   driven.Notifier
	interval   time.Duration

	mu      sync.Mutex
	online  bool
	running bool
	stopped bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher. The initial state is offline, so the first
// successful probe reconciles anything queued by an earlier session.
func NewWatcher(
	prober Prober,
	reconciler driving.Reconciler,
	notifier driven.Notifier,
	interval time.Duration,
) *Watcher {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	if interval <= 0 {
		interval = domain.DefaultProbeInterval
	}
	return &Watcher{
		prober:     prober,
		reconciler: reconciler,
		notifier:   notifier,
		interval:   interval,
	}
}

// Start probes the backend until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.stopped = false
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	// Probe immediately on startup
	w.probe(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.halt()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.probe(ctx)
		}
	}
}

// Stop ends the probe loop and waits for a running reconciliation. Later
// transitions to online are recorded but no longer reconcile.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.halt()
	w.wg.Wait()
	return nil
}

func (w *Watcher) halt() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
}

// IsOnline returns the last known state.
func (w *Watcher) IsOnline() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

// SetOnline records a state change. It returns immediately; a transition
// to online reconciles on a separate goroutine.
func (w *Watcher) SetOnline(ctx context.Context, online bool) {
	w.mu.Lock()
	previous := w.online
	w.online = online
	spawn := online && !previous && !w.stopped
	if spawn {
		// Add under the lock so Stop cannot start waiting in between.
		w.wg.Add(1)
	}
	w.mu.Unlock()

	switch {
	case online && !previous:
		logger.Info("backend reachable")
		w.notifier.Notify(domain.Notification{Kind: domain.NotifyOnline, Message: "Back online."})
		if !spawn {
			return
		}
		go func() {
			defer w.wg.Done()
			w.reconcile(ctx)
		}()
	case !online && previous:
		logger.Info("backend unreachable")
		w.notifier.Notify(domain.Notification{
			Kind:    domain.NotifyOffline,
			Message: "You are offline. Changes will be saved and synced later.",
		})
	}
}

// Wait blocks until background reconciliation has finished.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) probe(ctx context.Context) {
	err := w.prober.Ping(ctx)
	if err != nil {
		logger.Debug("health probe failed: %v", err)
	}
	w.SetOnline(ctx, err == nil)
}

func (w *Watcher) reconcile(ctx context.Context) {
	cleanup, report, err := w.reconciler.Reconcile(ctx)
	switch {
	case errors.Is(err, domain.ErrSyncInProgress):
		logger.Debug("reconcile skipped: a pass is already running")
	case err != nil:
		logger.Warn("reconcile failed: %v", err)
	default:
		logger.Info("reconciled: %d synced, %d failed, %d rejected, %d unsupported, %d expired",
			report.Succeeded, report.Failed, report.Rejected, report.Unrecognized, cleanup.ExpiredOperations)
	}
}
