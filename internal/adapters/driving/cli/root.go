// Package cli provides the cobra command tree of questsync.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learnquest/questsync/internal/core/ports/driven"
	"github.com/learnquest/questsync/internal/core/ports/driving"
	"github.com/learnquest/questsync/internal/logger"
)

// version is set at build time through SetVersion.
var version = "dev"

// Options holds the root flags. They are handed to the Factory.
type Options struct {
	Verbose   bool
	ConfigDir string
	DataDir   string
	Ephemeral bool
}

// Prober checks that the backend is reachable.
type Prober interface {
	Ping(ctx context.Context) error
}

// Services is everything the commands call into.
type Services struct {
	Sync       driving.SyncService
	Reconciler driving.Reconciler
	Queue      driving.QueueService
	Watcher    driving.ConnectivityWatcher
	Settings   driving.SettingsService
	Prober     Prober

	// ConfigWatcher is optional. When set, watch reloads configuration edits.
	ConfigWatcher driven.ConfigWatcher

	// Close releases the local store. Optional.
	Close func() error
}

// Factory builds the services once the root flags are parsed.
type Factory func(opts Options) (*Services, error)

var (
	opts     Options
	factory  Factory
	services *Services

	// built is true when services came from factory and must be closed.
	built bool
)

var rootCmd = &cobra.Command{
	Use:   "questsync",
	Short: "Offline-first client for the LearnQuest backend",
	Long: `questsync keeps a local copy of LearnQuest students, quests and progress.

Reads are served from the backend when it is reachable and from the local
cache otherwise. Writes made offline are queued and replayed in order once
the backend is back.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(opts.Verbose)
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeServices()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "print debug output")
	flags.StringVar(&opts.ConfigDir, "config-dir", "", "configuration directory (default ~/.questsync)")
	flags.StringVar(&opts.DataDir, "data-dir", "", "local store directory (overrides storage.data_dir)")
	flags.BoolVar(&opts.Ephemeral, "ephemeral", false, "keep the local store in memory for this run")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetFactory registers how services are built.
func SetFactory(f Factory) {
	factory = f
}

// SetServices installs prebuilt services. The caller keeps ownership.
func SetServices(s *Services) {
	services = s
	built = false
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadServices returns the services, building them on first use.
func loadServices() (*Services, error) {
	if services != nil {
		return services, nil
	}
	if factory == nil {
		return nil, errors.New("services not configured")
	}
	s, err := factory(opts)
	if err != nil {
		return nil, fmt.Errorf("starting questsync: %w", err)
	}
	services = s
	built = true
	return s, nil
}

func closeServices() error {
	if !built || services == nil {
		return nil
	}
	s := services
	services, built = nil, false
	if s.Close != nil {
		return s.Close()
	}
	return nil
}
