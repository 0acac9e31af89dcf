// Command questsync is the offline-first LearnQuest client.
package main

import (
	"fmt"
	"os"

	"github.com/learnquest/questsync/internal/adapters/driven/config/file"
	"github.com/learnquest/questsync/internal/adapters/driven/notify"
	"github.com/learnquest/questsync/internal/adapters/driven/remote"
	"github.com/learnquest/questsync/internal/adapters/driven/storage/memory"
	"github.com/learnquest/questsync/internal/adapters/driven/storage/sqlite"
	"github.com/learnquest/questsync/internal/adapters/driving/cli"
	"github.com/learnquest/questsync/internal/core/ports/driven"
	"github.com/learnquest/questsync/internal/core/services"
	"github.com/learnquest/questsync/internal/logger"
	"github.com/learnquest/questsync/internal/normalisers/entity"
)

// version is overridden with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetFactory(build)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// build wires the adapters into the services the commands use.
func build(opts cli.Options) (*cli.Services, error) {
	var configStore driven.ConfigStore
	var configWatcher driven.ConfigWatcher
	fileStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		// A corrupt config file falls back to defaults.
		logger.Warn("%v; using default settings for this run", err)
		configStore = memory.NewConfigStore()
	} else {
		configStore = fileStore
		configWatcher = fileStore
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	dataDir := settings.Storage.DataDir
	if opts.DataDir != "" {
		dataDir = opts.DataDir
	}

	var store driven.KeyValueStore
	closeStore := func() error { return nil }
	if opts.Ephemeral {
		store = memory.NewKeyValueStore()
		logger.Debug("using in-memory store")
	} else {
		sqliteStore, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("opening local store: %w", err)
		}
		store = sqliteStore
		closeStore = sqliteStore.Close
		logger.Debug("using local store %s", sqliteStore.Path())
	}

	client := remote.NewClient(settings.API)
	logger.Debug("backend %s", client.BaseURL())

	norm := entity.New()
	cache := services.NewCacheManager(store, norm, settings.Sync.CacheTTL)
	notifier := notify.NewConsole(os.Stderr, nil)
	engine := services.NewSyncEngine(client, cache, norm, notifier, settings.Sync)
	watcher := services.NewWatcher(client, engine, notifier, settings.Watch.ProbeInterval)

	return &cli.Services{
		Sync:          engine,
		Reconciler:    engine,
		Queue:         engine,
		Watcher:       watcher,
		Settings:      settingsService,
		Prober:        client,
		ConfigWatcher: configWatcher,
		Close:         closeStore,
	}, nil
}
