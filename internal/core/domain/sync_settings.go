package domain

import "time"

// Sync defaults.
const (
	DefaultBaseURL           = "http://localhost:3000/api"
	DefaultAPITimeout        = 30 * time.Second
	DefaultRequestsPerSecond = 10.0
	DefaultCacheTTL          = time.Hour
	DefaultMaxRetries        = 3
	DefaultRetryDelay        = time.Second
	DefaultQueueRetention    = 24 * time.Hour
	DefaultProbeInterval     = 15 * time.Second
)

// APISettings configures the backend client.
type APISettings struct {
	// BaseURL is the backend API root, e.g. http://localhost:3000/api.
	BaseURL string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// Token is an optional bearer token.
	Token string

	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64
}

// SyncSettings configures caching, retries and the replay queue.
type SyncSettings struct {
	// CacheTTL is how long a cached snapshot stays fresh.
	CacheTTL time.Duration

	// MaxRetries is the number of attempts for an immediate write.
	MaxRetries int

	// RetryDelay is the base delay; attempt n waits n*RetryDelay.
	RetryDelay time.Duration

	// QueueRetention is the age after which timestamped operations are evicted.
	QueueRetention time.Duration
}

// WatchSettings configures the connectivity watcher.
type WatchSettings struct {
	// ProbeInterval is the time between health probes.
	ProbeInterval time.Duration
}

// StorageSettings configures the local store.
type StorageSettings struct {
	// DataDir holds the local database. Empty means ~/.questsync/data.
	DataDir string
}

// AppSettings aggregates all client settings.
type AppSettings struct {
	API     APISettings
	Sync    SyncSettings
	Watch   WatchSettings
	Storage StorageSettings
}

// DefaultAppSettings returns settings with all defaults applied.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		API: APISettings{
			BaseURL:           DefaultBaseURL,
			Timeout:           DefaultAPITimeout,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Sync: SyncSettings{
			CacheTTL:       DefaultCacheTTL,
			MaxRetries:     DefaultMaxRetries,
			RetryDelay:     DefaultRetryDelay,
			QueueRetention: DefaultQueueRetention,
		},
		Watch: WatchSettings{
			ProbeInterval: DefaultProbeInterval,
		},
	}
}
