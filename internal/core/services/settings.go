package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/learnquest/questsync/internal/core/domain"
	"github.com/learnquest/questsync/internal/core/ports/driven"
	"github.com/learnquest/questsync/internal/core/ports/driving"
	"github.com/learnquest/questsync/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyAPIBaseURL        = "api.base_url"
	keyAPITimeout        = "api.timeout"
	keyAPIToken          = "api.token"
	keyAPIRequestsPerSec = "api.requests_per_second"
	keyCacheTTL          = "sync.cache_ttl"
	keyMaxRetries        = "sync.max_retries"
	keyRetryDelay        = "sync.retry_delay"
	keyQueueRetention    = "sync.queue_retention"
	keyProbeInterval     = "watch.probe_interval"
	keyDataDir           = "storage.data_dir"
)

// SettingsService manages client settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Missing or invalid values fall back to
// their defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		API: domain.APISettings{
			BaseURL:           strings.TrimRight(s.getString(keyAPIBaseURL, defaults.API.BaseURL), "/"),
			Timeout:           s.getDuration(keyAPITimeout, defaults.API.Timeout),
			Token:             s.configStore.GetString(keyAPIToken),
			RequestsPerSecond: s.getFloat(keyAPIRequestsPerSec, defaults.API.RequestsPerSecond),
		},
		Sync: domain.SyncSettings{
			CacheTTL:       s.getDuration(keyCacheTTL, defaults.Sync.CacheTTL),
			MaxRetries:     s.getInt(keyMaxRetries, defaults.Sync.MaxRetries),
			RetryDelay:     s.getDuration(keyRetryDelay, defaults.Sync.RetryDelay),
			QueueRetention: s.getDuration(keyQueueRetention, defaults.Sync.QueueRetention),
		},
		Watch: domain.WatchSettings{
			ProbeInterval: s.getDuration(keyProbeInterval, defaults.Watch.ProbeInterval),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(keyDataDir),
		},
	}

	return settings, nil
}

// Save persists settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyAPIBaseURL, settings.API.BaseURL},
		{keyAPITimeout, settings.API.Timeout.String()},
		{keyAPIRequestsPerSec, settings.API.RequestsPerSecond},
		{keyCacheTTL, settings.Sync.CacheTTL.String()},
		{keyMaxRetries, settings.Sync.MaxRetries},
		{keyRetryDelay, settings.Sync.RetryDelay.String()},
		{keyQueueRetention, settings.Sync.QueueRetention.String()},
		{keyProbeInterval, settings.Watch.ProbeInterval.String()},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.API.Token != "" {
		if err := s.configStore.Set(keyAPIToken, settings.API.Token); err != nil {
			return fmt.Errorf("save %s: %w", keyAPIToken, err)
		}
	}
	if settings.Storage.DataDir != "" {
		if err := s.configStore.Set(keyDataDir, settings.Storage.DataDir); err != nil {
			return fmt.Errorf("save %s: %w", keyDataDir, err)
		}
	}

	return nil
}

// SetBaseURL updates the backend URL.
func (s *SettingsService) SetBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base url must be an absolute http(s) url: %q", domain.ErrInvalidInput, baseURL)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.API.BaseURL = strings.TrimRight(baseURL, "/")
	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetFloat(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

// getDuration reads a Go duration string such as "90s" or "1h30m".
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		logger.Warn("config: invalid duration %s=%q, using %s", key, val, defaultVal)
		return defaultVal
	}
	return d
}
