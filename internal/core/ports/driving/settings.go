package driving

import "github.com/learnquest/questsync/internal/core/domain"

// SettingsService manages client settings.
type SettingsService interface {
	// Get retrieves current settings with defaults applied.
	Get() (*domain.AppSettings, error)

	// Save persists settings.
	Save(settings *domain.AppSettings) error

	// SetBaseURL updates the backend URL.
	SetBaseURL(baseURL string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
