// Package notify prints sync notifications to the terminal.
package notify

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/learnquest/questsync/internal/core/domain"
)

// Theme defines the colour palette of terminal output.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Warning indicates caution.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// Online and Offline render the connectivity badge.
	Online  lipgloss.Style
	Offline lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	return &Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Muted:   lipgloss.NewStyle().Foreground(theme.Muted),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Foreground(theme.Warning),
		Error:   lipgloss.NewStyle().Foreground(theme.Error),
		Online:  badge.Foreground(lipgloss.Color("#1E1E2E")).Background(theme.Success),
		Offline: badge.Foreground(lipgloss.Color("#1E1E2E")).Background(theme.Warning),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// ForKind returns the style matching a notification kind.
func (s *Styles) ForKind(kind domain.NotificationKind) lipgloss.Style {
	switch kind {
	case domain.NotifyOnline, domain.NotifySynced:
		return s.Success
	case domain.NotifyOffline, domain.NotifyQueued, domain.NotifyPartialSync:
		return s.Warning
	case domain.NotifyRejected:
		return s.Error
	default:
		return s.Muted
	}
}

// Badge renders the connectivity indicator.
func (s *Styles) Badge(online bool) string {
	if online {
		return s.Online.Render("ONLINE")
	}
	return s.Offline.Render("OFFLINE")
}
