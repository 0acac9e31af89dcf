package driven

import "github.com/learnquest/questsync/internal/core/domain"

// Notifier shows sync notifications to the person using the client.
// Implementations must not block.
type Notifier interface {
	Notify(n domain.Notification)
}
