package domain

// NotificationKind categorises user-visible sync notifications.
type NotificationKind string

// Notification kinds.
const (
	NotifyOffline     NotificationKind = "offline"
	NotifyOnline      NotificationKind = "online"
	NotifyQueued      NotificationKind = "queued"
	NotifySynced      NotificationKind = "synced"
	NotifyPartialSync NotificationKind = "partial-sync"
	NotifyRejected    NotificationKind = "rejected"
)

// Notification is a message for the person using the client.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// ReplayReport summarises one replay pass.
type ReplayReport struct {
	// Succeeded counts operations the backend accepted.
	Succeeded int

	// Failed counts operations kept for the next pass.
	Failed int

	// Unrecognized counts operations of a kind this client cannot replay.
	Unrecognized int

	// Rejected counts operations the backend refused and that were dead-lettered.
	Rejected int
}

// Attempted returns the number of operations that were sent to the backend.
func (r ReplayReport) Attempted() int {
	return r.Succeeded + r.Failed + r.Rejected
}

// CleanupReport summarises one cleanup pass.
type CleanupReport struct {
	// TemporaryStudents is the number of unconfirmed students removed.
	TemporaryStudents int

	// ExpiredOperations is the number of queued operations evicted by age.
	ExpiredOperations int
}
