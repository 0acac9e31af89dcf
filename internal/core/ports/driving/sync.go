package driving

import (
	"context"
	"time"

	"github.com/learnquest/questsync/internal/core/domain"
)

// SyncService is the offline-first entry point for reads and writes.
//
// Read methods never fail: when the backend is unreachable they return
// cached data, possibly stale, or an empty result.
// Write methods degrade to local application plus queuing; they only
// return an error for invalid input.
type SyncService interface {
	FetchStudents(ctx context.Context) []domain.Student
	FetchStudent(ctx context.Context, id string) (*domain.Student, bool)
	FetchQuests(ctx context.Context) []domain.Quest
	FetchQuest(ctx context.Context, id string) (*domain.Quest, bool)
	FetchProgress(ctx context.Context, studentID string) []domain.Progress
	FetchAllProgress(ctx context.Context) []domain.Progress
	FetchSMSLogs(ctx context.Context) []domain.SMSLog
	FetchRecommendations(ctx context.Context, studentID string) domain.RecommendationResponse

	// SubmitProgress records a quest attempt, retrying before queuing.
	SubmitProgress(ctx context.Context, progress domain.Progress) (domain.WriteOutcome, error)

	CreateStudent(ctx context.Context, draft domain.StudentDraft) (*domain.Student, error)
	UpdateStudent(ctx context.Context, id string, patch domain.StudentPatch) (*domain.Student, error)
	DeleteStudent(ctx context.Context, id string) error

	CreateQuest(ctx context.Context, draft domain.Quest) (*domain.Quest, error)
	UpdateQuest(ctx context.Context, id string, patch domain.QuestPatch) (*domain.Quest, error)
	DeleteQuest(ctx context.Context, id string) error

	SendSMS(ctx context.Context, req domain.SMSRequest) (domain.WriteOutcome, error)
}

// Reconciler replays deferred operations against the backend.
type Reconciler interface {
	// Cleanup drops temporary students and expired operations.
	Cleanup(ctx context.Context) (domain.CleanupReport, error)

	// Replay sends queued operations in order.
	// Returns domain.ErrSyncInProgress if a pass is already running.
	Replay(ctx context.Context) (domain.ReplayReport, error)

	// Reconcile runs Cleanup followed by Replay as one guarded pass.
	Reconcile(ctx context.Context) (domain.CleanupReport, domain.ReplayReport, error)
}

// QueueService exposes the replay queue and cache freshness.
type QueueService interface {
	PendingOperations(ctx context.Context) []domain.PendingOperation
	RejectedOperations(ctx context.Context) []domain.PendingOperation
	ClearRejected(ctx context.Context) error
	CacheStatus(ctx context.Context) []CacheStatus
}

// CacheStatus describes the freshness of one cached kind.
type CacheStatus struct {
	// Kind identifies the cache.
	Kind domain.CacheKind

	// RefreshedAt is when the cache was last written. Zero if never.
	RefreshedAt time.Time

	// Stale is true when the cache is older than the TTL or was never written.
	Stale bool
}
