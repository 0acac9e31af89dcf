package services

import (
	"context"
	"sync"
	"time"

	"github.com/learnquest/questsync/internal/core/domain"
	"github.com/learnquest/questsync/internal/core/ports/driven"
	"github.com/learnquest/questsync/internal/core/ports/driving"
	"github.com/learnquest/questsync/internal/logger"
	"github.com/learnquest/questsync/internal/normalisers/entity"
)

// Ensure SyncEngine implements the interfaces.
var (
	_ driving.SyncService  = (*SyncEngine)(nil)
	_ driving.Reconciler   = (*SyncEngine)(nil)
	_ driving.QueueService = (*SyncEngine)(nil)
)

// SyncEngine is the offline-first data layer. It is the only writer of
// the local cache and the replay queue.
type SyncEngine struct {
	remote    driven.BackendAPI
	cache     *CacheManager
	norm      *entity.Normaliser
	notifier  driven.Notifier
	validator *Validator
	retry     RetryPolicy
	retention time.Duration

	now   func() time.Time
	sleep sleepFunc

	// running guards reconciliation passes
	mu      sync.Mutex
	running bool
}

// NewSyncEngine creates a sync engine. A nil notifier discards notifications.
func NewSyncEngine(
	remote driven.BackendAPI,
	cache *CacheManager,
	norm *entity.Normaliser,
	notifier driven.Notifier,
	settings domain.SyncSettings,
) *SyncEngine {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	policy := RetryPolicy{MaxAttempts: settings.MaxRetries, BaseDelay: settings.RetryDelay}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = domain.DefaultMaxRetries
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = domain.DefaultRetryDelay
	}
	retention := settings.QueueRetention
	if retention <= 0 {
		retention = domain.DefaultQueueRetention
	}
	return &SyncEngine{
		remote:    remote,
		cache:     cache,
		norm:      norm,
		notifier:  notifier,
		validator: NewValidator(),
		retry:     policy,
		retention: retention,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

type discardNotifier struct{}

func (discardNotifier) Notify(domain.Notification) {}

// fetchThrough runs the read path shared by every kind: live fetch, then
// cache fallback with one refresh attempt when the cache is stale.
func fetchThrough[T any](
	ctx context.Context,
	e *SyncEngine,
	kind domain.CacheKind,
	name string,
	fetch func(context.Context) (T, error),
	store func(context.Context, T) error,
	cached func(context.Context) T,
) T {
	fresh, err := fetch(ctx)
	if err == nil {
		if err := store(ctx, fresh); err != nil {
			logger.Warn("%s: caching fresh data: %v", name, err)
		}
		return fresh
	}
	logger.Warn("%s: live fetch failed, using cache: %v", name, err)

	fallback := cached(ctx)
	if !e.cache.IsStale(ctx, kind) {
		return fallback
	}

	fresh, err = fetch(ctx)
	if err != nil {
		logger.Debug("%s: stale cache refresh failed: %v", name, err)
		return fallback
	}
	if err := store(ctx, fresh); err != nil {
		logger.Warn("%s: caching refreshed data: %v", name, err)
	}
	return fresh
}

// FetchStudents returns all students.
func (e *SyncEngine) FetchStudents(ctx context.Context) []domain.Student {
	return fetchThrough(ctx, e, domain.CacheStudents, "students",
		func(ctx context.Context) ([]domain.Student, error) {
			raw, err := e.remote.ListStudents(ctx)
			if err != nil {
				return nil, err
			}
			return e.norm.Students(raw), nil
		},
		e.cache.SetStudents,
		e.cache.Students,
	)
}

// FetchStudent returns one student and makes it the active student.
func (e *SyncEngine) FetchStudent(ctx context.Context, id string) (*domain.Student, bool) {
	s := fetchThrough(ctx, e, domain.CacheActiveStudent, "student "+id,
		func(ctx context.Context) (*domain.Student, error) {
			raw, err := e.remote.GetStudent(ctx, id)
			if err != nil {
				return nil, err
			}
			s := e.norm.Student(raw)
			return &s, nil
		},
		func(ctx context.Context, s *domain.Student) error {
			return e.cache.SetActiveStudent(ctx, *s)
		},
		func(ctx context.Context) *domain.Student {
			s, _ := e.cache.Student(ctx, id)
			return s
		},
	)
	if s == nil || s.ID != id {
		return nil, false
	}
	return s, true
}

// FetchQuests returns all quests.
func (e *SyncEngine) FetchQuests(ctx context.Context) []domain.Quest {
	return fetchThrough(ctx, e, domain.CacheQuests, "quests",
		func(ctx context.Context) ([]domain.Quest, error) {
			raw, err := e.remote.ListQuests(ctx)
			if err != nil {
				return nil, err
			}
			return e.norm.Quests(raw), nil
		},
		e.cache.SetQuests,
		e.cache.Quests,
	)
}

// FetchQuest returns one quest.
func (e *SyncEngine) FetchQuest(ctx context.Context, id string) (*domain.Quest, bool) {
	q := fetchThrough(ctx, e, domain.CacheQuests, "quest "+id,
		func(ctx context.Context) (*domain.Quest, error) {
			raw, err := e.remote.GetQuest(ctx, id)
			if err != nil {
				return nil, err
			}
			q := e.norm.Quest(raw)
			return &q, nil
		},
		func(ctx context.Context, q *domain.Quest) error {
			return e.cache.UpsertQuest(ctx, *q)
		},
		func(ctx context.Context) *domain.Quest {
			q, _ := e.cache.Quest(ctx, id)
			return q
		},
	)
	if q == nil {
		return nil, false
	}
	return q, true
}

// FetchProgress returns the progress records of one student.
func (e *SyncEngine) FetchProgress(ctx context.Context, studentID string) []domain.Progress {
	return fetchThrough(ctx, e, domain.CacheProgress, "progress "+studentID,
		func(ctx context.Context) ([]domain.Progress, error) {
			raw, err := e.remote.ListStudentProgress(ctx, studentID)
			if err != nil {
				return nil, err
			}
			return e.norm.ProgressList(raw), nil
		},
		func(ctx context.Context, records []domain.Progress) error {
			return e.cache.ReplaceStudentProgress(ctx, studentID, records)
		},
		func(ctx context.Context) []domain.Progress {
			return e.cache.StudentProgress(ctx, studentID)
		},
	)
}

// FetchAllProgress returns every progress record.
func (e *SyncEngine) FetchAllProgress(ctx context.Context) []domain.Progress {
	return fetchThrough(ctx, e, domain.CacheProgress, "progress",
		func(ctx context.Context) ([]domain.Progress, error) {
			raw, err := e.remote.ListProgress(ctx)
			if err != nil {
				return nil, err
			}
			return e.norm.ProgressList(raw), nil
		},
		e.cache.SetProgress,
		e.cache.Progress,
	)
}

// FetchSMSLogs returns the SMS history.
func (e *SyncEngine) FetchSMSLogs(ctx context.Context) []domain.SMSLog {
	return fetchThrough(ctx, e, domain.CacheSMSLogs, "sms logs",
		func(ctx context.Context) ([]domain.SMSLog, error) {
			raw, err := e.remote.ListSMSLogs(ctx)
			if err != nil {
				return nil, err
			}
			return e.norm.SMSLogs(raw), nil
		},
		e.cache.SetSMSLogs,
		e.cache.SMSLogs,
	)
}

// FetchRecommendations returns quest recommendations for a student,
// falling back to the cached copy and then to the neutral response.
func (e *SyncEngine) FetchRecommendations(ctx context.Context, studentID string) domain.RecommendationResponse {
	raw, err := e.remote.GetRecommendations(ctx, studentID)
	if err == nil {
		resp := e.norm.Recommendations(raw)
		if err := e.cache.SetRecommendations(ctx, studentID, resp); err != nil {
			logger.Warn("recommendations: caching: %v", err)
		}
		return resp
	}
	logger.Warn("recommendations %s: live fetch failed, using cache: %v", studentID, err)

	if cached, ok := e.cache.Recommendations(ctx, studentID); ok {
		return cached
	}
	return domain.NeutralRecommendations()
}

// --- Queue inspection ---

// PendingOperations returns the replay queue.
func (e *SyncEngine) PendingOperations(ctx context.Context) []domain.PendingOperation {
	return e.cache.PendingOperations(ctx)
}

// RejectedOperations returns operations the backend refused during replay.
func (e *SyncEngine) RejectedOperations(ctx context.Context) []domain.PendingOperation {
	return e.cache.RejectedOperations(ctx)
}

// ClearRejected empties the dead-letter list.
func (e *SyncEngine) ClearRejected(ctx context.Context) error {
	return e.cache.ClearRejected(ctx)
}

// CacheStatus reports freshness for every cached kind.
func (e *SyncEngine) CacheStatus(ctx context.Context) []driving.CacheStatus {
	kinds := domain.CacheKinds()
	statuses := make([]driving.CacheStatus, 0, len(kinds))
	for _, kind := range kinds {
		refreshed, _ := e.cache.RefreshedAt(ctx, kind)
		statuses = append(statuses, driving.CacheStatus{
			Kind:        kind,
			RefreshedAt: refreshed,
			Stale:       e.cache.IsStale(ctx, kind),
		})
	}
	return statuses
}

func (e *SyncEngine) enqueue(ctx context.Context, op domain.Operation) error {
	pending := domain.PendingOperation{Op: op, EnqueuedAt: e.now().UTC()}
	if err := e.cache.AppendOperation(ctx, pending); err != nil {
		return err
	}
	logger.Info("queued %s %s for replay", op.Kind(), op.TargetID())
	return nil
}
