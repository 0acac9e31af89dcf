package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/learnquest/questsync/internal/core/domain"
	"github.com/learnquest/questsync/internal/core/ports/driven"
	"github.com/learnquest/questsync/internal/logger"
	"github.com/learnquest/questsync/internal/normalisers/entity"
)

// CacheManager owns the cached snapshots and the replay queue in the
// local store. Reads never fail: absent or corrupt entries read as empty.
// Every write stamps the kind's refresh time.
type CacheManager struct {
	store driven.KeyValueStore
	norm  *entity.Normaliser
	ttl   time.Duration
	now   func() time.Time

	// mu serialises read-modify-write sequences across store calls.
	mu sync.Mutex
}

// NewCacheManager creates a cache manager over store.
func NewCacheManager(store driven.KeyValueStore, norm *entity.Normaliser, ttl time.Duration) *CacheManager {
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	return &CacheManager{
		store: store,
		norm:  norm,
		ttl:   ttl,
		now:   time.Now,
	}
}

// TTL returns the freshness window.
func (c *CacheManager) TTL() time.Duration {
	return c.ttl
}

// --- Raw helpers. Callers hold mu where a sequence must be atomic. ---

func (c *CacheManager) readRaw(ctx context.Context, key string) []byte {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logger.Warn("cache: read %s: %v", key, err)
		return nil
	}
	if !ok {
		return nil
	}
	return data
}

func readList[T any](ctx context.Context, c *CacheManager, key string) []T {
	items := []T{}
	data := c.readRaw(ctx, key)
	if data == nil {
		return items
	}
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		if err != nil {
			logger.Warn("cache: %s is corrupt, treating as empty: %v", key, err)
		}
		return []T{}
	}
	return items
}

func (c *CacheManager) write(ctx context.Context, kind domain.CacheKind, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", kind, err)
	}
	if err := c.store.Set(ctx, string(kind), data); err != nil {
		return fmt.Errorf("writing %s: %w", kind, err)
	}
	stamp := strconv.FormatInt(c.now().UnixMilli(), 10)
	if err := c.store.Set(ctx, kind.TimestampKey(), []byte(stamp)); err != nil {
		return fmt.Errorf("stamping %s: %w", kind, err)
	}
	return nil
}

// --- Freshness ---

// RefreshedAt returns when kind was last written.
func (c *CacheManager) RefreshedAt(ctx context.Context, kind domain.CacheKind) (time.Time, bool) {
	data := c.readRaw(ctx, kind.TimestampKey())
	if data == nil {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		logger.Warn("cache: bad timestamp for %s: %q", kind, data)
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// IsStale reports whether kind was never written or is older than the TTL.
func (c *CacheManager) IsStale(ctx context.Context, kind domain.CacheKind) bool {
	refreshed, ok := c.RefreshedAt(ctx, kind)
	if !ok {
		return true
	}
	return c.now().Sub(refreshed) > c.ttl
}

// --- Students ---

// Students returns the cached student list.
func (c *CacheManager) Students(ctx context.Context) []domain.Student {
	return readList[domain.Student](ctx, c, string(domain.CacheStudents))
}

// SetStudents replaces the cached student list.
func (c *CacheManager) SetStudents(ctx context.Context, students []domain.Student) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(ctx, domain.CacheStudents, students)
}

// ActiveStudent returns the cached active student.
func (c *CacheManager) ActiveStudent(ctx context.Context) (*domain.Student, bool) {
	data := c.readRaw(ctx, string(domain.CacheActiveStudent))
	if data == nil {
		return nil, false
	}
	var s domain.Student
	if err := json.Unmarshal(data, &s); err != nil || s.ID == "" {
		if err != nil {
			logger.Warn("cache: active student is corrupt: %v", err)
		}
		return nil, false
	}
	return &s, true
}

// SetActiveStudent replaces the cached active student.
func (c *CacheManager) SetActiveStudent(ctx context.Context, s domain.Student) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(ctx, domain.CacheActiveStudent, s)
}

// Student looks a student up in the active slot, then in the list.
func (c *CacheManager) Student(ctx context.Context, id string) (*domain.Student, bool) {
	if active, ok := c.ActiveStudent(ctx); ok && active.ID == id {
		return active, true
	}
	for _, s := range c.Students(ctx) {
		if s.ID == id {
			return &s, true
		}
	}
	return nil, false
}

// UpsertStudent replaces the student with the same id, or appends it.
// The active student is refreshed when it is the same student.
func (c *CacheManager) UpsertStudent(ctx context.Context, s domain.Student) error {
	return c.ReplaceStudent(ctx, s.ID, s)
}

// ReplaceStudent swaps the student stored under oldID for s.
// When oldID is not cached, s is appended.
func (c *CacheManager) ReplaceStudent(ctx context.Context, oldID string, s domain.Student) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	students := c.Students(ctx)
	replaced := false
	for i := range students {
		if students[i].ID == oldID {
			students[i] = s
			replaced = true
			break
		}
	}
	if !replaced {
		students = append(students, s)
	}
	if err := c.write(ctx, domain.CacheStudents, students); err != nil {
		return err
	}

	if active, ok := c.ActiveStudent(ctx); ok && active.ID == oldID {
		return c.write(ctx, domain.CacheActiveStudent, s)
	}
	return nil
}

// RemoveStudent drops a student from the list and clears the active slot
// if it holds that student.
func (c *CacheManager) RemoveStudent(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	students := c.Students(ctx)
	kept := students[:0]
	for _, s := range students {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if err := c.write(ctx, domain.CacheStudents, kept); err != nil {
		return err
	}
	if active, ok := c.ActiveStudent(ctx); ok && active.ID == id {
		if err := c.store.Delete(ctx, string(domain.CacheActiveStudent)); err != nil {
			return fmt.Errorf("clearing active student: %w", err)
		}
	}
	return nil
}

// RemoveTemporaryStudents drops every student whose id is temporary, from
// the list and from the active slot, and returns how many the list held.
func (c *CacheManager) RemoveTemporaryStudents(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	students := c.Students(ctx)
	kept := make([]domain.Student, 0, len(students))
	for _, s := range students {
		if !domain.IsTemporaryID(s.ID) {
			kept = append(kept, s)
		}
	}
	removed := len(students) - len(kept)
	if removed > 0 {
		if err := c.write(ctx, domain.CacheStudents, kept); err != nil {
			return 0, err
		}
	}

	if active, ok := c.ActiveStudent(ctx); ok && domain.IsTemporaryID(active.ID) {
		if err := c.store.Delete(ctx, string(domain.CacheActiveStudent)); err != nil {
			return removed, fmt.Errorf("clearing active student: %w", err)
		}
	}
	return removed, nil
}

// AddXP adds delta to the student's XP in the active slot and the list.
func (c *CacheManager) AddXP(ctx context.Context, studentID string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if active, ok := c.ActiveStudent(ctx); ok && active.ID == studentID {
		active.XP += delta
		if err := c.write(ctx, domain.CacheActiveStudent, active); err != nil {
			return err
		}
	}

	students := c.Students(ctx)
	for i := range students {
		if students[i].ID == studentID {
			students[i].XP += delta
			return c.write(ctx, domain.CacheStudents, students)
		}
	}
	return nil
}

// --- Quests ---

// Quests returns the cached quests, normalised.
func (c *CacheManager) Quests(ctx context.Context) []domain.Quest {
	data := c.readRaw(ctx, string(domain.CacheQuests))
	if data == nil {
		return []domain.Quest{}
	}
	if !json.Valid(data) {
		logger.Warn("cache: %s is corrupt, treating as empty", domain.CacheQuests)
		return []domain.Quest{}
	}
	return c.norm.Quests(data)
}

// Quest returns one cached quest.
func (c *CacheManager) Quest(ctx context.Context, id string) (*domain.Quest, bool) {
	for _, q := range c.Quests(ctx) {
		if q.ID == id {
			return &q, true
		}
	}
	return nil, false
}

// SetQuests replaces the cached quest list.
func (c *CacheManager) SetQuests(ctx context.Context, quests []domain.Quest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(ctx, domain.CacheQuests, quests)
}

// UpsertQuest replaces the quest with the same id, or appends it.
func (c *CacheManager) UpsertQuest(ctx context.Context, q domain.Quest) error {
	return c.ReplaceQuest(ctx, q.ID, q)
}

// ReplaceQuest swaps the quest stored under oldID for q, appending when
// oldID is not cached.
func (c *CacheManager) ReplaceQuest(ctx context.Context, oldID string, q domain.Quest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	quests := c.Quests(ctx)
	for i := range quests {
		if quests[i].ID == oldID {
			quests[i] = q
			return c.write(ctx, domain.CacheQuests, quests)
		}
	}
	return c.write(ctx, domain.CacheQuests, append(quests, q))
}

// RemoveQuest drops a quest from the cache.
func (c *CacheManager) RemoveQuest(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	quests := c.Quests(ctx)
	kept := make([]domain.Quest, 0, len(quests))
	for _, q := range quests {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	return c.write(ctx, domain.CacheQuests, kept)
}

// --- Progress ---

// Progress returns all cached progress records.
func (c *CacheManager) Progress(ctx context.Context) []domain.Progress {
	return readList[domain.Progress](ctx, c, string(domain.CacheProgress))
}

// StudentProgress returns the cached records of one student.
func (c *CacheManager) StudentProgress(ctx context.Context, studentID string) []domain.Progress {
	all := c.Progress(ctx)
	records := make([]domain.Progress, 0, len(all))
	for _, p := range all {
		if p.StudentID == studentID {
			records = append(records, p)
		}
	}
	return records
}

// SetProgress replaces all cached progress records.
func (c *CacheManager) SetProgress(ctx context.Context, records []domain.Progress) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(ctx, domain.CacheProgress, records)
}

// ReplaceStudentProgress replaces the records of one student, keeping
// everyone else's.
func (c *CacheManager) ReplaceStudentProgress(ctx context.Context, studentID string, records []domain.Progress) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	all := c.Progress(ctx)
	merged := make([]domain.Progress, 0, len(all)+len(records))
	for _, p := range all {
		if p.StudentID != studentID {
			merged = append(merged, p)
		}
	}
	merged = append(merged, records...)
	return c.write(ctx, domain.CacheProgress, merged)
}

// --- SMS logs ---

// SMSLogs returns the cached SMS logs.
func (c *CacheManager) SMSLogs(ctx context.Context) []domain.SMSLog {
	return readList[domain.SMSLog](ctx, c, string(domain.CacheSMSLogs))
}

// SetSMSLogs replaces the cached SMS logs.
func (c *CacheManager) SetSMSLogs(ctx context.Context, logs []domain.SMSLog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(ctx, domain.CacheSMSLogs, logs)
}

// --- Recommendations ---

// Recommendations returns the cached recommendations of a student.
func (c *CacheManager) Recommendations(ctx context.Context, studentID string) (domain.RecommendationResponse, bool) {
	data := c.readRaw(ctx, domain.RecommendationsKeyPrefix+studentID)
	if data == nil || !json.Valid(data) {
		return domain.NeutralRecommendations(), false
	}
	return c.norm.Recommendations(data), true
}

// SetRecommendations caches the recommendations of a student.
func (c *CacheManager) SetRecommendations(ctx context.Context, studentID string, resp domain.RecommendationResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encoding recommendations: %w", err)
	}
	return c.store.Set(ctx, domain.RecommendationsKeyPrefix+studentID, data)
}

// --- Replay queue ---

func (c *CacheManager) readOperations(ctx context.Context, key string) []domain.PendingOperation {
	data := c.readRaw(ctx, key)
	if data == nil {
		return []domain.PendingOperation{}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("cache: %s is corrupt, treating as empty: %v", key, err)
		return []domain.PendingOperation{}
	}

	ops := make([]domain.PendingOperation, 0, len(entries))
	for _, entry := range entries {
		var op domain.PendingOperation
		if err := json.Unmarshal(entry, &op); err != nil {
			// Not an object. Keep the bytes so the entry is never lost.
			op = domain.PendingOperation{Op: domain.UnknownOp{Raw: entry}}
		}
		ops = append(ops, op)
	}
	return ops
}

func (c *CacheManager) writeOperations(ctx context.Context, key string, ops []domain.PendingOperation) error {
	if ops == nil {
		ops = []domain.PendingOperation{}
	}
	data, err := json.Marshal(ops)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// PendingOperations returns the replay queue in enqueue order.
func (c *CacheManager) PendingOperations(ctx context.Context) []domain.PendingOperation {
	return c.readOperations(ctx, domain.PendingOperationsKey)
}

// AppendOperation adds op to the end of the replay queue.
func (c *CacheManager) AppendOperation(ctx context.Context, op domain.PendingOperation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ops := c.readOperations(ctx, domain.PendingOperationsKey)
	return c.writeOperations(ctx, domain.PendingOperationsKey, append(ops, op))
}

// FinishReplay persists the outcome of a replay pass that read processed
// entries. kept replaces those entries; anything appended to the queue
// since the pass started is preserved after them.
func (c *CacheManager) FinishReplay(ctx context.Context, processed int, kept []domain.PendingOperation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.readOperations(ctx, domain.PendingOperationsKey)
	next := append([]domain.PendingOperation{}, kept...)
	if len(current) > processed {
		next = append(next, current[processed:]...)
	}
	return c.writeOperations(ctx, domain.PendingOperationsKey, next)
}

// EvictOperationsBefore drops timestamped operations enqueued before cutoff.
// Operations without a timestamp are kept.
func (c *CacheManager) EvictOperationsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ops := c.readOperations(ctx, domain.PendingOperationsKey)
	kept := make([]domain.PendingOperation, 0, len(ops))
	for _, op := range ops {
		if op.HasTimestamp() && op.EnqueuedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, op)
	}
	evicted := len(ops) - len(kept)
	if evicted == 0 {
		return 0, nil
	}
	return evicted, c.writeOperations(ctx, domain.PendingOperationsKey, kept)
}

// RejectedOperations returns the dead-letter list.
func (c *CacheManager) RejectedOperations(ctx context.Context) []domain.PendingOperation {
	return c.readOperations(ctx, domain.RejectedOperationsKey)
}

// AppendRejected adds operations to the dead-letter list.
func (c *CacheManager) AppendRejected(ctx context.Context, ops ...domain.PendingOperation) error {
	if len(ops) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	rejected := c.readOperations(ctx, domain.RejectedOperationsKey)
	return c.writeOperations(ctx, domain.RejectedOperationsKey, append(rejected, ops...))
}

// ClearRejected empties the dead-letter list.
func (c *CacheManager) ClearRejected(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Delete(ctx, domain.RejectedOperationsKey)
}
