package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnquest/questsync/internal/core/domain"
)

func TestCacheManager_Staleness(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	assert.True(t, h.cache.IsStale(ctx, domain.CacheQuests), "never written")

	require.NoError(t, h.cache.SetQuests(ctx, []domain.Quest{}))
	refreshed, ok := h.cache.RefreshedAt(ctx, domain.CacheQuests)
	require.True(t, ok)
	assert.Equal(t, h.clock.Now(), refreshed)

	h.clock.Advance(time.Hour)
	assert.False(t, h.cache.IsStale(ctx, domain.CacheQuests), "exactly the TTL is still fresh")

	h.clock.Advance(time.Millisecond)
	assert.True(t, h.cache.IsStale(ctx, domain.CacheQuests))

	assert.True(t, h.cache.IsStale(ctx, domain.CacheStudents), "kinds are stamped separately")
}

func TestCacheManager_TimestampIsEpochMillis(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	require.NoError(t, h.cache.SetStudents(ctx, []domain.Student{{ID: "s1"}}))

	raw, ok, err := h.store.Get(ctx, domain.CacheStudents.TimestampKey())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1741942800000", string(raw))
}

func TestCacheManager_BadTimestampIsStale(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	require.NoError(t, h.store.Set(ctx, domain.CacheQuests.TimestampKey(), []byte("yesterday")))

	_, ok := h.cache.RefreshedAt(ctx, domain.CacheQuests)
	assert.False(t, ok)
	assert.True(t, h.cache.IsStale(ctx, domain.CacheQuests))
}

func TestCacheManager_CorruptEntriesReadEmpty(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	for _, key := range []string{
		string(domain.CacheStudents),
		string(domain.CacheQuests),
		string(domain.CacheProgress),
		domain.PendingOperationsKey,
	} {
		require.NoError(t, h.store.Set(ctx, key, []byte("{not json")))
	}

	assert.NotNil(t, h.cache.Students(ctx))
	assert.Empty(t, h.cache.Students(ctx))
	assert.Empty(t, h.cache.Quests(ctx))
	assert.Empty(t, h.cache.Progress(ctx))
	assert.Empty(t, h.cache.PendingOperations(ctx))

	_, ok := h.cache.ActiveStudent(ctx)
	assert.False(t, ok)
}

func TestCacheManager_ReplaceStudentUpdatesActiveSlot(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	temp := domain.Student{ID: "temp-student-1", Name: "Juma", Level: 1}
	require.NoError(t, h.cache.UpsertStudent(ctx, temp))
	require.NoError(t, h.cache.SetActiveStudent(ctx, temp))

	confirmed := domain.Student{ID: "s-42", Name: "Juma", Level: 1}
	require.NoError(t, h.cache.ReplaceStudent(ctx, temp.ID, confirmed))

	active, ok := h.cache.ActiveStudent(ctx)
	require.True(t, ok)
	assert.Equal(t, "s-42", active.ID)

	students := h.cache.Students(ctx)
	require.Len(t, students, 1)
	assert.Equal(t, "s-42", students[0].ID)
}

func TestCacheManager_RemoveStudentClearsActiveSlot(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	s := domain.Student{ID: "s1", Name: "Amani", Level: 1}
	require.NoError(t, h.cache.UpsertStudent(ctx, s))
	require.NoError(t, h.cache.SetActiveStudent(ctx, s))

	require.NoError(t, h.cache.RemoveStudent(ctx, "s1"))

	_, ok := h.cache.ActiveStudent(ctx)
	assert.False(t, ok)
	assert.Empty(t, h.cache.Students(ctx))
}

func TestCacheManager_RemoveTemporaryStudentsClearsActiveSlot(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	temp := domain.Student{ID: "temp-student-1", Name: "Offline", Level: 1}
	require.NoError(t, h.cache.SetStudents(ctx, []domain.Student{{ID: "s1", Name: "Amani", Level: 1}, temp}))
	require.NoError(t, h.cache.SetActiveStudent(ctx, temp))

	removed, err := h.cache.RemoveTemporaryStudents(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	_, ok := h.cache.ActiveStudent(ctx)
	assert.False(t, ok)
	require.Len(t, h.cache.Students(ctx), 1)
	assert.Equal(t, "s1", h.cache.Students(ctx)[0].ID)
}

func TestCacheManager_RemoveTemporaryStudentsKeepsConfirmedActive(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	s := domain.Student{ID: "s1", Name: "Amani", Level: 1}
	require.NoError(t, h.cache.SetActiveStudent(ctx, s))

	removed, err := h.cache.RemoveTemporaryStudents(ctx)

	require.NoError(t, err)
	assert.Zero(t, removed)
	active, ok := h.cache.ActiveStudent(ctx)
	require.True(t, ok)
	assert.Equal(t, "s1", active.ID)
}

func TestCacheManager_AddXP(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	s := domain.Student{ID: "s1", Name: "Amani", Level: 1, XP: 10}
	require.NoError(t, h.cache.SetStudents(ctx, []domain.Student{s, {ID: "s2", XP: 3}}))
	require.NoError(t, h.cache.SetActiveStudent(ctx, s))

	require.NoError(t, h.cache.AddXP(ctx, "s1", 15))

	active, _ := h.cache.ActiveStudent(ctx)
	assert.Equal(t, 25, active.XP)
	listed, _ := h.cache.Student(ctx, "s1")
	assert.Equal(t, 25, listed.XP)
	other, _ := h.cache.Student(ctx, "s2")
	assert.Equal(t, 3, other.XP)
}

func TestCacheManager_FinishReplayKeepsTail(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, h.cache.AppendOperation(ctx, domain.PendingOperation{Op: domain.DeleteQuestOp{QuestID: id}}))
	}
	processed := h.cache.PendingOperations(ctx)[:2]
	require.NoError(t, h.cache.AppendOperation(ctx, domain.PendingOperation{Op: domain.DeleteQuestOp{QuestID: "d"}}))

	// "c" and "d" arrived after the pass read two entries.
	require.NoError(t, h.cache.FinishReplay(ctx, len(processed), processed[1:]))

	var ids []string
	for _, op := range h.cache.PendingOperations(ctx) {
		ids = append(ids, op.Op.TargetID())
	}
	assert.Equal(t, []string{"b", "c", "d"}, ids)
}

func TestCacheManager_RecommendationsAreNotStamped(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	resp, ok := h.cache.Recommendations(ctx, "s1")
	assert.False(t, ok)
	assert.Equal(t, domain.NeutralRecommendations(), resp)

	cached := domain.NeutralRecommendations()
	cached.RecommendedQuests = append(cached.RecommendedQuests, domain.Recommendation{QuestID: "q1", Confidence: 0.8, SuggestedOrder: 1})
	require.NoError(t, h.cache.SetRecommendations(ctx, "s1", cached))
	got, ok := h.cache.Recommendations(ctx, "s1")
	assert.True(t, ok)
	require.Len(t, got.RecommendedQuests, 1)
	assert.Equal(t, "q1", got.RecommendedQuests[0].QuestID)

	keys, err := h.store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RecommendationsKeyPrefix + "s1"}, keys)
}
