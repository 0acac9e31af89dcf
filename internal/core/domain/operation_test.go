package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeQueue(t *testing.T, raw string) []PendingOperation {
	t.Helper()
	var ops []PendingOperation
	require.NoError(t, json.Unmarshal([]byte(raw), &ops))
	return ops
}

func TestPendingOperation_Envelope(t *testing.T) {
	enqueued := time.UnixMilli(1700000000000).UTC()
	pending := PendingOperation{
		Op:         DeleteQuestOp{QuestID: "q-1"},
		EnqueuedAt: enqueued,
	}

	raw, err := json.Marshal(pending)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"delete-quest","id":"q-1","timestamp":1700000000000}`, string(raw))

	var decoded PendingOperation
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, pending, decoded)
}

func TestPendingOperation_LegacyProgress(t *testing.T) {
	ops := decodeQueue(t, `[{"id":"p1","studentId":"s1","questId":"q1","completed":true,"score":40,"attempts":1}]`)

	require.Len(t, ops, 1)
	op, ok := ops[0].Op.(ProgressUpdateOp)
	require.True(t, ok)
	assert.Equal(t, "s1", op.Progress.StudentID)
	assert.Equal(t, 40, op.Progress.Score)
	assert.False(t, ops[0].HasTimestamp())
}

func TestPendingOperation_UnknownKindIsPreserved(t *testing.T) {
	raw := `{"type":"archive-quest","id":"q9","data":{"reason":"old"},"extra":[1,2]}`
	ops := decodeQueue(t, "["+raw+"]")

	require.Len(t, ops, 1)
	unknown, ok := ops[0].Op.(UnknownOp)
	require.True(t, ok)
	assert.Equal(t, OperationKind("archive-quest"), unknown.Kind())

	out, err := json.Marshal(ops[0])
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestPendingOperation_UndecodableDataIsUnknown(t *testing.T) {
	ops := decodeQueue(t, `[{"type":"create-student","data":"not-an-object"},{"type":7}]`)

	require.Len(t, ops, 2)
	_, ok := ops[0].Op.(UnknownOp)
	assert.True(t, ok)
	_, ok = ops[1].Op.(UnknownOp)
	assert.True(t, ok)
}

func TestPendingOperation_NotAnObject(t *testing.T) {
	var op PendingOperation
	assert.Error(t, json.Unmarshal([]byte(`42`), &op))
}

func TestPendingOperation_KnownKinds(t *testing.T) {
	name := "Renamed"
	ops := []PendingOperation{
		{Op: CreateQuestOp{Quest: Quest{ID: "temp-quest-1", Title: "Sums"}}},
		{Op: UpdateQuestOp{QuestID: "q1", Quest: Quest{ID: "q1", Title: "Sums II"}}},
		{Op: ProgressUpdateOp{Progress: Progress{ID: "p", StudentID: "s", QuestID: "q", Score: 5}}},
		{Op: CreateStudentOp{Student: Student{ID: "temp-student-1", Name: "Imani", Level: 1}}},
		{Op: UpdateStudentOp{StudentID: "s1", Patch: StudentPatch{Name: &name}}},
		{Op: DeleteStudentOp{StudentID: "s2"}},
		{Op: SendSMSOp{Request: SMSRequest{StudentID: "s1", PhoneNumber: "+254700000001", Message: "hi"}}},
	}

	raw, err := json.Marshal(ops)
	require.NoError(t, err)

	var decoded []PendingOperation
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, len(ops))
	for i := range ops {
		assert.Equal(t, ops[i].Op.Kind(), decoded[i].Op.Kind())
		assert.Equal(t, ops[i].Op.TargetID(), decoded[i].Op.TargetID())
	}
	assert.Equal(t, "Renamed", *decoded[4].Op.(UpdateStudentOp).Patch.Name)
}

func TestQuestPatch_Apply(t *testing.T) {
	original := Quest{
		ID:        "q1",
		Title:     "Old",
		Levels:    []Level{{Level: 1, ScoreToLevelUp: 10}},
		Questions: []Question{{ID: "a", Prompt: "keep"}},
	}
	title := "New"
	levels := []Level{{Level: 1, ScoreToLevelUp: 50}, {Level: 2, ScoreToLevelUp: 90}}

	merged := QuestPatch{Title: &title, Levels: &levels}.Apply(original)

	assert.Equal(t, "New", merged.Title)
	assert.Equal(t, levels, merged.Levels)
	assert.Equal(t, original.Questions, merged.Questions)
	assert.Equal(t, "Old", original.Title)
}

func TestStudentPatch_Apply(t *testing.T) {
	xp := 120
	s := StudentPatch{XP: &xp}.Apply(Student{ID: "s1", Name: "Baraka", XP: 10, Level: 2})

	assert.Equal(t, Student{ID: "s1", Name: "Baraka", XP: 120, Level: 2}, s)
}

func TestIsTemporaryID(t *testing.T) {
	assert.True(t, IsTemporaryID("temp-student-123"))
	assert.False(t, IsTemporaryID("42"))
	assert.False(t, IsTemporaryID(""))
}

func TestCacheKind_TimestampKey(t *testing.T) {
	assert.Equal(t, "learnquest-cache-timestamp-learnquest-quests", CacheQuests.TimestampKey())
	assert.Len(t, CacheKinds(), 5)
}

func TestWriteOutcome_String(t *testing.T) {
	assert.Equal(t, "synced", OutcomeSynced.String())
	assert.Equal(t, "queued", OutcomeQueued.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "unknown", WriteOutcome(42).String())
}
