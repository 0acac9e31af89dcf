package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnquest/questsync/internal/core/domain"
	"github.com/learnquest/questsync/internal/logger"
)

// errUnconfirmed stands in for the remote error when an entity only
// exists locally and the backend cannot know its id yet.
var errUnconfirmed = errors.New("entity not yet confirmed by the backend")

// questRequest is the wire body of a quest write. Temporary ids are
// omitted so the backend assigns its own.
type questRequest struct {
	domain.Quest
	ID string `json:"id,omitempty"`
}

func newQuestRequest(q domain.Quest) questRequest {
	if domain.IsTemporaryID(q.ID) {
		questions := make([]domain.Question, len(q.Questions))
		for i, question := range q.Questions {
			question.QuestID = ""
			questions[i] = question
		}
		q.Questions = questions
		return questRequest{Quest: q}
	}
	return questRequest{Quest: q, ID: q.ID}
}

// withQuestDefaults fills scoring fields a caller left at zero.
func withQuestDefaults(q domain.Quest) domain.Quest {
	if q.Difficulty == 0 {
		q.Difficulty = domain.DefaultDifficulty
	}
	if q.MaxScore == 0 {
		q.MaxScore = domain.DefaultMaxScore
	}
	if q.TimeLimit == 0 {
		q.TimeLimit = domain.DefaultTimeLimit
	}
	if q.CompletionScore == 0 {
		q.CompletionScore = domain.DefaultCompletionScore
	}
	return q
}

func studentRequest(s domain.Student) domain.StudentDraft {
	return domain.StudentDraft{
		Name:        s.Name,
		Avatar:      s.Avatar,
		Level:       s.Level,
		XP:          s.XP,
		ParentPhone: s.ParentPhone,
	}
}

// queued applies the bookkeeping shared by every deferred write.
func (e *SyncEngine) queued(ctx context.Context, op domain.Operation, what string) error {
	if err := e.enqueue(ctx, op); err != nil {
		return fmt.Errorf("queuing %s: %w", what, err)
	}
	e.notifier.Notify(domain.Notification{
		Kind:    domain.NotifyQueued,
		Message: fmt.Sprintf("You are offline. The %s will be saved when you are back online.", what),
	})
	return nil
}

// --- Progress ---

// SubmitProgress records a quest attempt. The backend write is retried;
// when every attempt fails the attempt is queued and the student's XP is
// still increased locally.
func (e *SyncEngine) SubmitProgress(ctx context.Context, progress domain.Progress) (domain.WriteOutcome, error) {
	if err := e.validator.Struct(progress); err != nil {
		return domain.OutcomeFailed, err
	}
	progress = e.norm.Progress(progress)

	err := e.submitProgress(ctx, progress)
	if err != nil && domain.IsRejection(err) {
		return domain.OutcomeFailed, fmt.Errorf("submitting progress: %w", err)
	}

	if xpErr := e.cache.AddXP(ctx, progress.StudentID, progress.Score); xpErr != nil {
		logger.Warn("progress: updating cached XP: %v", xpErr)
	}
	if err == nil {
		return domain.OutcomeSynced, nil
	}

	logger.Warn("progress: backend unreachable after %d attempts: %v", e.retry.MaxAttempts, err)
	if err := e.queued(ctx, domain.ProgressUpdateOp{Progress: progress}, "progress"); err != nil {
		return domain.OutcomeFailed, err
	}
	return domain.OutcomeQueued, nil
}

func (e *SyncEngine) submitProgress(ctx context.Context, progress domain.Progress) error {
	return retry(ctx, e.retry, e.sleep, "submit progress", func(ctx context.Context) error {
		return e.remote.SubmitProgress(ctx, progress)
	})
}

// --- Students ---

// CreateStudent creates a student. Offline, the student is cached under a
// temporary id and the creation is queued.
func (e *SyncEngine) CreateStudent(ctx context.Context, draft domain.StudentDraft) (*domain.Student, error) {
	if err := e.validator.Struct(draft); err != nil {
		return nil, err
	}

	raw, err := e.remote.CreateStudent(ctx, draft)
	if err == nil {
		s := e.norm.Student(raw)
		if err := e.cache.UpsertStudent(ctx, s); err != nil {
			logger.Warn("create student: caching: %v", err)
		}
		return &s, nil
	}
	if domain.IsRejection(err) {
		return nil, fmt.Errorf("creating student: %w", err)
	}
	logger.Warn("create student: %v", err)

	s := e.norm.DraftStudent(draft)
	if err := e.cache.UpsertStudent(ctx, s); err != nil {
		return nil, fmt.Errorf("caching student: %w", err)
	}
	if err := e.queued(ctx, domain.CreateStudentOp{Student: s}, "new student"); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateStudent applies a partial update. Offline, the patch is merged
// into the cached student and queued. Updating a student that is neither
// reachable nor cached fails.
func (e *SyncEngine) UpdateStudent(ctx context.Context, id string, patch domain.StudentPatch) (*domain.Student, error) {
	if err := e.validator.Struct(patch); err != nil {
		return nil, err
	}

	err := errUnconfirmed
	if !domain.IsTemporaryID(id) {
		var raw []byte
		raw, err = e.remote.UpdateStudent(ctx, id, patch)
		if err == nil {
			s := e.norm.Student(raw)
			if err := e.cache.UpsertStudent(ctx, s); err != nil {
				logger.Warn("update student: caching: %v", err)
			}
			return &s, nil
		}
		if domain.IsRejection(err) {
			return nil, fmt.Errorf("updating student %s: %w", id, err)
		}
	}
	logger.Warn("update student %s: %v", id, err)

	cached, ok := e.cache.Student(ctx, id)
	if !ok {
		return nil, fmt.Errorf("updating student %s: %w", id, err)
	}
	merged := patch.Apply(*cached)
	merged.UpdatedAt = e.now().UTC()
	if err := e.cache.UpsertStudent(ctx, merged); err != nil {
		return nil, fmt.Errorf("caching student: %w", err)
	}
	if err := e.queued(ctx, domain.UpdateStudentOp{StudentID: id, Patch: patch}, "student update"); err != nil {
		return nil, err
	}
	return &merged, nil
}

// DeleteStudent deletes a student. Offline, the student is removed from
// the cache and the deletion is queued.
func (e *SyncEngine) DeleteStudent(ctx context.Context, id string) error {
	err := errUnconfirmed
	if !domain.IsTemporaryID(id) {
		err = e.remote.DeleteStudent(ctx, id)
		if err == nil || domain.IsNotFound(err) {
			return e.cache.RemoveStudent(ctx, id)
		}
		if domain.IsRejection(err) {
			return fmt.Errorf("deleting student %s: %w", id, err)
		}
	}
	logger.Warn("delete student %s: %v", id, err)

	if err := e.cache.RemoveStudent(ctx, id); err != nil {
		return fmt.Errorf("removing cached student: %w", err)
	}
	return e.queued(ctx, domain.DeleteStudentOp{StudentID: id}, "student deletion")
}

// --- Quests ---

// CreateQuest creates a quest. Offline, the quest is cached under a
// temporary id and the creation is queued.
func (e *SyncEngine) CreateQuest(ctx context.Context, draft domain.Quest) (*domain.Quest, error) {
	if err := e.validator.Struct(draft); err != nil {
		return nil, err
	}
	draft.ID = ""
	local := e.norm.Quest(withQuestDefaults(draft))

	raw, err := e.remote.CreateQuest(ctx, newQuestRequest(local))
	if err == nil {
		q := e.norm.Quest(raw)
		if err := e.cache.UpsertQuest(ctx, q); err != nil {
			logger.Warn("create quest: caching: %v", err)
		}
		return &q, nil
	}
	if domain.IsRejection(err) {
		return nil, fmt.Errorf("creating quest: %w", err)
	}
	logger.Warn("create quest: %v", err)

	if err := e.cache.UpsertQuest(ctx, local); err != nil {
		return nil, fmt.Errorf("caching quest: %w", err)
	}
	if err := e.queued(ctx, domain.CreateQuestOp{Quest: local}, "new quest"); err != nil {
		return nil, err
	}
	return &local, nil
}

// UpdateQuest applies a partial update. Offline, the patch is merged into
// the cached quest, replacing levels and questions only when the patch
// carries them, and the merged quest is queued.
func (e *SyncEngine) UpdateQuest(ctx context.Context, id string, patch domain.QuestPatch) (*domain.Quest, error) {
	if err := e.validator.Struct(patch); err != nil {
		return nil, err
	}

	err := errUnconfirmed
	if !domain.IsTemporaryID(id) {
		var raw []byte
		raw, err = e.remote.UpdateQuest(ctx, id, patch)
		if err == nil {
			q := e.norm.Quest(raw)
			if err := e.cache.UpsertQuest(ctx, q); err != nil {
				logger.Warn("update quest: caching: %v", err)
			}
			return &q, nil
		}
		if domain.IsRejection(err) {
			return nil, fmt.Errorf("updating quest %s: %w", id, err)
		}
	}
	logger.Warn("update quest %s: %v", id, err)

	cached, ok := e.cache.Quest(ctx, id)
	if !ok {
		return nil, fmt.Errorf("updating quest %s: %w", id, err)
	}
	merged := e.norm.Quest(patch.Apply(*cached))
	if err := e.cache.UpsertQuest(ctx, merged); err != nil {
		return nil, fmt.Errorf("caching quest: %w", err)
	}
	if err := e.queued(ctx, domain.UpdateQuestOp{QuestID: id, Quest: merged}, "quest update"); err != nil {
		return nil, err
	}
	return &merged, nil
}

// DeleteQuest deletes a quest. Offline, the quest is removed from the
// cache and the deletion is queued.
func (e *SyncEngine) DeleteQuest(ctx context.Context, id string) error {
	err := errUnconfirmed
	if !domain.IsTemporaryID(id) {
		err = e.remote.DeleteQuest(ctx, id)
		if err == nil || domain.IsNotFound(err) {
			return e.cache.RemoveQuest(ctx, id)
		}
		if domain.IsRejection(err) {
			return fmt.Errorf("deleting quest %s: %w", id, err)
		}
	}
	logger.Warn("delete quest %s: %v", id, err)

	if err := e.cache.RemoveQuest(ctx, id); err != nil {
		return fmt.Errorf("removing cached quest: %w", err)
	}
	return e.queued(ctx, domain.DeleteQuestOp{QuestID: id}, "quest deletion")
}

// --- SMS ---

// SendSMS asks the backend to text a parent, queuing the request offline.
func (e *SyncEngine) SendSMS(ctx context.Context, req domain.SMSRequest) (domain.WriteOutcome, error) {
	if err := e.validator.Struct(req); err != nil {
		return domain.OutcomeFailed, err
	}
	if req.Type == "" {
		req.Type = domain.SMSTypeProgress
	}

	err := e.remote.SendSMS(ctx, req)
	if err == nil {
		return domain.OutcomeSynced, nil
	}
	if domain.IsRejection(err) {
		return domain.OutcomeFailed, fmt.Errorf("sending sms: %w", err)
	}
	logger.Warn("send sms: %v", err)

	if err := e.queued(ctx, domain.SendSMSOp{Request: req}, "message"); err != nil {
		return domain.OutcomeFailed, err
	}
	return domain.OutcomeQueued, nil
}
