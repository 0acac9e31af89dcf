package services

import (
	"context"
	"fmt"
	"time"

	"github.com/learnquest/questsync/internal/core/domain"
	"github.com/learnquest/questsync/internal/logger"
)

func (e *SyncEngine) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return false
	}
	e.running = true
	return true
}

func (e *SyncEngine) end() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// Cleanup removes unconfirmed students from the cache and evicts queued
// operations older than the retention window.
func (e *SyncEngine) Cleanup(ctx context.Context) (domain.CleanupReport, error) {
	if !e.begin() {
		return domain.CleanupReport{}, domain.ErrSyncInProgress
	}
	defer e.end()
	return e.cleanup(ctx)
}

// Replay sends queued operations to the backend in enqueue order.
func (e *SyncEngine) Replay(ctx context.Context) (domain.ReplayReport, error) {
	if !e.begin() {
		return domain.ReplayReport{}, domain.ErrSyncInProgress
	}
	defer e.end()
	return e.replay(ctx)
}

// Reconcile runs cleanup then replay as one pass.
func (e *SyncEngine) Reconcile(ctx context.Context) (domain.CleanupReport, domain.ReplayReport, error) {
	if !e.begin() {
		return domain.CleanupReport{}, domain.ReplayReport{}, domain.ErrSyncInProgress
	}
	defer e.end()

	logger.Section("Reconcile")
	cleanup, err := e.cleanup(ctx)
	if err != nil {
		logger.Warn("cleanup failed, replaying anyway: %v", err)
	}
	report, replayErr := e.replay(ctx)
	if replayErr != nil {
		return cleanup, report, replayErr
	}
	return cleanup, report, err
}

func (e *SyncEngine) cleanup(ctx context.Context) (domain.CleanupReport, error) {
	var report domain.CleanupReport

	removed, err := e.cache.RemoveTemporaryStudents(ctx)
	if err != nil {
		return report, fmt.Errorf("removing temporary students: %w", err)
	}
	report.TemporaryStudents = removed

	cutoff := e.now().Add(-e.retention)
	evicted, err := e.cache.EvictOperationsBefore(ctx, cutoff)
	if err != nil {
		return report, fmt.Errorf("evicting expired operations: %w", err)
	}
	report.ExpiredOperations = evicted

	if removed > 0 || evicted > 0 {
		logger.Info("cleanup: removed %d temporary students, %d expired operations", removed, evicted)
	}
	return report, nil
}

func (e *SyncEngine) replay(ctx context.Context) (domain.ReplayReport, error) {
	var report domain.ReplayReport

	ops := e.cache.PendingOperations(ctx)
	if len(ops) == 0 {
		return report, nil
	}
	defer logger.Elapsed("replay", time.Now())
	logger.Debug("replaying %d queued operations", len(ops))

	// Server ids assigned to temporary ids during this pass.
	assigned := make(map[string]string)

	var kept, rejected []domain.PendingOperation
	for _, pending := range ops {
		pending.Op = remapOperation(pending.Op, assigned)

		if unknown, ok := pending.Op.(domain.UnknownOp); ok {
			logger.Warn("replay: unsupported operation %q kept in queue", unknown.RawKind)
			report.Unrecognized++
			kept = append(kept, pending)
			continue
		}

		var err error
		if awaitsCreation(pending.Op) {
			err = errUnconfirmed
		} else {
			err = e.replayOne(ctx, pending.Op, assigned)
		}
		switch {
		case err == nil:
			report.Succeeded++
		case domain.IsRejection(err):
			logger.Warn("replay: %s %s rejected: %v", pending.Op.Kind(), pending.Op.TargetID(), err)
			report.Rejected++
			rejected = append(rejected, pending)
		default:
			logger.Warn("replay: %s %s failed: %v", pending.Op.Kind(), pending.Op.TargetID(), err)
			report.Failed++
			kept = append(kept, pending)
		}
	}

	if err := e.cache.FinishReplay(ctx, len(ops), kept); err != nil {
		return report, fmt.Errorf("saving replay queue: %w", err)
	}
	if err := e.cache.AppendRejected(ctx, rejected...); err != nil {
		return report, fmt.Errorf("saving rejected operations: %w", err)
	}

	e.notifyReplay(report)
	return report, nil
}

func (e *SyncEngine) replayOne(ctx context.Context, op domain.Operation, assigned map[string]string) error {
	switch op := op.(type) {
	case domain.CreateQuestOp:
		raw, err := e.remote.CreateQuest(ctx, newQuestRequest(op.Quest))
		if err != nil {
			return err
		}
		q := e.norm.Quest(raw)
		if domain.IsTemporaryID(op.Quest.ID) && q.ID != op.Quest.ID {
			assigned[op.Quest.ID] = q.ID
		}
		return e.cache.ReplaceQuest(ctx, op.Quest.ID, q)

	case domain.UpdateQuestOp:
		raw, err := e.remote.UpdateQuest(ctx, op.QuestID, newQuestRequest(op.Quest))
		if err != nil {
			return err
		}
		return e.cache.UpsertQuest(ctx, e.norm.Quest(raw))

	case domain.DeleteQuestOp:
		if err := e.remote.DeleteQuest(ctx, op.QuestID); err != nil && !domain.IsNotFound(err) {
			return err
		}
		return nil

	case domain.ProgressUpdateOp:
		return e.submitProgress(ctx, op.Progress)

	case domain.CreateStudentOp:
		raw, err := e.remote.CreateStudent(ctx, studentRequest(op.Student))
		if err != nil {
			return err
		}
		s := e.norm.Student(raw)
		if domain.IsTemporaryID(op.Student.ID) && s.ID != op.Student.ID {
			assigned[op.Student.ID] = s.ID
		}
		return e.cache.ReplaceStudent(ctx, op.Student.ID, s)

	case domain.UpdateStudentOp:
		raw, err := e.remote.UpdateStudent(ctx, op.StudentID, op.Patch)
		if err != nil {
			return err
		}
		return e.cache.UpsertStudent(ctx, e.norm.Student(raw))

	case domain.DeleteStudentOp:
		if err := e.remote.DeleteStudent(ctx, op.StudentID); err != nil && !domain.IsNotFound(err) {
			return err
		}
		return nil

	case domain.SendSMSOp:
		return e.remote.SendSMS(ctx, op.Request)

	default:
		return fmt.Errorf("replay: unhandled operation %T", op)
	}
}

// remapOperation rewrites references to temporary ids that the backend
// replaced earlier in the pass.
func remapOperation(op domain.Operation, assigned map[string]string) domain.Operation {
	if len(assigned) == 0 {
		return op
	}
	id := func(v string) string {
		if server, ok := assigned[v]; ok {
			return server
		}
		return v
	}

	switch op := op.(type) {
	case domain.UpdateQuestOp:
		op.QuestID = id(op.QuestID)
		op.Quest.ID = id(op.Quest.ID)
		return op
	case domain.DeleteQuestOp:
		op.QuestID = id(op.QuestID)
		return op
	case domain.ProgressUpdateOp:
		op.Progress.StudentID = id(op.Progress.StudentID)
		op.Progress.QuestID = id(op.Progress.QuestID)
		return op
	case domain.UpdateStudentOp:
		op.StudentID = id(op.StudentID)
		return op
	case domain.DeleteStudentOp:
		op.StudentID = id(op.StudentID)
		return op
	case domain.SendSMSOp:
		op.Request.StudentID = id(op.Request.StudentID)
		return op
	default:
		return op
	}
}

// awaitsCreation reports whether op still references an entity whose
// creation has not been replayed.
func awaitsCreation(op domain.Operation) bool {
	switch op := op.(type) {
	case domain.CreateQuestOp, domain.CreateStudentOp:
		return false
	case domain.ProgressUpdateOp:
		return domain.IsTemporaryID(op.Progress.StudentID) || domain.IsTemporaryID(op.Progress.QuestID)
	case domain.SendSMSOp:
		return domain.IsTemporaryID(op.Request.StudentID)
	default:
		return domain.IsTemporaryID(op.TargetID())
	}
}

func (e *SyncEngine) notifyReplay(report domain.ReplayReport) {
	if report.Succeeded > 0 {
		pending := report.Failed
		if pending == 0 && report.Rejected == 0 {
			e.notifier.Notify(domain.Notification{
				Kind:    domain.NotifySynced,
				Message: "Offline changes have been synced!",
			})
		} else {
			e.notifier.Notify(domain.Notification{
				Kind:    domain.NotifyPartialSync,
				Message: fmt.Sprintf("Synced %d updates. %d failed and will retry.", report.Succeeded, pending),
			})
		}
	}
	if report.Rejected > 0 {
		e.notifier.Notify(domain.Notification{
			Kind:    domain.NotifyRejected,
			Message: fmt.Sprintf("%d offline changes were rejected by the server. See 'questsync queue rejected'.", report.Rejected),
		})
	}
}
