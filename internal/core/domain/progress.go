package domain

import "time"

// Progress is one attempt of a student at a quest.
// Records are append-only: every attempt creates a new record.
type Progress struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"studentId" validate:"required"`
	QuestID     string     `json:"questId" validate:"required"`
	Completed   bool       `json:"completed"`
	Score       int        `json:"score" validate:"gte=0"`
	Attempts    int        `json:"attempts" validate:"gte=0"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// WriteOutcome tells the caller what happened to an immediate write.
type WriteOutcome int

// Write outcomes.
const (
	// OutcomeSynced means the backend accepted the write.
	OutcomeSynced WriteOutcome = iota

	// OutcomeQueued means the write was applied locally and queued for replay.
	OutcomeQueued

	// OutcomeFailed means nothing was written or queued. It comes with an error.
	OutcomeFailed
)

// String returns the string representation.
func (o WriteOutcome) String() string {
	switch o {
	case OutcomeSynced:
		return "synced"
	case OutcomeQueued:
		return "queued"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
