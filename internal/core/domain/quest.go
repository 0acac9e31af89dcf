package domain

import "time"

// QuestType is the subject area of a quest.
type QuestType string

// Quest types.
const (
	QuestTypeMath    QuestType = "math"
	QuestTypeReading QuestType = "reading"
)

// PlayMode selects the mini-game used to play a quest.
type PlayMode string

// Available play modes.
const (
	PlayModeMultipleChoice   PlayMode = "multiple-choice"
	PlayModeFractionVisual   PlayMode = "fraction-visual"
	PlayModeMarketArithmetic PlayMode = "market-arithmetic"
)

// IsValid returns true if the play mode is recognised.
func (m PlayMode) IsValid() bool {
	switch m {
	case PlayModeMultipleChoice, PlayModeFractionVisual, PlayModeMarketArithmetic:
		return true
	default:
		return false
	}
}

// QuestionType describes how a question is answered.
type QuestionType string

// Question types.
const (
	QuestionTypeText     QuestionType = "text"
	QuestionTypeNumeric  QuestionType = "numeric"
	QuestionTypeFraction QuestionType = "fraction"
	QuestionTypeCustom   QuestionType = "custom"
)

// IsValid returns true if the question type is recognised.
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeText, QuestionTypeNumeric, QuestionTypeFraction, QuestionTypeCustom:
		return true
	default:
		return false
	}
}

// Quest defaults applied when a field is missing.
const (
	DefaultDifficulty      = 1
	DefaultMaxScore        = 100
	DefaultTimeLimit       = 60
	DefaultCompletionScore = 80
)

// Quest is a scored learning activity made of ordered questions.
type Quest struct {
	ID              string     `json:"id"`
	Title           string     `json:"title" validate:"required"`
	Type            QuestType  `json:"type" validate:"omitempty,oneof=math reading"`
	Difficulty      int        `json:"difficulty" validate:"omitempty,min=1,max=3"`
	Description     string     `json:"description,omitempty"`
	MaxScore        int        `json:"maxScore" validate:"gte=0"`
	TimeLimit       int        `json:"timeLimit" validate:"gte=0"`
	CompletionScore int        `json:"completionScore" validate:"gte=0"`
	Levels          []Level    `json:"levels" validate:"dive"`
	PlayMode        PlayMode   `json:"playMode,omitempty"`
	Questions       []Question `json:"questions" validate:"dive"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Level is a score threshold inside a quest.
type Level struct {
	Level          int `json:"level"`
	ScoreToLevelUp int `json:"scoreToLevelUp" validate:"gte=0"`
}

// Question is one prompt of a quest.
type Question struct {
	ID      string         `json:"id"`
	QuestID string         `json:"questId"`
	Prompt  string         `json:"prompt" validate:"required"`
	Order   int            `json:"order"`
	Type    QuestionType   `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
	Answers []Answer       `json:"answers" validate:"min=1,dive"`
}

// Answer is one answer option of a question.
type Answer struct {
	ID         string `json:"id"`
	QuestionID string `json:"questionId"`
	Label      string `json:"label" validate:"required"`
	Value      string `json:"value"`
	IsCorrect  bool   `json:"isCorrect"`
}

// QuestPatch is a partial quest update. Nil fields are left untouched;
// Levels and Questions replace the whole list when present.
type QuestPatch struct {
	Title           *string     `json:"title,omitempty" validate:"omitempty,min=1"`
	Type            *QuestType  `json:"type,omitempty" validate:"omitempty,oneof=math reading"`
	Difficulty      *int        `json:"difficulty,omitempty" validate:"omitempty,min=1,max=3"`
	Description     *string     `json:"description,omitempty"`
	MaxScore        *int        `json:"maxScore,omitempty" validate:"omitempty,gte=0"`
	TimeLimit       *int        `json:"timeLimit,omitempty" validate:"omitempty,gte=0"`
	CompletionScore *int        `json:"completionScore,omitempty" validate:"omitempty,gte=0"`
	Levels          *[]Level    `json:"levels,omitempty"`
	PlayMode        *PlayMode   `json:"playMode,omitempty"`
	Questions       *[]Question `json:"questions,omitempty"`
}

// Apply returns a copy of q with the patch fields overridden.
// Nested lists not present in the patch are kept as they are.
func (p QuestPatch) Apply(q Quest) Quest {
	if p.Title != nil {
		q.Title = *p.Title
	}
	if p.Type != nil {
		q.Type = *p.Type
	}
	if p.Difficulty != nil {
		q.Difficulty = *p.Difficulty
	}
	if p.Description != nil {
		q.Description = *p.Description
	}
	if p.MaxScore != nil {
		q.MaxScore = *p.MaxScore
	}
	if p.TimeLimit != nil {
		q.TimeLimit = *p.TimeLimit
	}
	if p.CompletionScore != nil {
		q.CompletionScore = *p.CompletionScore
	}
	if p.Levels != nil {
		q.Levels = append([]Level(nil), (*p.Levels)...)
	}
	if p.PlayMode != nil {
		q.PlayMode = *p.PlayMode
	}
	if p.Questions != nil {
		q.Questions = append([]Question(nil), (*p.Questions)...)
	}
	return q
}
