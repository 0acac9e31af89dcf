package entity

import (
	"strings"

	"github.com/learnquest/questsync/internal/core/domain"
)

// Quest normalises a single quest.
func (n *Normaliser) Quest(raw any) domain.Quest {
	return n.quest(asObject(decode(raw)))
}

// Quests normalises a list of quests. Anything that is not a list yields
// an empty slice.
func (n *Normaliser) Quests(raw any) []domain.Quest {
	items := asList(decode(raw))
	quests := make([]domain.Quest, 0, len(items))
	for _, item := range items {
		quests = append(quests, n.quest(asObject(item)))
	}
	return quests
}

func (n *Normaliser) quest(m map[string]any) domain.Quest {
	id, ok := asID(m["id"])
	if !ok {
		id = n.TemporaryID("quest")
	}

	q := domain.Quest{
		ID:              id,
		Title:           asString(m["title"], ""),
		Type:            questType(m["type"]),
		Difficulty:      difficulty(m["difficulty"]),
		Description:     asString(m["description"], ""),
		MaxScore:        asInt(m["maxScore"], domain.DefaultMaxScore),
		TimeLimit:       asInt(m["timeLimit"], domain.DefaultTimeLimit),
		CompletionScore: asInt(m["completionScore"], domain.DefaultCompletionScore),
		PlayMode:        playMode(m["playMode"]),
		CreatedAt:       n.timeOr(m["createdAt"]),
	}

	levels := asList(m["levels"])
	q.Levels = make([]domain.Level, 0, len(levels))
	for i, item := range levels {
		lvl := asObject(item)
		q.Levels = append(q.Levels, domain.Level{
			Level:          asInt(lvl["level"], i+1),
			ScoreToLevelUp: asInt(lvl["scoreToLevelUp"], 0),
		})
	}

	questions := asList(m["questions"])
	q.Questions = make([]domain.Question, 0, len(questions))
	for i, item := range questions {
		q.Questions = append(q.Questions, n.question(asObject(item), id, i))
	}
	return q
}

// Question normalises a question belonging to questID at position index.
func (n *Normaliser) Question(raw any, questID string, index int) domain.Question {
	return n.question(asObject(decode(raw)), questID, index)
}

func (n *Normaliser) question(m map[string]any, questID string, index int) domain.Question {
	id, ok := asID(m["id"])
	if !ok {
		id = n.LocalID("question")
	}

	q := domain.Question{
		ID:      id,
		QuestID: asString(m["questId"], questID),
		Prompt:  asString(m["prompt"], ""),
		Order:   asInt(m["order"], index),
		Type:    questionType(m["type"]),
	}
	if q.QuestID == "" {
		q.QuestID = questID
	}
	if payload := asObject(m["payload"]); len(payload) > 0 {
		q.Payload = payload
	}

	answers := asList(m["answers"])
	q.Answers = make([]domain.Answer, 0, len(answers))
	for _, item := range answers {
		q.Answers = append(q.Answers, n.answer(asObject(item), id))
	}
	return q
}

func (n *Normaliser) answer(m map[string]any, questionID string) domain.Answer {
	id, ok := asID(m["id"])
	if !ok {
		id = n.LocalID("ans")
	}
	a := domain.Answer{
		ID:         id,
		QuestionID: asString(m["questionId"], questionID),
		Label:      asString(m["label"], ""),
		Value:      asString(m["value"], ""),
		IsCorrect:  asBool(m["isCorrect"]),
	}
	if a.QuestionID == "" {
		a.QuestionID = questionID
	}
	return a
}

func questType(v any) domain.QuestType {
	if asString(v, "") == string(domain.QuestTypeReading) {
		return domain.QuestTypeReading
	}
	return domain.QuestTypeMath
}

func difficulty(v any) int {
	d, ok := asNumber(v)
	switch {
	case ok && d == 1, ok && d == 2, ok && d == 3:
		return int(d)
	default:
		return domain.DefaultDifficulty
	}
}

func playMode(v any) domain.PlayMode {
	mode := domain.PlayMode(asString(v, ""))
	if mode.IsValid() {
		return mode
	}
	return ""
}

func questionType(v any) domain.QuestionType {
	s, ok := v.(string)
	if !ok {
		return domain.QuestionTypeText
	}
	t := domain.QuestionType(strings.ToLower(strings.TrimSpace(s)))
	if t.IsValid() {
		return t
	}
	return domain.QuestionTypeText
}
