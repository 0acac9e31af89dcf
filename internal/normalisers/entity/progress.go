package entity

import "github.com/learnquest/questsync/internal/core/domain"

// Progress normalises a single progress record.
func (n *Normaliser) Progress(raw any) domain.Progress {
	return n.progress(asObject(decode(raw)))
}

// ProgressList normalises a list of progress records.
func (n *Normaliser) ProgressList(raw any) []domain.Progress {
	items := asList(decode(raw))
	records := make([]domain.Progress, 0, len(items))
	for _, item := range items {
		records = append(records, n.progress(asObject(item)))
	}
	return records
}

func (n *Normaliser) progress(m map[string]any) domain.Progress {
	id, ok := asID(m["id"])
	if !ok {
		id = n.LocalID("progress")
	}
	p := domain.Progress{
		ID:        id,
		StudentID: asString(m["studentId"], ""),
		QuestID:   asString(m["questId"], ""),
		Completed: asBool(m["completed"]),
		Score:     max(asInt(m["score"], 0), 0),
		Attempts:  max(asInt(m["attempts"], 1), 0),
	}
	if t, ok := asTime(m["completedAt"]); ok {
		p.CompletedAt = &t
	}
	return p
}
