package entity

import "github.com/learnquest/questsync/internal/core/domain"

// Student normalises a single student.
func (n *Normaliser) Student(raw any) domain.Student {
	return n.student(asObject(decode(raw)))
}

// Students normalises a list of students.
func (n *Normaliser) Students(raw any) []domain.Student {
	items := asList(decode(raw))
	students := make([]domain.Student, 0, len(items))
	for _, item := range items {
		students = append(students, n.student(asObject(item)))
	}
	return students
}

func (n *Normaliser) student(m map[string]any) domain.Student {
	id, ok := asID(m["id"])
	if !ok {
		id = n.TemporaryID("student")
	}
	level := asInt(m["level"], 1)
	if level < 1 {
		level = 1
	}
	xp := asInt(m["xp"], 0)
	if xp < 0 {
		xp = 0
	}
	created := n.timeOr(m["createdAt"])
	updated, ok := asTime(m["updatedAt"])
	if !ok {
		updated = created
	}
	return domain.Student{
		ID:          id,
		Name:        asString(m["name"], ""),
		Avatar:      asString(m["avatar"], ""),
		Level:       level,
		XP:          xp,
		ParentPhone: asString(m["parentPhone"], ""),
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
}

// DraftStudent builds the cached form of a student created locally under a
// temporary id.
func (n *Normaliser) DraftStudent(draft domain.StudentDraft) domain.Student {
	now := n.Now()
	s := n.student(asObject(decode(draft)))
	s.ID = n.TemporaryID("student")
	s.CreatedAt = now
	s.UpdatedAt = now
	return s
}
