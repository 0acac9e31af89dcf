package domain

import "time"

// Student is a learner enrolled in LearnQuest.
type Student struct {
	// ID is the server id, or a temporary id while the student is unconfirmed.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Avatar is an optional avatar reference.
	Avatar string `json:"avatar,omitempty"`

	// Level is the current level, starting at 1.
	Level int `json:"level"`

	// XP is the accumulated experience points.
	XP int `json:"xp"`

	// ParentPhone receives SMS notifications when set.
	ParentPhone string `json:"parentPhone,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StudentDraft is the data submitted to create a student.
type StudentDraft struct {
	Name        string `json:"name" validate:"required"`
	Avatar      string `json:"avatar,omitempty"`
	Level       int    `json:"level" validate:"gte=1"`
	XP          int    `json:"xp" validate:"gte=0"`
	ParentPhone string `json:"parentPhone,omitempty" validate:"omitempty,phone"`
}

// StudentPatch is a partial update. Nil fields are left untouched.
type StudentPatch struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Avatar      *string `json:"avatar,omitempty"`
	Level       *int    `json:"level,omitempty" validate:"omitempty,gte=1"`
	XP          *int    `json:"xp,omitempty" validate:"omitempty,gte=0"`
	ParentPhone *string `json:"parentPhone,omitempty" validate:"omitempty,phone"`
}

// Apply returns a copy of s with the patch fields overridden.
func (p StudentPatch) Apply(s Student) Student {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Avatar != nil {
		s.Avatar = *p.Avatar
	}
	if p.Level != nil {
		s.Level = *p.Level
	}
	if p.XP != nil {
		s.XP = *p.XP
	}
	if p.ParentPhone != nil {
		s.ParentPhone = *p.ParentPhone
	}
	return s
}
