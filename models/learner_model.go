package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Learner struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ParentID uuid.UUID `gorm:"type:uuid;not null;index" json:"parent_id"`

	Name       string `gorm:"size:255;not null" json:"name"`
	GradeLevel string `gorm:"size:50" json:"grade_level"`

	Parent User `gorm:"foreignkey:ParentID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Learner) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
