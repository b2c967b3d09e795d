package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssessmentQuestion struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AssessmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assessment_id"`

	// Position preserves generation order when questions are read back.
	Position int `gorm:"not null;default:0" json:"position"`

	Prompt  string `gorm:"type:text;not null" json:"prompt"`
	OptionA string `gorm:"type:text;not null" json:"option_a"`
	OptionB string `gorm:"type:text;not null" json:"option_b"`
	OptionC string `gorm:"type:text;not null" json:"option_c"`
	OptionD string `gorm:"type:text;not null" json:"option_d"`

	CorrectOption string `gorm:"size:1;not null" json:"correct_option"`
	Explanation   string `gorm:"type:text;not null" json:"explanation"`

	StudentAnswer *string    `gorm:"size:1" json:"student_answer"`
	AnsweredAt    *time.Time `json:"answered_at"`
}

func (q *AssessmentQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
