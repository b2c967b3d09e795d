package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Assessment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null" json:"learner_id"`

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	SubjectName string `gorm:"size:100;not null" json:"subject_name"`
	GradeLevel  string `gorm:"size:50;not null" json:"grade_level"`

	QuestionCount int     `gorm:"not null" json:"question_count"`
	ShareToken    string  `gorm:"size:64;not null;unique" json:"share_token"`
	ShareLink     string  `gorm:"size:255;not null;unique" json:"share_link"`
	DraftID       *string `gorm:"size:64;unique" json:"-"`

	GeneratedByAI bool `gorm:"not null;default:true" json:"generated_by_ai"`
	Completed     bool `gorm:"not null;default:false" json:"completed"`
	// Score is a whole percentage, set exactly when Completed flips to true.
	Score *int `json:"score"`

	Questions []*AssessmentQuestion `gorm:"foreignkey:AssessmentID" json:"questions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
