package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShareEvent is an append-only record of an assessment being distributed.
// Rows survive deletion of their assessment so distribution analytics keep
// their history.
type ShareEvent struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AssessmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assessment_id"`
	Channel      string    `gorm:"size:20;not null" json:"channel"`
	Recipient    *string   `gorm:"size:255" json:"recipient"`
	OccurredAt   time.Time `gorm:"not null" json:"occurred_at"`
}

func (e *ShareEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
