package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kamaubrian/study_pal/models"
	"github.com/kamaubrian/study_pal/utils"
	"gorm.io/gorm"
)

// AssessmentStore owns persistence of assessments, their questions and the
// share-event log. It enforces referential integrity only; lifecycle rules
// live in the service layer.
type AssessmentStore struct {
	db *gorm.DB
}

func NewAssessmentStore(db *gorm.DB) *AssessmentStore {
	return &AssessmentStore{db: db}
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// DB exposes the underlying handle for callers needing raw queries.
func (s *AssessmentStore) DB() *gorm.DB {
	return s.db
}

// CreateAssessmentWithQuestions writes the assessment and all of its
// questions in one transaction. A partial write (assessment without its
// questions) is never observable.
func (s *AssessmentStore) CreateAssessmentWithQuestions(assessment *models.Assessment, questions []*models.AssessmentQuestion) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if assessment.ID == uuid.Nil {
			assessment.ID = uuid.New()
		}
		if err := tx.Omit("Questions").Create(assessment).Error; err != nil {
			return err
		}
		for _, q := range questions {
			if q.ID == uuid.Nil {
				q.ID = uuid.New()
			}
			q.AssessmentID = assessment.ID
		}
		if err := tx.Create(&questions).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: creating assessment: %v", utils.ErrStorage, err)
	}
	assessment.Questions = questions
	return nil
}

// MintShareToken returns a token guaranteed unique against the stored
// assessments at mint time.
func (s *AssessmentStore) MintShareToken() (string, error) {
	token, err := utils.GenerateShareToken(s.db)
	if err != nil {
		return "", fmt.Errorf("%w: minting share token: %v", utils.ErrStorage, err)
	}
	return token, nil
}

// DraftSaved reports whether a draft id has already been committed.
func (s *AssessmentStore) DraftSaved(draftID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Assessment{}).Where("draft_id = ?", draftID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: checking draft id: %v", utils.ErrStorage, err)
	}
	return count > 0, nil
}

func (s *AssessmentStore) GetByID(id uuid.UUID) (*models.Assessment, error) {
	var assessment models.Assessment
	err := s.db.Preload("Questions", orderByPosition).First(&assessment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetching assessment %s: %v", utils.ErrStorage, id, err)
	}
	return &assessment, nil
}

func (s *AssessmentStore) GetByShareLink(link string) (*models.Assessment, error) {
	var assessment models.Assessment
	err := s.db.Preload("Questions", orderByPosition).First(&assessment, "share_link = ?", link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetching assessment by link: %v", utils.ErrStorage, err)
	}
	return &assessment, nil
}

func (s *AssessmentStore) ListByOwner(ownerID uuid.UUID) ([]models.Assessment, error) {
	var assessments []models.Assessment
	err := s.db.Preload("Questions", orderByPosition).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&assessments).Error
	if err != nil {
		return nil, fmt.Errorf("%w: listing assessments: %v", utils.ErrStorage, err)
	}
	return assessments, nil
}

func (s *AssessmentStore) GetQuestion(questionID uuid.UUID) (*models.AssessmentQuestion, error) {
	var question models.AssessmentQuestion
	err := s.db.First(&question, "id = ?", questionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetching question %s: %v", utils.ErrStorage, questionID, err)
	}
	return &question, nil
}

// UpdateQuestionAnswer upserts a single answer. Answers are written one at a
// time as the answerer progresses, so a reloaded assessment shows everything
// chosen so far.
func (s *AssessmentStore) UpdateQuestionAnswer(questionID uuid.UUID, option string) error {
	result := s.db.Model(&models.AssessmentQuestion{}).
		Where("id = ?", questionID).
		Updates(map[string]interface{}{
			"student_answer": option,
			"answered_at":    time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("%w: updating answer for %s: %v", utils.ErrStorage, questionID, result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (s *AssessmentStore) MarkComplete(assessmentID uuid.UUID, score int) error {
	result := s.db.Model(&models.Assessment{}).
		Where("id = ?", assessmentID).
		Updates(map[string]interface{}{
			"completed": true,
			"score":     score,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: marking %s complete: %v", utils.ErrStorage, assessmentID, result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// DeleteAssessment removes the assessment and cascades to its questions in
// one transaction. Share events are kept for audit.
func (s *AssessmentStore) DeleteAssessment(assessmentID uuid.UUID) error {
	var notFound bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.AssessmentQuestion{}, "assessment_id = ?", assessmentID).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Assessment{}, "id = ?", assessmentID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			notFound = true
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if notFound {
		return utils.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: deleting assessment %s: %v", utils.ErrStorage, assessmentID, err)
	}
	return nil
}

func (s *AssessmentStore) RecordShareEvent(event *models.ShareEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := s.db.Create(event).Error; err != nil {
		return fmt.Errorf("%w: recording share event: %v", utils.ErrStorage, err)
	}
	return nil
}

func (s *AssessmentStore) ListShareEvents(assessmentID uuid.UUID) ([]models.ShareEvent, error) {
	var events []models.ShareEvent
	err := s.db.Where("assessment_id = ?", assessmentID).
		Order("occurred_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("%w: listing share events: %v", utils.ErrStorage, err)
	}
	return events, nil
}
