package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/kamaubrian/study_pal/database"
	"github.com/kamaubrian/study_pal/models"
	"github.com/kamaubrian/study_pal/utils"
)

const (
	minQuestionCount = 1
	maxQuestionCount = 10
)

// GeneratorPort is the text-generation provider as the lifecycle manager
// sees it.
type GeneratorPort interface {
	Generate(ctx context.Context, subjectName, description, gradeLevel string, count int) ([]GeneratedQuestion, error)
}

// AssessmentDraft is a generator result living only in the caller's hands.
// It has no row anywhere until Save commits it; abandoning a draft has no
// side effects to undo.
type AssessmentDraft struct {
	DraftID       string              `json:"draft_id"`
	SubjectName   string              `json:"subject_name"`
	Description   string              `json:"description"`
	GradeLevel    string              `json:"grade_level"`
	QuestionCount int                 `json:"question_count"`
	Questions     []GeneratedQuestion `json:"questions"`
}

type SubmitResult struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// AssessmentService drives the assessment lifecycle: draft generation,
// atomic save, per-question answering, server-side scoring on submit, and
// owner-only deletion. All durable state lives in the store.
type AssessmentService struct {
	store     *database.AssessmentStore
	generator GeneratorPort
	gate      *AccessGate
	baseURL   string
}

func NewAssessmentService(store *database.AssessmentStore, generator GeneratorPort, gate *AccessGate, baseURL string) *AssessmentService {
	return &AssessmentService{
		store:     store,
		generator: generator,
		gate:      gate,
		baseURL:   baseURL,
	}
}

// Generate produces a fresh draft. Regenerating after rejecting a draft is
// just calling this again; nothing is persisted until Save.
func (s *AssessmentService) Generate(ctx context.Context, subjectName, description, gradeLevel string, count int) (*AssessmentDraft, error) {
	if count < minQuestionCount || count > maxQuestionCount {
		return nil, fmt.Errorf("%w: question count must be between %d and %d", utils.ErrInvalidParameters, minQuestionCount, maxQuestionCount)
	}
	if strings.TrimSpace(subjectName) == "" {
		return nil, fmt.Errorf("%w: subject name is required", utils.ErrInvalidParameters)
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description is required", utils.ErrInvalidParameters)
	}

	questions, err := s.generator.Generate(ctx, subjectName, description, gradeLevel, count)
	if err != nil {
		return nil, err
	}

	return &AssessmentDraft{
		DraftID:       uuid.NewString(),
		SubjectName:   subjectName,
		Description:   description,
		GradeLevel:    gradeLevel,
		QuestionCount: count,
		Questions:     questions,
	}, nil
}

// Save commits a draft: the assessment row and every question row land in
// one transaction, with a freshly minted share token and link. Saving the
// same draft twice fails with ErrAlreadySaved.
func (s *AssessmentService) Save(ownerID, learnerID uuid.UUID, title string, draft *AssessmentDraft) (*models.Assessment, error) {
	if draft == nil || len(draft.Questions) == 0 {
		return nil, fmt.Errorf("%w: draft has no questions", utils.ErrInvalidParameters)
	}
	if draft.QuestionCount < minQuestionCount || draft.QuestionCount > maxQuestionCount {
		return nil, fmt.Errorf("%w: question count must be between %d and %d", utils.ErrInvalidParameters, minQuestionCount, maxQuestionCount)
	}
	if len(draft.Questions) < draft.QuestionCount {
		return nil, fmt.Errorf("%w: have %d of %d questions", utils.ErrIncompleteGeneration, len(draft.Questions), draft.QuestionCount)
	}

	if draft.DraftID != "" {
		saved, err := s.store.DraftSaved(draft.DraftID)
		if err != nil {
			return nil, err
		}
		if saved {
			return nil, utils.ErrAlreadySaved
		}
	}

	token, err := s.store.MintShareToken()
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("%s Practice Assessment", draft.SubjectName)
	}

	assessment := &models.Assessment{
		OwnerID:       ownerID,
		LearnerID:     learnerID,
		Title:         title,
		Description:   draft.Description,
		SubjectName:   draft.SubjectName,
		GradeLevel:    draft.GradeLevel,
		QuestionCount: draft.QuestionCount,
		ShareToken:    token,
		ShareLink:     utils.ShareLink(s.baseURL, token),
		GeneratedByAI: true,
	}
	if draft.DraftID != "" {
		draftID := draft.DraftID
		assessment.DraftID = &draftID
	}

	questions := make([]*models.AssessmentQuestion, 0, draft.QuestionCount)
	for i, q := range draft.Questions[:draft.QuestionCount] {
		questions = append(questions, &models.AssessmentQuestion{
			Position:      i + 1,
			Prompt:        q.Prompt,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
		})
	}

	if err := s.store.CreateAssessmentWithQuestions(assessment, questions); err != nil {
		return nil, err
	}
	return assessment, nil
}

// Get fetches an assessment for a caller that may read it.
func (s *AssessmentService) Get(assessmentID uuid.UUID, caller CallerIdentity) (*models.Assessment, error) {
	assessment, err := s.store.GetByID(assessmentID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(caller, assessment, ActionRead); err != nil {
		return nil, err
	}
	return assessment, nil
}

func (s *AssessmentService) ListByOwner(ownerID uuid.UUID) ([]models.Assessment, error) {
	return s.store.ListByOwner(ownerID)
}

// RecordAnswer upserts one answer. Answers accrue one at a time so an
// interrupted session resumes with everything chosen so far; two writes to
// the same question are last-write-wins.
func (s *AssessmentService) RecordAnswer(questionID uuid.UUID, option string, caller CallerIdentity) error {
	if !validOption(option) {
		return fmt.Errorf("%w: answer must be one of A, B, C, D", utils.ErrInvalidParameters)
	}

	question, err := s.store.GetQuestion(questionID)
	if err != nil {
		return err
	}
	assessment, err := s.store.GetByID(question.AssessmentID)
	if err != nil {
		return err
	}

	if err := s.gate.Authorize(caller, assessment, ActionRead); err != nil {
		return err
	}
	if assessment.Completed {
		return utils.ErrAssessmentLocked
	}
	if err := s.gate.Authorize(caller, assessment, ActionAnswer); err != nil {
		return err
	}

	return s.store.UpdateQuestionAnswer(questionID, option)
}

// Submit scores an assessment from its persisted answers, never from
// anything the client holds. Submitting an already-completed assessment
// returns the same tally again without re-scoring.
func (s *AssessmentService) Submit(assessmentID uuid.UUID, caller CallerIdentity) (*SubmitResult, error) {
	assessment, err := s.store.GetByID(assessmentID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(caller, assessment, ActionRead); err != nil {
		return nil, err
	}

	if assessment.Completed {
		correct, total := tally(assessment.Questions)
		return &SubmitResult{Correct: correct, Total: total, Percentage: *assessment.Score}, nil
	}

	if err := s.gate.Authorize(caller, assessment, ActionSubmit); err != nil {
		return nil, err
	}

	for _, q := range assessment.Questions {
		if q.StudentAnswer == nil {
			return nil, utils.ErrIncompleteAnswers
		}
	}

	correct, total := tally(assessment.Questions)
	percentage := int(math.Round(100 * float64(correct) / float64(total)))

	if err := s.store.MarkComplete(assessment.ID, percentage); err != nil {
		return nil, err
	}

	return &SubmitResult{Correct: correct, Total: total, Percentage: percentage}, nil
}

// Delete is owner-only and cascades to the questions. The store makes it
// all-or-nothing; share events stay behind for audit.
func (s *AssessmentService) Delete(assessmentID uuid.UUID, caller CallerIdentity) error {
	assessment, err := s.store.GetByID(assessmentID)
	if err != nil {
		return err
	}
	if err := s.gate.Authorize(caller, assessment, ActionDelete); err != nil {
		return err
	}
	return s.store.DeleteAssessment(assessmentID)
}

func tally(questions []*models.AssessmentQuestion) (correct, total int) {
	total = len(questions)
	for _, q := range questions {
		if q.StudentAnswer != nil && *q.StudentAnswer == q.CorrectOption {
			correct++
		}
	}
	return correct, total
}

func validOption(option string) bool {
	switch option {
	case "A", "B", "C", "D":
		return true
	}
	return false
}
