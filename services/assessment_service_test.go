package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/kamaubrian/study_pal/database"
	"github.com/kamaubrian/study_pal/models"
	"github.com/kamaubrian/study_pal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testBaseURL = "https://studypal.test"

type stubGenerator struct {
	questions []GeneratedQuestion
	err       error
	calls     int
}

func (g *stubGenerator) Generate(ctx context.Context, subjectName, description, gradeLevel string, count int) ([]GeneratedQuestion, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.questions, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Learner{},
		&models.Assessment{},
		&models.AssessmentQuestion{},
		&models.ShareEvent{},
	))
	return db
}

func sampleQuestions() []GeneratedQuestion {
	return []GeneratedQuestion{
		{Prompt: "What is 7 x 8?", OptionA: "54", OptionB: "56", OptionC: "58", OptionD: "64", CorrectOption: "B", Explanation: "7 times 8 is 56."},
		{Prompt: "What is 12 / 4?", OptionA: "3", OptionB: "4", OptionC: "6", OptionD: "8", CorrectOption: "A", Explanation: "12 divided by 4 is 3."},
		{Prompt: "What is 9 + 6?", OptionA: "13", OptionB: "14", OptionC: "15", OptionD: "16", CorrectOption: "C", Explanation: "9 plus 6 is 15."},
	}
}

func newTestService(t *testing.T, generator GeneratorPort) (*AssessmentService, *database.AssessmentStore) {
	t.Helper()
	store := database.NewAssessmentStore(newTestDB(t))
	svc := NewAssessmentService(store, generator, NewAccessGate(), testBaseURL)
	return svc, store
}

func mustDraft(t *testing.T, svc *AssessmentService) *AssessmentDraft {
	t.Helper()
	draft, err := svc.Generate(context.Background(), "Math", "multiplication and division practice", "4th grade", 3)
	require.NoError(t, err)
	return draft
}

func TestGenerateValidatesParameters(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{questions: sampleQuestions()})

	cases := []struct {
		name        string
		subject     string
		description string
		count       int
	}{
		{"zero count", "Math", "practice", 0},
		{"count too high", "Math", "practice", 11},
		{"empty subject", "", "practice", 3},
		{"empty description", "Math", "  ", 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), tc.subject, tc.description, "4th grade", tc.count)
			assert.ErrorIs(t, err, utils.ErrInvalidParameters)
		})
	}
}

func TestGenerateSurfacesGeneratorFailure(t *testing.T) {
	gen := &stubGenerator{err: fmt.Errorf("%w: provider timeout", utils.ErrGenerationFailed)}
	svc, store := newTestService(t, gen)

	_, err := svc.Generate(context.Background(), "Math", "practice", "4th grade", 3)
	assert.ErrorIs(t, err, utils.ErrGenerationFailed)

	// A failed generation never leaves a partial draft behind.
	var count int64
	store.DB().Model(&models.Assessment{}).Count(&count)
	assert.Zero(t, count)
}

func TestSaveIsAtomicAndMintsShareLink(t *testing.T) {
	svc, store := newTestService(t, &stubGenerator{questions: sampleQuestions()})
	draft := mustDraft(t, svc)

	ownerID, learnerID := uuid.New(), uuid.New()
	saved, err := svc.Save(ownerID, learnerID, "Times Tables", draft)
	require.NoError(t, err)

	assert.Equal(t, ownerID, saved.OwnerID)
	assert.Equal(t, learnerID, saved.LearnerID)
	assert.Equal(t, 3, saved.QuestionCount)
	assert.NotEmpty(t, saved.ShareToken)
	assert.Equal(t, utils.ShareLink(testBaseURL, saved.ShareToken), saved.ShareLink)
	assert.True(t, saved.GeneratedByAI)
	assert.False(t, saved.Completed)
	assert.Nil(t, saved.Score)

	fetched, err := store.GetByID(saved.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Questions, 3)
	for _, q := range fetched.Questions {
		assert.Equal(t, saved.ID, q.AssessmentID)
		assert.Nil(t, q.StudentAnswer)
	}
}

func TestSaveRejectsIncompleteGeneration(t *testing.T) {
	svc, store := newTestService(t, &stubGenerator{questions: sampleQuestions()})
	draft := mustDraft(t, svc)
	draft.QuestionCount = 5

	_, err := svc.Save(uuid.New(), uuid.New(), "", draft)
	assert.ErrorIs(t, err, utils.ErrIncompleteGeneration)

	var count int64
	store.DB().Model(&models.Assessment{}).Count(&count)
	assert.Zero(t, count)
}

func TestSaveTwiceFailsWithAlreadySaved(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{questions: sampleQuestions()})
	draft := mustDraft(t, svc)

	_, err := svc.Save(uuid.New(), uuid.New(), "", draft)
	require.NoError(t, err)

	_, err = svc.Save(uuid.New(), uuid.New(), "", draft)
	assert.ErrorIs(t, err, utils.ErrAlreadySaved)
}

func TestRecordAnswerAccruesAndResumes(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{questions: sampleQuestions()})
	draft := mustDraft(t, svc)

	ownerID := uuid.New()
	saved, err := svc.Save(ownerID, uuid.New(), "", draft)
	require.NoError(t, err)

	owner := OwnerIdentity(ownerID)
	require.NoError(t, svc.RecordAnswer(saved.Questions[0].ID, "B", owner))
	require.NoError(t, svc.RecordAnswer(saved.Questions[1].ID, "D", owner))
	// Changing an answer before submission is allowed.
	require.NoError(t, svc.RecordAnswer(saved.Questions[1].ID, "A", owner))

	reloaded, err := svc.Get(saved.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "B", *reloaded.Questions[0].StudentAnswer)
	assert.Equal(t, "A", *reloaded.Questions[1].StudentAnswer)
	assert.NotNil(t, reloaded.Questions[0].AnsweredAt)
	assert.Nil(t, reloaded.Questions[2].StudentAnswer)
}

func TestRecordAnswerRejectsStrangers(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{questions: sampleQuestions()})
	saved, err := svc.Save(uuid.New(), uuid.New(), "", mustDraft(t, svc))
	require.NoError(t, err)

	err = svc.RecordAnswer(saved.Questions[0].ID, "A", OwnerIdentity(uuid.New()))
	assert.ErrorIs(t, err, utils.ErrForbidden)

	err = svc.RecordAnswer(saved.Questions[0].ID, "A", LinkHolderIdentity("not-the-token"))
	assert.ErrorIs(t, err, utils.ErrForbidden)
}

func TestRecordAnswerValidatesOption(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{questions: sampleQuestions()})
	ownerID := uuid.New()
	saved, err := svc.Save(ownerID, uuid.New(), "", mustDraft(t, svc))
	require.NoError(t, err)

	err = svc.RecordAnswer(saved.Questions[0].ID, "E", OwnerIdentity(ownerID))
	assert.ErrorIs(t, err, utils.ErrInvalidParameters)
}

func TestSubmitRequiresEveryAnswer(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{questions: sampleQuestions()})
	ownerID := uuid.New()
	saved, err := svc.Save(ownerID, uuid.New(), "", mustDraft(t, svc))
	require.NoError(t, err)

	owner := OwnerIdentity(ownerID)
	require.NoError(t, svc.RecordAnswer(saved.Questions[0].ID, "B", owner))

	_, err = svc.Submit(saved.ID, owner)
	assert.ErrorIs(t, err, utils.ErrIncompleteAnswers)
}

func TestSubmitScoresFromPersistedAnswers(t *testing.T) {
	// Correct options are B, A, C; answering B, A, B must score 2/3 = 67%.
	svc, _ := newTestService(t, &stubGenerator{questions: sampleQuestions()})
	ownerID := uuid.New()
	saved, err := svc.Save(ownerID, uuid.New(), "", mustDraft(t, svc))
	require.NoError(t, err)

	owner := OwnerIdentity(ownerID)
	require.NoError(t, svc.RecordAnswer(saved.Questions[0].ID, "B", owner))
	require.NoError(t, svc.RecordAnswer(saved.Questions[1].ID, "A", owner))
	require.NoError(t, svc.RecordAnswer(saved.Questions[2].ID, "B", owner))

	result, err := svc.Submit(saved.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Correct)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 67, result.Percentage)

	completed, err := svc.Get(saved.ID, owner)
	require.NoError(t, err)
	assert.True(t, completed.Completed)
	require.NotNil(t, completed.Score)
	assert.Equal(t, 67, *completed.Score)
}

func TestSubmitIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{questions: sampleQuestions()})
	ownerID := uuid.New()
	saved, err := svc.Save(ownerID, uuid.New(), "", mustDraft(t, svc))
	require.NoError(t, err)

	owner := OwnerIdentity(ownerID)
	for _, q := range saved.Questions {
		require.NoError(t, svc.RecordAnswer(q.ID, "A", owner))
	}

	first, err := svc.Submit(saved.ID, owner)
	require.NoError(t, err)
	second, err := svc.Submit(saved.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	reloaded, err := svc.Get(saved.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, first.Percentage, *reloaded.Score)
}

func TestCompletedAssessmentIsLocked(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{questions: sampleQuestions()})
	ownerID := uuid.New()
	saved, err := svc.Save(ownerID, uuid.New(), "", mustDraft(t, svc))
	require.NoError(t, err)

	owner := OwnerIdentity(ownerID)
	for _, q := range saved.Questions {
		require.NoError(t, svc.RecordAnswer(q.ID, "B", owner))
	}
	_, err = svc.Submit(saved.ID, owner)
	require.NoError(t, err)

	err = svc.RecordAnswer(saved.Questions[0].ID, "C", owner)
	assert.ErrorIs(t, err, utils.ErrAssessmentLocked)

	reloaded, err := svc.Get(saved.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "B", *reloaded.Questions[0].StudentAnswer)
}

func TestLinkHolderCanAnswerAndSubmit(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{questions: sampleQuestions()})
	saved, err := svc.Save(uuid.New(), uuid.New(), "", mustDraft(t, svc))
	require.NoError(t, err)

	holder := LinkHolderIdentity(saved.ShareToken)
	for _, q := range saved.Questions {
		require.NoError(t, svc.RecordAnswer(q.ID, "A", holder))
	}

	result, err := svc.Submit(saved.ID, holder)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
}

func TestDeleteIsOwnerOnlyAndCascades(t *testing.T) {
	svc, store := newTestService(t, &stubGenerator{questions: sampleQuestions()})
	ownerID := uuid.New()
	saved, err := svc.Save(ownerID, uuid.New(), "", mustDraft(t, svc))
	require.NoError(t, err)

	require.NoError(t, store.RecordShareEvent(&models.ShareEvent{
		AssessmentID: saved.ID,
		Channel:      ChannelWhatsApp,
	}))

	err = svc.Delete(saved.ID, LinkHolderIdentity(saved.ShareToken))
	assert.ErrorIs(t, err, utils.ErrForbidden)

	require.NoError(t, svc.Delete(saved.ID, OwnerIdentity(ownerID)))

	_, err = store.GetByID(saved.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	var questionCount int64
	store.DB().Model(&models.AssessmentQuestion{}).Where("assessment_id = ?", saved.ID).Count(&questionCount)
	assert.Zero(t, questionCount)

	// Share events outlive the assessment for audit.
	events, err := store.ListShareEvents(saved.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestDeleteMissingAssessmentIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{questions: sampleQuestions()})
	err := svc.Delete(uuid.New(), OwnerIdentity(uuid.New()))
	assert.ErrorIs(t, err, utils.ErrNotFound)
}
