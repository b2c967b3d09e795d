package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/kamaubrian/study_pal/database"
	"github.com/kamaubrian/study_pal/models"
	"github.com/kamaubrian/study_pal/services"
	"github.com/kamaubrian/study_pal/utils"
)

var (
	assessmentService *services.AssessmentService
	shareService      *services.ShareService
	shareResolver     *services.ShareResolver
)

// InitAssessmentHandlers wires the handler package to its services. Called
// once from main before routes are registered.
func InitAssessmentHandlers(assessments *services.AssessmentService, shares *services.ShareService, resolver *services.ShareResolver) {
	assessmentService = assessments
	shareService = shares
	shareResolver = resolver
}

func callerFromJWT(c *fiber.Ctx) services.CallerIdentity {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	return services.OwnerIdentity(userID)
}

// errorStatus maps the engine's error kinds to HTTP statuses, keeping
// permission and lock failures distinguishable from storage failures so
// clients know what is worth retrying.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, utils.ErrInvalidParameters):
		return fiber.StatusBadRequest
	case errors.Is(err, utils.ErrGenerationFailed):
		return fiber.StatusBadGateway
	case errors.Is(err, utils.ErrIncompleteGeneration):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, utils.ErrAlreadySaved):
		return fiber.StatusConflict
	case errors.Is(err, utils.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, utils.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, utils.ErrAssessmentLocked):
		return fiber.StatusLocked
	case errors.Is(err, utils.ErrIncompleteAnswers):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func serviceError(c *fiber.Ctx, err error) error {
	return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
}

type GenerateRequest struct {
	SubjectName   string `json:"subject_name" validate:"required"`
	Description   string `json:"description" validate:"required"`
	GradeLevel    string `json:"grade_level" validate:"required"`
	QuestionCount int    `json:"question_count" validate:"required,min=1,max=10"`
}

func GenerateAssessment(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	draft, err := assessmentService.Generate(c.UserContext(), req.SubjectName, req.Description, req.GradeLevel, req.QuestionCount)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(draft)
}

type SaveAssessmentRequest struct {
	LearnerID string                   `json:"learner_id" validate:"required,uuid4"`
	Title     string                   `json:"title"`
	Draft     services.AssessmentDraft `json:"draft" validate:"required"`
}

func SaveAssessment(c *fiber.Ctx) error {
	caller := callerFromJWT(c)

	var req SaveAssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	learnerID, _ := uuid.Parse(req.LearnerID)
	var learner models.Learner
	if err := database.DB.First(&learner, "id = ?", learnerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Learner not found"})
	}
	if learner.ParentID != caller.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Learner does not belong to this account"})
	}

	assessment, err := assessmentService.Save(caller.UserID, learnerID, req.Title, &req.Draft)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ownerAssessmentView(assessment))
}

func ListAssessments(c *fiber.Ctx) error {
	caller := callerFromJWT(c)

	assessments, err := assessmentService.ListByOwner(caller.UserID)
	if err != nil {
		return serviceError(c, err)
	}

	summaries := make([]fiber.Map, len(assessments))
	for i := range assessments {
		summaries[i] = summaryView(&assessments[i])
	}
	return c.JSON(summaries)
}

func GetAssessment(c *fiber.Ctx) error {
	caller := callerFromJWT(c)
	assessmentID, err := uuid.Parse(c.Params("assessmentId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}

	assessment, err := assessmentService.Get(assessmentID, caller)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(ownerAssessmentView(assessment))
}

func DeleteAssessment(c *fiber.Ctx) error {
	caller := callerFromJWT(c)
	assessmentID, err := uuid.Parse(c.Params("assessmentId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}

	if err := assessmentService.Delete(assessmentID, caller); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type AnswerRequest struct {
	Option string `json:"option" validate:"required,oneof=A B C D"`
}

func RecordAnswer(c *fiber.Ctx) error {
	caller := callerFromJWT(c)
	questionID, err := uuid.Parse(c.Params("questionId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}

	var req AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := assessmentService.RecordAnswer(questionID, req.Option, caller); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Answer recorded"})
}

func SubmitAssessment(c *fiber.Ctx) error {
	caller := callerFromJWT(c)
	assessmentID, err := uuid.Parse(c.Params("assessmentId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}

	result, err := assessmentService.Submit(assessmentID, caller)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(result)
}

type ShareRequest struct {
	Channel   string  `json:"channel" validate:"required,oneof=email whatsapp print"`
	Recipient *string `json:"recipient"`
}

func ShareAssessment(c *fiber.Ctx) error {
	caller := callerFromJWT(c)
	assessmentID, err := uuid.Parse(c.Params("assessmentId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}

	var req ShareRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	outcome, err := shareService.Share(assessmentID, req.Channel, req.Recipient, caller)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(outcome)
}

func ListShareEvents(c *fiber.Ctx) error {
	caller := callerFromJWT(c)
	assessmentID, err := uuid.Parse(c.Params("assessmentId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}

	events, err := shareService.History(assessmentID, caller)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(events)
}

type questionView struct {
	ID            uuid.UUID  `json:"id"`
	Prompt        string     `json:"prompt"`
	OptionA       string     `json:"option_a"`
	OptionB       string     `json:"option_b"`
	OptionC       string     `json:"option_c"`
	OptionD       string     `json:"option_d"`
	StudentAnswer *string    `json:"student_answer"`
	AnsweredAt    *time.Time `json:"answered_at"`
	CorrectOption string     `json:"correct_option,omitempty"`
	Explanation   string     `json:"explanation,omitempty"`
}

// ownerAssessmentView shapes an assessment for its owner. Correct options
// and explanations stay hidden until submission so handing the device to the
// learner does not leak the answer key.
func ownerAssessmentView(assessment *models.Assessment) fiber.Map {
	questions := make([]questionView, len(assessment.Questions))
	for i, q := range assessment.Questions {
		view := questionView{
			ID:            q.ID,
			Prompt:        q.Prompt,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			StudentAnswer: q.StudentAnswer,
			AnsweredAt:    q.AnsweredAt,
		}
		if assessment.Completed {
			view.CorrectOption = q.CorrectOption
			view.Explanation = q.Explanation
		}
		questions[i] = view
	}

	return fiber.Map{
		"id":              assessment.ID,
		"owner_id":        assessment.OwnerID,
		"learner_id":      assessment.LearnerID,
		"title":           assessment.Title,
		"description":     assessment.Description,
		"subject_name":    assessment.SubjectName,
		"grade_level":     assessment.GradeLevel,
		"question_count":  assessment.QuestionCount,
		"share_link":      assessment.ShareLink,
		"generated_by_ai": assessment.GeneratedByAI,
		"completed":       assessment.Completed,
		"score":           assessment.Score,
		"created_at":      assessment.CreatedAt,
		"questions":       questions,
	}
}

func summaryView(assessment *models.Assessment) fiber.Map {
	return fiber.Map{
		"id":             assessment.ID,
		"title":          assessment.Title,
		"subject_name":   assessment.SubjectName,
		"grade_level":    assessment.GradeLevel,
		"question_count": assessment.QuestionCount,
		"completed":      assessment.Completed,
		"score":          assessment.Score,
		"created_at":     assessment.CreatedAt,
	}
}
