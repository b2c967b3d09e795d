package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kamaubrian/study_pal/models"
	"github.com/kamaubrian/study_pal/services"
)

// resolveShared maps the path segment of a shared URL to an assessment. The
// segment may be a bare assessment id or the token from a full share link;
// both spellings are in circulation.
func resolveShared(c *fiber.Ctx) (*models.Assessment, error) {
	return shareResolver.Resolve(c.Params("segment"))
}

func GetSharedAssessment(c *fiber.Ctx) error {
	assessment, err := resolveShared(c)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(publicAssessmentView(assessment))
}

func RecordSharedAnswer(c *fiber.Ctx) error {
	assessment, err := resolveShared(c)
	if err != nil {
		return serviceError(c, err)
	}

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

	caller := services.LinkHolderIdentity(assessment.ShareToken)
	if err := assessmentService.RecordAnswer(questionID, req.Option, caller); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Answer recorded"})
}

func SubmitSharedAssessment(c *fiber.Ctx) error {
	assessment, err := resolveShared(c)
	if err != nil {
		return serviceError(c, err)
	}

	caller := services.LinkHolderIdentity(assessment.ShareToken)
	result, err := assessmentService.Submit(assessment.ID, caller)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(result)
}

// publicAssessmentView is what a link holder sees: no owner or learner ids,
// and the answer key withheld until the assessment is completed.
func publicAssessmentView(assessment *models.Assessment) fiber.Map {
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
		"id":             assessment.ID,
		"title":          assessment.Title,
		"subject_name":   assessment.SubjectName,
		"grade_level":    assessment.GradeLevel,
		"question_count": assessment.QuestionCount,
		"completed":      assessment.Completed,
		"score":          assessment.Score,
		"questions":      questions,
	}
}
