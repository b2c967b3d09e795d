package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kamaubrian/study_pal/handlers"
	"github.com/kamaubrian/study_pal/middleware"
)

func AssessmentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	learners := api.Group("/learners", middleware.Protected())
	learners.Post("", handlers.CreateLearner)
	learners.Get("", handlers.ListLearners)

	assessments := api.Group("/assessments", middleware.Protected())
	assessments.Post("/generate", handlers.GenerateAssessment)
	assessments.Post("", handlers.SaveAssessment)
	assessments.Get("", handlers.ListAssessments)
	assessments.Get("/:assessmentId", handlers.GetAssessment)
	assessments.Delete("/:assessmentId", handlers.DeleteAssessment)
	assessments.Post("/questions/:questionId/answer", handlers.RecordAnswer)
	assessments.Post("/:assessmentId/submit", handlers.SubmitAssessment)
	assessments.Post("/:assessmentId/share", handlers.ShareAssessment)
	assessments.Get("/:assessmentId/shares", handlers.ListShareEvents)
}
