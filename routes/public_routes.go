package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kamaubrian/study_pal/handlers"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	shared := api.Group("/shared")
	shared.Get("/:segment", handlers.GetSharedAssessment)
	shared.Post("/:segment/questions/:questionId/answer", handlers.RecordSharedAnswer)
	shared.Post("/:segment/submit", handlers.SubmitSharedAssessment)
}
