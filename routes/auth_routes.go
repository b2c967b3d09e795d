package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kamaubrian/study_pal/handlers"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.RegisterParent)
	auth.Post("/login", handlers.LoginParent)
}
