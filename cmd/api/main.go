package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	config "github.com/kamaubrian/study_pal/configs"
	"github.com/kamaubrian/study_pal/database"
	"github.com/kamaubrian/study_pal/handlers"
	"github.com/kamaubrian/study_pal/jobs"
	"github.com/kamaubrian/study_pal/notifications"
	"github.com/kamaubrian/study_pal/routes"
	"github.com/kamaubrian/study_pal/services"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	notifications.InitEmailService()

	baseURL := config.Config("APP_BASE_URL")
	store := database.NewAssessmentStore(database.DB)
	gate := services.NewAccessGate()
	generator := services.NewQuestionGenerator(config.Config("OPENAI_API_KEY"))
	assessmentService := services.NewAssessmentService(store, generator, gate, baseURL)
	shareService := services.NewShareService(store, gate, services.NewPrintService())
	resolver := services.NewShareResolver(store, baseURL)
	handlers.InitAssessmentHandlers(assessmentService, shareService, resolver)

	c := cron.New()
	c.AddFunc("0 8 * * *", jobs.SendIncompleteAssessmentReminders)
	go c.Start()
	log.Println("✅ Cron job for assessment reminders scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "Study Pal",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Study Pal API",
		})
	})

	routes.AuthRoutes(app)
	routes.AssessmentRoutes(app)
	routes.PublicRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	log.Println("✅ Server is running on port 8080")
	err := app.Listen(":8080")
	if err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
