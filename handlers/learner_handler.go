package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kamaubrian/study_pal/database"
	"github.com/kamaubrian/study_pal/models"
)

type LearnerRequest struct {
	Name       string `json:"name" validate:"required,min=2"`
	GradeLevel string `json:"grade_level"`
}

func CreateLearner(c *fiber.Ctx) error {
	caller := callerFromJWT(c)

	var req LearnerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	learner := models.Learner{
		ParentID:   caller.UserID,
		Name:       req.Name,
		GradeLevel: req.GradeLevel,
	}
	if err := database.DB.Create(&learner).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create learner"})
	}

	return c.Status(fiber.StatusCreated).JSON(learner)
}

func ListLearners(c *fiber.Ctx) error {
	caller := callerFromJWT(c)

	var learners []models.Learner
	if err := database.DB.Where("parent_id = ?", caller.UserID).Find(&learners).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list learners"})
	}
	return c.JSON(learners)
}
