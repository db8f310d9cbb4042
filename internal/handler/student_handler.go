package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assessment-api/internal/dto"
	"github.com/noah-isme/gema-assessment-api/internal/middleware"
	"github.com/noah-isme/gema-assessment-api/internal/service"
	"github.com/noah-isme/gema-assessment-api/internal/utils"
)

// StudentHandler exposes roster management endpoints for admins.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student routes to the versioned API root.
func (h *StudentHandler) Register(router fiber.Router) {
	admin := middleware.AuthOptions{Role: middleware.AuthRoleAdmin}

	router.Post("/students", middleware.WithAuth(h.enrol, admin))
	router.Get("/programs/:id/students", middleware.WithAuth(h.listByProgram, admin))
}

func (h *StudentHandler) enrol(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.service.Enrol(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "enrol student")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student enrolled", student)
}

func (h *StudentHandler) listByProgram(c *fiber.Ctx) error {
	students, err := h.service.ListByProgram(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "list students")
	}

	return utils.OK(c, students, "students retrieved", fiber.Map{"total": len(students)})
}
