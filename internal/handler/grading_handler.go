package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assessment-api/internal/dto"
	"github.com/noah-isme/gema-assessment-api/internal/service"
	"github.com/noah-isme/gema-assessment-api/internal/utils"
)

// GradingHandler wires grading endpoints for admins and teachers.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches grading endpoints to the router group. The group is expected to be
// restricted to graders.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Put("/bulk", h.bulk)
	router.Put("/publish/:assessmentId", h.publish)
	router.Put("/:submissionId", h.setMarks)
}

func (h *GradingHandler) setMarks(c *fiber.Ctx) error {
	var payload dto.SetMarksRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	submission, err := h.service.SetMarks(c.UserContext(), c.Params("submissionId"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "set marks")
	}

	return utils.SendSuccess(c, "marks saved", submission)
}

func (h *GradingHandler) bulk(c *fiber.Ctx) error {
	var payload dto.BulkSetMarksRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.BulkSetMarks(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "apply marks")
	}

	return utils.SendSuccess(c, "bulk marks processed", result)
}

func (h *GradingHandler) publish(c *fiber.Ctx) error {
	result, err := h.service.Publish(c.UserContext(), c.Params("assessmentId"))
	if err != nil {
		return respondError(c, h.logger, err, "publish marks")
	}

	return utils.SendSuccess(c, "marks published", result)
}
