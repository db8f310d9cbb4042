package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assessment-api/internal/service"
)

// ReportHandler streams Excel exports.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches export routes to the router group.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/program/:programId/assessment/:assessmentId", h.assessment)
	router.Get("/all", h.combined)
}

func (h *ReportHandler) assessment(c *fiber.Ctx) error {
	file, err := h.service.AssessmentReport(c.UserContext(), c.Params("programId"), c.Params("assessmentId"))
	if err != nil {
		return respondError(c, h.logger, err, "compile report")
	}

	return sendReport(c, file)
}

func (h *ReportHandler) combined(c *fiber.Ctx) error {
	file, err := h.service.CombinedReport(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "compile report")
	}

	return sendReport(c, file)
}

func sendReport(c *fiber.Ctx, file service.ReportFile) error {
	c.Attachment(file.Filename)
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Status(fiber.StatusOK).Send(file.Content)
}
