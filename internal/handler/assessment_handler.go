package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assessment-api/internal/dto"
	"github.com/noah-isme/gema-assessment-api/internal/middleware"
	"github.com/noah-isme/gema-assessment-api/internal/service"
	"github.com/noah-isme/gema-assessment-api/internal/utils"
)

// AssessmentHandler exposes assessment management endpoints.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler constructs the handler.
func NewAssessmentHandler(service service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register attaches assessment routes to the router group.
func (h *AssessmentHandler) Register(router fiber.Router) {
	anyUser := middleware.AuthOptions{RequireUser: true}
	admin := middleware.AuthOptions{Role: middleware.AuthRoleAdmin}

	router.Get("", middleware.WithAuth(h.list, anyUser))
	router.Get("/:id", middleware.WithAuth(h.get, anyUser))
	router.Post("", middleware.WithAuth(h.create, admin))
	router.Put("/:id", middleware.WithAuth(h.update, admin))
	router.Delete("/:id", middleware.WithAuth(h.delete, admin))
	router.Post("/:id/files", middleware.WithAuth(h.attachFiles, admin))
	router.Post("/:id/lock", middleware.WithAuth(h.lock, admin))
	router.Post("/:id/unlock", middleware.WithAuth(h.unlock, admin))
}

func (h *AssessmentHandler) list(c *fiber.Ctx) error {
	assessments, err := h.service.List(c.UserContext(), c.Query("program_id"))
	if err != nil {
		return respondError(c, h.logger, err, "list assessments")
	}

	return utils.OK(c, assessments, "assessments retrieved", fiber.Map{"total": len(assessments)})
}

func (h *AssessmentHandler) get(c *fiber.Ctx) error {
	assessment, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "load assessment")
	}

	return utils.SendSuccess(c, "assessment retrieved", assessment)
}

func (h *AssessmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssessmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assessment, err := h.service.Create(c.UserContext(), payload, userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "create assessment")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assessment created", assessment)
}

func (h *AssessmentHandler) update(c *fiber.Ctx) error {
	var payload dto.AssessmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assessment, err := h.service.Update(c.UserContext(), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "update assessment")
	}

	return utils.SendSuccess(c, "assessment updated", assessment)
}

func (h *AssessmentHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "delete assessment")
	}

	return utils.SendSuccess(c, "assessment deleted", nil)
}

func (h *AssessmentHandler) attachFiles(c *fiber.Ctx) error {
	files, err := readUploads(c, "files")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid multipart payload")
	}

	assessment, err := h.service.AttachFiles(c.UserContext(), c.Params("id"), files)
	if err != nil {
		return respondError(c, h.logger, err, "attach files")
	}

	return utils.SendSuccess(c, "files attached", assessment)
}

func (h *AssessmentHandler) lock(c *fiber.Ctx) error {
	assessment, err := h.service.Lock(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "lock assessment")
	}

	return utils.SendSuccess(c, "assessment locked", assessment)
}

func (h *AssessmentHandler) unlock(c *fiber.Ctx) error {
	assessment, err := h.service.Unlock(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "unlock assessment")
	}

	return utils.SendSuccess(c, "assessment unlocked", assessment)
}
