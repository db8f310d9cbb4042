package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assessment-api/internal/dto"
	"github.com/noah-isme/gema-assessment-api/internal/middleware"
	"github.com/noah-isme/gema-assessment-api/internal/service"
	"github.com/noah-isme/gema-assessment-api/internal/utils"
)

// ProgramHandler exposes program endpoints.
type ProgramHandler struct {
	service service.ProgramService
	logger  zerolog.Logger
}

// NewProgramHandler constructs the handler.
func NewProgramHandler(service service.ProgramService, logger zerolog.Logger) *ProgramHandler {
	return &ProgramHandler{
		service: service,
		logger:  logger.With().Str("component", "program_handler").Logger(),
	}
}

// Register attaches program routes. Reads are open to any authenticated caller.
func (h *ProgramHandler) Register(router fiber.Router) {
	admin := middleware.AuthOptions{Role: middleware.AuthRoleAdmin}

	router.Get("", middleware.WithAuth(h.list, middleware.AuthOptions{RequireUser: true}))
	router.Get("/:id", middleware.WithAuth(h.get, middleware.AuthOptions{RequireUser: true}))
	router.Post("", middleware.WithAuth(h.create, admin))
	router.Put("/:id", middleware.WithAuth(h.update, admin))
	router.Delete("/:id", middleware.WithAuth(h.delete, admin))
}

func (h *ProgramHandler) list(c *fiber.Ctx) error {
	programs, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "list programs")
	}

	return utils.SendSuccess(c, "programs retrieved", programs)
}

func (h *ProgramHandler) get(c *fiber.Ctx) error {
	program, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "load program")
	}

	return utils.SendSuccess(c, "program retrieved", program)
}

func (h *ProgramHandler) create(c *fiber.Ctx) error {
	var payload dto.ProgramCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	program, err := h.service.Create(c.UserContext(), payload, userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "create program")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "program created", program)
}

func (h *ProgramHandler) update(c *fiber.Ctx) error {
	var payload dto.ProgramUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	program, err := h.service.Update(c.UserContext(), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "update program")
	}

	return utils.SendSuccess(c, "program updated", program)
}

func (h *ProgramHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "delete program")
	}

	return utils.SendSuccess(c, "program deleted", nil)
}
