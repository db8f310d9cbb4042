package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assessment-api/internal/dto"
	"github.com/noah-isme/gema-assessment-api/internal/middleware"
	"github.com/noah-isme/gema-assessment-api/internal/service"
	"github.com/noah-isme/gema-assessment-api/internal/utils"
)

// SubmissionHandler manages submission endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	limiter fiber.Handler
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler. A nil limiter disables rate
// limiting of new submissions.
func NewSubmissionHandler(service service.SubmissionService, limiter fiber.Handler, logger zerolog.Logger) *SubmissionHandler {
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &SubmissionHandler{
		service: service,
		limiter: limiter,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	student := middleware.AuthOptions{Role: middleware.AuthRoleStudent}

	router.Post("", h.limiter, middleware.WithAuth(h.submit, student))
	router.Get("/my", middleware.WithAuth(h.getMine, student))
	router.Get("/mine", middleware.WithAuth(h.listMine, student))
	router.Get("/roster/:assessmentId", middleware.WithAuth(h.roster, middleware.AuthOptions{Role: middleware.AuthRoleAdmin}))
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	payload, err := h.parseSubmission(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	files, err := readUploads(c, "files")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid multipart payload")
	}

	submission, err := h.service.Submit(c.UserContext(), userIDFromContext(c), payload, files)
	if err != nil {
		return respondError(c, h.logger, err, "store submission")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission received", submission)
}

// parseSubmission reads form fields for multipart requests and the JSON body otherwise.
func (h *SubmissionHandler) parseSubmission(c *fiber.Ctx) (dto.SubmissionCreateRequest, error) {
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		var payload dto.SubmissionCreateRequest
		if err := c.BodyParser(&payload); err != nil {
			return dto.SubmissionCreateRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		return payload, nil
	}

	urls, err := parseURLList(c.FormValue("urls"))
	if err != nil {
		return dto.SubmissionCreateRequest{}, err
	}

	return dto.SubmissionCreateRequest{
		AssessmentID: strings.TrimSpace(c.FormValue("assessment_id")),
		TextAnswer:   c.FormValue("text_answer"),
		URLs:         urls,
	}, nil
}

func (h *SubmissionHandler) getMine(c *fiber.Ctx) error {
	assessmentID := strings.TrimSpace(c.Query("assessment_id"))
	if assessmentID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "assessment_id is required")
	}

	mine, err := h.service.GetMine(c.UserContext(), assessmentID, userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "load submission")
	}

	return utils.SendSuccess(c, "submission retrieved", mine)
}

func (h *SubmissionHandler) listMine(c *fiber.Ctx) error {
	results, err := h.service.ListMine(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "list submissions")
	}

	return utils.OK(c, results, "submissions retrieved", fiber.Map{"total": len(results)})
}

func (h *SubmissionHandler) roster(c *fiber.Ctx) error {
	roster, err := h.service.Roster(c.UserContext(), c.Params("assessmentId"))
	if err != nil {
		return respondError(c, h.logger, err, "load roster")
	}

	return utils.SendSuccess(c, "roster retrieved", roster)
}
