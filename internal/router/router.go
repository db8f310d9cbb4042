package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-assessment-api/internal/config"
	"github.com/noah-isme/gema-assessment-api/internal/handler"
	"github.com/noah-isme/gema-assessment-api/internal/middleware"
	"github.com/noah-isme/gema-assessment-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProgramHandler    *handler.ProgramHandler
	StudentHandler    *handler.StudentHandler
	AssessmentHandler *handler.AssessmentHandler
	SubmissionHandler *handler.SubmissionHandler
	GradingHandler    *handler.GradingHandler
	ReportHandler     *handler.ReportHandler
	JWTMiddleware     fiber.Handler
}

var graderRoles = []string{middleware.AuthRoleAdmin, "teacher"}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	secured := app.Group("/api/v1", jwtMiddleware)

	if deps.ProgramHandler != nil {
		deps.ProgramHandler.Register(secured.Group("/programs"))
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(secured)
	}
	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.Register(secured.Group("/assessments"))
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(secured.Group("/submissions"))
	}
	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(secured.Group("/marks", middleware.RequireRole(graderRoles...)))
	}
	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(secured.Group("/export", middleware.RequireRole(graderRoles...)))
	}
}
