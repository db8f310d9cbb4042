package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assessment-api/internal/config"
	"github.com/noah-isme/gema-assessment-api/internal/handler"
	"github.com/noah-isme/gema-assessment-api/internal/models"
	"github.com/noah-isme/gema-assessment-api/internal/repository"
	"github.com/noah-isme/gema-assessment-api/internal/router"
	"github.com/noah-isme/gema-assessment-api/internal/service"
	"github.com/noah-isme/gema-assessment-api/pkg/blob"
)

type caller struct {
	id   string
	role string
}

var (
	adminCaller = caller{id: "admin-1", role: "admin"}
	anonymous   = caller{}
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
	Message string          `json:"message"`
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Program{}, &models.Student{}, &models.Assessment{}, &models.Submission{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	storage := blob.NewPlaceholder(logger)
	opts := service.UploadOptions{MaxSizeMB: 1, Concurrency: 2}

	programRepo := repository.NewProgramRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	files := service.NewFileResolver(storage, time.Hour, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		ProgramHandler:    handler.NewProgramHandler(service.NewProgramService(programRepo, validate, logger), logger),
		StudentHandler:    handler.NewStudentHandler(service.NewStudentService(studentRepo, programRepo, assessmentRepo, nil, validate, logger), logger),
		AssessmentHandler: handler.NewAssessmentHandler(service.NewAssessmentService(assessmentRepo, programRepo, submissionRepo, storage, files, validate, opts, logger), logger),
		SubmissionHandler: handler.NewSubmissionHandler(service.NewSubmissionService(assessmentRepo, submissionRepo, studentRepo, storage, files, nil, validate, opts, logger), nil, logger),
		GradingHandler:    handler.NewGradingHandler(service.NewGradingService(assessmentRepo, submissionRepo, files, nil, validate, logger), logger),
		ReportHandler:     handler.NewReportHandler(service.NewReportService(programRepo, assessmentRepo, studentRepo, submissionRepo, files, 24*time.Hour, logger), logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			if id := c.Get("X-Test-User"); id != "" {
				c.Locals("user_id", id)
				c.Locals("user_role", c.Get("X-Test-Role"))
			}
			return c.Next()
		},
	})

	return app
}

func send(t *testing.T, app *fiber.App, who caller, method, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if who.id != "" {
		req.Header.Set("X-Test-User", who.id)
		req.Header.Set("X-Test-Role", who.role)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func sendJSON(t *testing.T, app *fiber.App, who caller, method, path string, payload interface{}) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	return send(t, app, who, method, path, body, fiber.MIMEApplicationJSON)
}

func decodeEnvelope(t *testing.T, resp *http.Response, data interface{}) envelope {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

type multipartFile struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...multipartFile) (io.Reader, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, file := range files {
		part, err := writer.CreateFormFile("files", file.name)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}
