package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assessment-api/internal/dto"
	"github.com/noah-isme/gema-assessment-api/internal/models"
	"github.com/noah-isme/gema-assessment-api/internal/observability"
	"github.com/noah-isme/gema-assessment-api/internal/repository"
	"github.com/noah-isme/gema-assessment-api/pkg/blob"
)

// SubmissionService handles student submissions and the admin roster view.
type SubmissionService interface {
	Submit(ctx context.Context, studentID string, payload dto.SubmissionCreateRequest, files []FileUpload) (dto.SubmissionResponse, error)
	GetMine(ctx context.Context, assessmentID, studentID string) (dto.MySubmissionResponse, error)
	ListMine(ctx context.Context, studentID string) ([]dto.StudentResultResponse, error)
	Roster(ctx context.Context, assessmentID string) (dto.RosterResponse, error)
}

type submissionService struct {
	assessments repository.AssessmentRepository
	submissions repository.SubmissionRepository
	students    repository.StudentRepository
	uploader    *batchUploader
	files       *FileResolver
	cache       RosterCache
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs the submission service. A nil cache disables roster
// caching.
func NewSubmissionService(
	assessments repository.AssessmentRepository,
	submissions repository.SubmissionRepository,
	students repository.StudentRepository,
	storage blob.Storage,
	files *FileResolver,
	cache RosterCache,
	validate *validator.Validate,
	opts UploadOptions,
	logger zerolog.Logger,
) SubmissionService {
	if cache == nil {
		cache = noopRosterCache{}
	}
	serviceLogger := logger.With().Str("component", "submission_service").Logger()
	return &submissionService{
		assessments: assessments,
		submissions: submissions,
		students:    students,
		uploader:    newBatchUploader(storage, opts, serviceLogger),
		files:       files,
		cache:       cache,
		validator:   validate,
		logger:      serviceLogger,
		tracer:      otel.Tracer("github.com/noah-isme/gema-assessment-api/internal/service/submission"),
		now:         time.Now,
	}
}

// Submit creates or replaces the student's submission. Lateness is fixed at the moment
// of each submission. Grading fields survive a resubmission, and stored files are only
// replaced when new files arrive.
func (s *submissionService) Submit(ctx context.Context, studentID string, payload dto.SubmissionCreateRequest, files []FileUpload) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.submit")
	span.SetAttributes(
		attribute.String("submission.assessment_id", payload.AssessmentID),
		attribute.String("submission.student_id", studentID),
		attribute.Int("submission.file_count", len(files)),
	)
	defer span.End()

	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		err := newValidationError("student_id", "student identity is required")
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}
	payload.URLs = compactStrings(payload.URLs)
	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, payload.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "assessment_not_found")
			return dto.SubmissionResponse{}, ErrAssessmentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "assessment_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	now := s.now()
	isLate := assessment.IsPastDue(now)

	uploaded, err := s.uploader.uploadAll(ctx, "submission", blob.JoinPath("submissions", studentID, assessment.ID), files, false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.upsert(ctx, assessment.ID, studentID, payload, uploaded, now, isLate)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence_failed")
		return dto.SubmissionResponse{}, err
	}

	s.cache.Invalidate(ctx, assessment.ID)

	timeliness := "on_time"
	if isLate {
		timeliness = "late"
	}
	observability.SubmissionsReceived().WithLabelValues(timeliness).Inc()
	span.SetAttributes(attribute.Bool("submission.is_late", isLate))

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("assessment_id", assessment.ID).
		Str("student_id", studentID).
		Bool("is_late", isLate).
		Msg("submission received")

	return s.toResponse(ctx, submission).Redacted(), nil
}

func (s *submissionService) upsert(ctx context.Context, assessmentID, studentID string, payload dto.SubmissionCreateRequest, uploaded []models.StoredFile, now time.Time, isLate bool) (models.Submission, error) {
	existing, err := s.submissions.FindByAssessmentAndStudent(ctx, assessmentID, studentID)
	switch {
	case err == nil:
		return s.replace(ctx, existing, payload, uploaded, now, isLate)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return models.Submission{}, err
	}

	submission := models.Submission{
		AssessmentID: assessmentID,
		StudentID:    studentID,
		Files:        uploaded,
		URLs:         payload.URLs,
		TextAnswer:   strings.TrimSpace(payload.TextAnswer),
		SubmittedAt:  now,
		IsLate:       isLate,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Submission{}, err
		}
		// A concurrent first submission won the insert.
		existing, findErr := s.submissions.FindByAssessmentAndStudent(ctx, assessmentID, studentID)
		if findErr != nil {
			return models.Submission{}, findErr
		}
		return s.replace(ctx, existing, payload, uploaded, now, isLate)
	}

	return submission, nil
}

func (s *submissionService) replace(ctx context.Context, existing models.Submission, payload dto.SubmissionCreateRequest, uploaded []models.StoredFile, now time.Time, isLate bool) (models.Submission, error) {
	existing.URLs = payload.URLs
	existing.TextAnswer = strings.TrimSpace(payload.TextAnswer)
	existing.SubmittedAt = now
	existing.IsLate = isLate
	if len(uploaded) > 0 {
		existing.Files = uploaded
	}

	if err := s.submissions.Update(ctx, &existing); err != nil {
		return models.Submission{}, err
	}
	return existing, nil
}

// GetMine never fails for a missing submission; it reports Submitted=false instead.
func (s *submissionService) GetMine(ctx context.Context, assessmentID, studentID string) (dto.MySubmissionResponse, error) {
	submission, err := s.submissions.FindByAssessmentAndStudent(ctx, assessmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MySubmissionResponse{Submitted: false}, nil
		}
		return dto.MySubmissionResponse{}, err
	}

	response := s.toResponse(ctx, submission).Redacted()
	return dto.MySubmissionResponse{Submitted: true, Submission: &response}, nil
}

func (s *submissionService) ListMine(ctx context.Context, studentID string) ([]dto.StudentResultResponse, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	assessments := make(map[string]models.Assessment)
	results := make([]dto.StudentResultResponse, 0, len(submissions))
	for _, submission := range submissions {
		assessment, ok := assessments[submission.AssessmentID]
		if !ok {
			loaded, err := s.assessments.GetByID(ctx, submission.AssessmentID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, err
			}
			assessment = loaded
			assessments[submission.AssessmentID] = loaded
		}

		results = append(results, dto.StudentResultResponse{
			AssessmentTitle:  assessment.Title,
			AssessmentStatus: assessment.StatusAt(now),
			MaxMarks:         assessment.MaxMarks,
			Submission:       s.toResponse(ctx, submission).Redacted(),
		})
	}

	return results, nil
}

// Roster lists every student of the assessment's program exactly once with their
// submission state.
func (s *submissionService) Roster(ctx context.Context, assessmentID string) (dto.RosterResponse, error) {
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RosterResponse{}, ErrAssessmentNotFound
		}
		return dto.RosterResponse{}, err
	}

	rows, ok := s.cache.Get(ctx, assessment.ID)
	if !ok {
		rows, err = s.loadRoster(ctx, assessment)
		if err != nil {
			return dto.RosterResponse{}, err
		}
		s.cache.Set(ctx, assessment.ID, rows)
	}

	response := dto.RosterResponse{
		AssessmentID: assessment.ID,
		Title:        assessment.Title,
		Status:       assessment.StatusAt(s.now()),
		Total:        len(rows),
		Entries:      make([]dto.RosterEntryResponse, 0, len(rows)),
	}
	for _, row := range rows {
		entry := dto.RosterEntryResponse{
			Student: dto.NewStudentResponse(row.Student),
			State:   models.SubmissionStateNotSubmitted,
		}
		if row.Submission != nil {
			submission := s.toResponse(ctx, *row.Submission)
			entry.State = row.Submission.State()
			entry.Submission = &submission
		}

		switch entry.State {
		case models.SubmissionStateSubmitted:
			response.Submitted++
		case models.SubmissionStateLate:
			response.Late++
		default:
			response.NotSubmitted++
		}
		response.Entries = append(response.Entries, entry)
	}

	return response, nil
}

func (s *submissionService) loadRoster(ctx context.Context, assessment models.Assessment) ([]RosterRow, error) {
	return joinRoster(ctx, s.students, s.submissions, assessment.ProgramID, assessment.ID)
}

func (s *submissionService) toResponse(ctx context.Context, submission models.Submission) dto.SubmissionResponse {
	submission.Files = s.files.Resolve(ctx, submission.Files)
	return dto.NewSubmissionResponse(submission)
}

// joinRoster left-joins the program roster with the assessment's submissions.
func joinRoster(ctx context.Context, students repository.StudentRepository, submissions repository.SubmissionRepository, programID, assessmentID string) ([]RosterRow, error) {
	roster, err := students.ListByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	items, err := submissions.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[string]models.Submission, len(items))
	for _, item := range items {
		byStudent[item.StudentID] = item
	}

	rows := make([]RosterRow, 0, len(roster))
	for _, student := range roster {
		row := RosterRow{Student: student}
		if submission, ok := byStudent[student.ID]; ok {
			submission := submission
			row.Submission = &submission
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func compactStrings(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
