package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
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
)

// GradingService applies marks to submissions and publishes results.
type GradingService interface {
	SetMarks(ctx context.Context, submissionID string, payload dto.SetMarksRequest) (dto.SubmissionResponse, error)
	BulkSetMarks(ctx context.Context, payload dto.BulkSetMarksRequest) (dto.BulkSetMarksResponse, error)
	Publish(ctx context.Context, assessmentID string) (dto.PublishResponse, error)
}

type gradingService struct {
	assessments repository.AssessmentRepository
	submissions repository.SubmissionRepository
	files       *FileResolver
	cache       RosterCache
	validator   *validator.Validate
	policy      *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewGradingService constructs the grading service.
func NewGradingService(
	assessments repository.AssessmentRepository,
	submissions repository.SubmissionRepository,
	files *FileResolver,
	cache RosterCache,
	validate *validator.Validate,
	logger zerolog.Logger,
) GradingService {
	if cache == nil {
		cache = noopRosterCache{}
	}
	return &gradingService{
		assessments: assessments,
		submissions: submissions,
		files:       files,
		cache:       cache,
		validator:   validate,
		policy:      bluemonday.UGCPolicy(),
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/gema-assessment-api/internal/service/grading"),
	}
}

// SetMarks grades one submission. Marks above the ceiling are rejected, never clamped.
func (s *gradingService) SetMarks(ctx context.Context, submissionID string, payload dto.SetMarksRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.set_marks")
	span.SetAttributes(attribute.String("grading.submission_id", submissionID))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		observability.GradingOutcomes().WithLabelValues("set", "rejected").Inc()
		return dto.SubmissionResponse{}, err
	}
	marks := *payload.Marks
	if err := checkMarksValue(marks); err != nil {
		span.SetStatus(codes.Error, "invalid_marks")
		observability.GradingOutcomes().WithLabelValues("set", "rejected").Inc()
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, submission.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "assessment_not_found")
			return dto.SubmissionResponse{}, ErrAssessmentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "assessment_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	if err := checkCeiling(assessment, marks); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exceeds_max_marks")
		observability.GradingOutcomes().WithLabelValues("set", "rejected").Inc()
		return dto.SubmissionResponse{}, err
	}

	feedback := s.feedback(payload.Feedback)
	if err := s.submissions.UpdateMarks(ctx, submission.ID, marks, feedback); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}
	s.cache.Invalidate(ctx, submission.AssessmentID)

	submission.Marks = &marks
	submission.Feedback = &feedback
	observability.GradingOutcomes().WithLabelValues("set", "applied").Inc()
	span.SetAttributes(attribute.Float64("grading.marks", marks))

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("assessment_id", submission.AssessmentID).
		Float64("marks", marks).
		Msg("marks set")

	submission.Files = s.files.Resolve(ctx, submission.Files)
	return dto.NewSubmissionResponse(submission), nil
}

// BulkSetMarks applies every valid item independently. A failing item is reported and
// does not undo the others.
func (s *gradingService) BulkSetMarks(ctx context.Context, payload dto.BulkSetMarksRequest) (dto.BulkSetMarksResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.bulk_set_marks")
	span.SetAttributes(
		attribute.String("grading.assessment_id", payload.AssessmentID),
		attribute.Int("grading.items", len(payload.Items)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.BulkSetMarksResponse{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, payload.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "assessment_not_found")
			return dto.BulkSetMarksResponse{}, ErrAssessmentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "assessment_lookup_failed")
		return dto.BulkSetMarksResponse{}, err
	}

	result := dto.BulkSetMarksResponse{Skipped: []dto.BulkSkippedItem{}}
	for _, item := range payload.Items {
		skipped := s.applyItem(ctx, assessment, item)
		if skipped != nil {
			result.Skipped = append(result.Skipped, *skipped)
			observability.GradingOutcomes().WithLabelValues("bulk", "skipped").Inc()
			continue
		}
		result.Applied++
		observability.GradingOutcomes().WithLabelValues("bulk", "applied").Inc()
	}

	if result.Applied > 0 {
		s.cache.Invalidate(ctx, assessment.ID)
	}

	span.SetAttributes(
		attribute.Int("grading.applied", result.Applied),
		attribute.Int("grading.skipped", len(result.Skipped)),
	)
	s.logger.Info().
		Str("assessment_id", assessment.ID).
		Int("applied", result.Applied).
		Int("skipped", len(result.Skipped)).
		Msg("bulk marks applied")

	return result, nil
}

func (s *gradingService) applyItem(ctx context.Context, assessment models.Assessment, item dto.BulkMarksItem) *dto.BulkSkippedItem {
	skip := func(reason, message string) *dto.BulkSkippedItem {
		return &dto.BulkSkippedItem{SubmissionID: item.SubmissionID, Reason: reason, Message: message}
	}

	if strings.TrimSpace(item.SubmissionID) == "" {
		return skip(dto.SkipReasonSubmissionNotFound, "submission id is required")
	}

	submission, err := s.submissions.GetByID(ctx, item.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return skip(dto.SkipReasonSubmissionNotFound, ErrSubmissionNotFound.Error())
		}
		s.logger.Error().Err(err).Str("submission_id", item.SubmissionID).Msg("bulk marks lookup failed")
		return skip(dto.SkipReasonUpdateFailed, "submission lookup failed")
	}
	if submission.AssessmentID != assessment.ID {
		return skip(dto.SkipReasonSubmissionNotFound, "submission does not belong to this assessment")
	}

	if item.Marks == nil {
		return skip(dto.SkipReasonInvalidMarks, "marks is required")
	}
	marks := *item.Marks
	if err := checkMarksValue(marks); err != nil {
		return skip(dto.SkipReasonInvalidMarks, err.Error())
	}
	if err := checkCeiling(assessment, marks); err != nil {
		return skip(dto.SkipReasonExceedsMaxMarks, err.Error())
	}

	if err := s.submissions.UpdateMarks(ctx, submission.ID, marks, s.feedback(item.Feedback)); err != nil {
		s.logger.Error().Err(err).Str("submission_id", submission.ID).Msg("bulk marks update failed")
		return skip(dto.SkipReasonUpdateFailed, "failed to store marks")
	}

	return nil
}

// Publish releases marks for every submission of the assessment, graded or not, and
// returns how many submissions changed state.
func (s *gradingService) Publish(ctx context.Context, assessmentID string) (dto.PublishResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.publish")
	span.SetAttributes(attribute.String("grading.assessment_id", assessmentID))
	defer span.End()

	if _, err := s.assessments.GetByID(ctx, assessmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "assessment_not_found")
			return dto.PublishResponse{}, ErrAssessmentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "assessment_lookup_failed")
		return dto.PublishResponse{}, err
	}

	count, err := s.submissions.PublishByAssessment(ctx, assessmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish_failed")
		return dto.PublishResponse{}, err
	}
	if count > 0 {
		s.cache.Invalidate(ctx, assessmentID)
	}

	observability.GradingOutcomes().WithLabelValues("publish", "applied").Add(float64(count))
	span.SetAttributes(attribute.Int64("grading.published", count))
	s.logger.Info().Str("assessment_id", assessmentID).Int64("published", count).Msg("marks published")

	return dto.PublishResponse{AssessmentID: assessmentID, Published: count}, nil
}

func (s *gradingService) feedback(value *string) string {
	if value == nil {
		return ""
	}
	return sanitizeText(s.policy, *value)
}

func checkMarksValue(marks float64) error {
	if math.IsNaN(marks) || math.IsInf(marks, 0) {
		return newValidationError("marks", "must be a finite number")
	}
	if marks < 0 {
		return newValidationError("marks", "must not be negative")
	}
	return nil
}

func checkCeiling(assessment models.Assessment, marks float64) error {
	if assessment.ExceedsMaxMarks(marks) {
		return &MarksExceedMaxError{Marks: marks, MaxMarks: *assessment.MaxMarks}
	}
	return nil
}
