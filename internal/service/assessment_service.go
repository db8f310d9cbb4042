package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assessment-api/internal/dto"
	"github.com/noah-isme/gema-assessment-api/internal/models"
	"github.com/noah-isme/gema-assessment-api/internal/repository"
	"github.com/noah-isme/gema-assessment-api/pkg/blob"
)

// AssessmentService exposes assessment management use cases.
type AssessmentService interface {
	List(ctx context.Context, programID string) ([]dto.AssessmentResponse, error)
	Get(ctx context.Context, id string) (dto.AssessmentResponse, error)
	Create(ctx context.Context, payload dto.AssessmentCreateRequest, createdBy string) (dto.AssessmentResponse, error)
	Update(ctx context.Context, id string, payload dto.AssessmentUpdateRequest) (dto.AssessmentResponse, error)
	AttachFiles(ctx context.Context, id string, files []FileUpload) (dto.AssessmentResponse, error)
	Lock(ctx context.Context, id string) (dto.AssessmentResponse, error)
	Unlock(ctx context.Context, id string) (dto.AssessmentResponse, error)
	Delete(ctx context.Context, id string) error
}

type assessmentService struct {
	assessments repository.AssessmentRepository
	programs    repository.ProgramRepository
	submissions repository.SubmissionRepository
	uploader    *batchUploader
	files       *FileResolver
	validator   *validator.Validate
	policy      *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssessmentService builds the assessment service.
func NewAssessmentService(
	assessments repository.AssessmentRepository,
	programs repository.ProgramRepository,
	submissions repository.SubmissionRepository,
	storage blob.Storage,
	files *FileResolver,
	validate *validator.Validate,
	opts UploadOptions,
	logger zerolog.Logger,
) AssessmentService {
	serviceLogger := logger.With().Str("component", "assessment_service").Logger()
	return &assessmentService{
		assessments: assessments,
		programs:    programs,
		submissions: submissions,
		uploader:    newBatchUploader(storage, opts, serviceLogger),
		files:       files,
		validator:   validate,
		policy:      bluemonday.UGCPolicy(),
		logger:      serviceLogger,
		now:         time.Now,
	}
}

func (s *assessmentService) List(ctx context.Context, programID string) ([]dto.AssessmentResponse, error) {
	assessments, err := s.assessments.List(ctx, repository.AssessmentFilter{ProgramID: strings.TrimSpace(programID)})
	if err != nil {
		return nil, err
	}

	now := s.now()
	responses := make([]dto.AssessmentResponse, 0, len(assessments))
	for _, assessment := range assessments {
		responses = append(responses, s.toResponse(ctx, assessment, now))
	}

	return responses, nil
}

func (s *assessmentService) Get(ctx context.Context, id string) (dto.AssessmentResponse, error) {
	assessment, err := s.load(ctx, id)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	return s.toResponse(ctx, assessment, s.now()), nil
}

func (s *assessmentService) Create(ctx context.Context, payload dto.AssessmentCreateRequest, createdBy string) (dto.AssessmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, err
	}

	startAt, err := models.ParseInstant(payload.StartAt)
	if err != nil {
		return dto.AssessmentResponse{}, newValidationError("start_at", "must be a valid date-time")
	}
	deadline, err := models.ParseInstant(payload.Deadline)
	if err != nil {
		return dto.AssessmentResponse{}, newValidationError("deadline", "must be a valid date-time")
	}
	if !deadline.After(startAt) {
		return dto.AssessmentResponse{}, newValidationError("deadline", "must be after start_at")
	}

	programID := strings.TrimSpace(payload.ProgramID)
	if _, err := s.programs.GetByID(ctx, programID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, newValidationError("program_id", "program does not exist")
		}
		return dto.AssessmentResponse{}, err
	}

	assessment := models.Assessment{
		ProgramID:   programID,
		Title:       strings.TrimSpace(payload.Title),
		Description: sanitizeText(s.policy, payload.Description),
		StartAt:     startAt,
		Deadline:    deadline,
		MaxMarks:    payload.MaxMarks,
		CreatedBy:   createdBy,
	}

	if err := s.assessments.Create(ctx, &assessment); err != nil {
		return dto.AssessmentResponse{}, err
	}

	s.logger.Info().
		Str("assessment_id", assessment.ID).
		Str("program_id", assessment.ProgramID).
		Msg("assessment created")

	return s.toResponse(ctx, assessment, s.now()), nil
}

// Update merges the provided fields. The start/deadline ordering is only enforced at
// creation.
func (s *assessmentService) Update(ctx context.Context, id string, payload dto.AssessmentUpdateRequest) (dto.AssessmentResponse, error) {
	assessment, err := s.load(ctx, id)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}
	if assessment.IsLocked {
		return dto.AssessmentResponse{}, ErrAssessmentLocked
	}
	if payload.IsEmpty() {
		return dto.AssessmentResponse{}, newValidationError("", "no fields to update")
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, err
	}

	if payload.Title != nil {
		assessment.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		assessment.Description = sanitizeText(s.policy, *payload.Description)
	}
	if payload.StartAt != nil {
		startAt, err := models.ParseInstant(*payload.StartAt)
		if err != nil {
			return dto.AssessmentResponse{}, newValidationError("start_at", "must be a valid date-time")
		}
		assessment.StartAt = startAt
	}
	if payload.Deadline != nil {
		deadline, err := models.ParseInstant(*payload.Deadline)
		if err != nil {
			return dto.AssessmentResponse{}, newValidationError("deadline", "must be a valid date-time")
		}
		assessment.Deadline = deadline
	}
	if payload.MaxMarks != nil {
		maxMarks := *payload.MaxMarks
		assessment.MaxMarks = &maxMarks
	}

	if err := s.assessments.Update(ctx, &assessment); err != nil {
		return dto.AssessmentResponse{}, s.translate(err)
	}

	s.logger.Info().Str("assessment_id", assessment.ID).Msg("assessment updated")

	return s.toResponse(ctx, assessment, s.now()), nil
}

// AttachFiles uploads every file and appends them in one write. Nothing is recorded
// when any upload fails.
func (s *assessmentService) AttachFiles(ctx context.Context, id string, files []FileUpload) (dto.AssessmentResponse, error) {
	assessment, err := s.load(ctx, id)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}
	if assessment.IsLocked {
		return dto.AssessmentResponse{}, ErrAssessmentLocked
	}
	if len(files) == 0 {
		return dto.AssessmentResponse{}, newValidationError("files", "at least one file is required")
	}

	stored, err := s.uploader.uploadAll(ctx, "assessment", blob.JoinPath("assessments", assessment.ID), files, true)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	updated, err := s.assessments.AppendFiles(ctx, assessment.ID, stored)
	if err != nil {
		return dto.AssessmentResponse{}, s.translate(err)
	}

	s.logger.Info().
		Str("assessment_id", assessment.ID).
		Int("files", len(stored)).
		Msg("assessment files attached")

	return s.toResponse(ctx, updated, s.now()), nil
}

func (s *assessmentService) Lock(ctx context.Context, id string) (dto.AssessmentResponse, error) {
	return s.setLocked(ctx, id, true)
}

func (s *assessmentService) Unlock(ctx context.Context, id string) (dto.AssessmentResponse, error) {
	return s.setLocked(ctx, id, false)
}

func (s *assessmentService) setLocked(ctx context.Context, id string, locked bool) (dto.AssessmentResponse, error) {
	if err := s.assessments.SetLocked(ctx, id, locked); err != nil {
		return dto.AssessmentResponse{}, s.translate(err)
	}

	assessment, err := s.load(ctx, id)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	s.logger.Info().Str("assessment_id", id).Bool("locked", locked).Msg("assessment lock changed")

	return s.toResponse(ctx, assessment, s.now()), nil
}

// Delete removes an unlocked assessment together with its submissions.
func (s *assessmentService) Delete(ctx context.Context, id string) error {
	assessment, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if assessment.IsLocked {
		return ErrAssessmentLocked
	}

	if err := s.submissions.DeleteByAssessment(ctx, assessment.ID); err != nil {
		s.logger.Error().Err(err).Str("assessment_id", assessment.ID).Msg("failed to delete assessment submissions")
		return err
	}
	if err := s.assessments.Delete(ctx, assessment.ID); err != nil {
		return s.translate(err)
	}

	s.logger.Info().Str("assessment_id", assessment.ID).Msg("assessment deleted")
	return nil
}

func (s *assessmentService) load(ctx context.Context, id string) (models.Assessment, error) {
	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assessment{}, ErrAssessmentNotFound
		}
		return models.Assessment{}, err
	}
	return assessment, nil
}

func (s *assessmentService) translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrAssessmentNotFound
	case errors.Is(err, repository.ErrLocked):
		return ErrAssessmentLocked
	default:
		return err
	}
}

func (s *assessmentService) toResponse(ctx context.Context, assessment models.Assessment, now time.Time) dto.AssessmentResponse {
	assessment.AttachedFiles = s.files.Resolve(ctx, assessment.AttachedFiles)
	return dto.NewAssessmentResponse(assessment, assessment.StatusAt(now))
}
