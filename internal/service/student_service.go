package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assessment-api/internal/dto"
	"github.com/noah-isme/gema-assessment-api/internal/models"
	"github.com/noah-isme/gema-assessment-api/internal/repository"
)

// StudentService manages program rosters.
type StudentService interface {
	Enrol(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	ListByProgram(ctx context.Context, programID string) ([]dto.StudentResponse, error)
}

type studentService struct {
	students    repository.StudentRepository
	programs    repository.ProgramRepository
	assessments repository.AssessmentRepository
	cache       RosterCache
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewStudentService constructs a student service. Enrolment invalidates the cached
// rosters of the program's assessments.
func NewStudentService(
	students repository.StudentRepository,
	programs repository.ProgramRepository,
	assessments repository.AssessmentRepository,
	cache RosterCache,
	validate *validator.Validate,
	logger zerolog.Logger,
) StudentService {
	if cache == nil {
		cache = noopRosterCache{}
	}
	return &studentService{
		students:    students,
		programs:    programs,
		assessments: assessments,
		cache:       cache,
		validator:   validate,
		logger:      logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Enrol(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	if _, err := s.programs.GetByID(ctx, payload.ProgramID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrProgramNotFound
		}
		return dto.StudentResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, err := s.students.GetByEmail(ctx, email); err == nil {
		return dto.StudentResponse{}, ErrStudentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.StudentResponse{}, err
	}

	student := models.Student{
		Name:           strings.TrimSpace(payload.Name),
		RollNumber:     strings.TrimSpace(payload.RollNumber),
		Email:          email,
		ProgramID:      payload.ProgramID,
		Specialization: strings.TrimSpace(payload.Specialization),
		Year:           strings.TrimSpace(payload.Year),
	}
	if err := s.students.Create(ctx, &student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentResponse{}, ErrStudentExists
		}
		return dto.StudentResponse{}, err
	}

	s.invalidateRosters(ctx, student.ProgramID)

	s.logger.Info().Str("student_id", student.ID).Str("program_id", student.ProgramID).Msg("student enrolled")
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) invalidateRosters(ctx context.Context, programID string) {
	if _, ok := s.cache.(noopRosterCache); ok {
		return
	}
	assessments, err := s.assessments.List(ctx, repository.AssessmentFilter{ProgramID: programID})
	if err != nil {
		s.logger.Warn().Err(err).Str("program_id", programID).Msg("failed to list assessments for roster invalidation")
		return
	}
	for _, assessment := range assessments {
		s.cache.Invalidate(ctx, assessment.ID)
	}
}

func (s *studentService) ListByProgram(ctx context.Context, programID string) ([]dto.StudentResponse, error) {
	if _, err := s.programs.GetByID(ctx, programID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	students, err := s.students.ListByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}
