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

// ProgramService manages academic programs.
type ProgramService interface {
	List(ctx context.Context) ([]dto.ProgramResponse, error)
	Get(ctx context.Context, id string) (dto.ProgramResponse, error)
	Create(ctx context.Context, payload dto.ProgramCreateRequest, createdBy string) (dto.ProgramResponse, error)
	Update(ctx context.Context, id string, payload dto.ProgramUpdateRequest) (dto.ProgramResponse, error)
	Delete(ctx context.Context, id string) error
}

type programService struct {
	repo      repository.ProgramRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProgramService builds a program service.
func NewProgramService(repo repository.ProgramRepository, validate *validator.Validate, logger zerolog.Logger) ProgramService {
	return &programService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "program_service").Logger(),
	}
}

func (s *programService) List(ctx context.Context) ([]dto.ProgramResponse, error) {
	programs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewProgramResponseSlice(programs), nil
}

func (s *programService) Get(ctx context.Context, id string) (dto.ProgramResponse, error) {
	program, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgramResponse{}, ErrProgramNotFound
		}
		return dto.ProgramResponse{}, err
	}

	return dto.NewProgramResponse(program), nil
}

func (s *programService) Create(ctx context.Context, payload dto.ProgramCreateRequest, createdBy string) (dto.ProgramResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProgramResponse{}, err
	}

	name := strings.TrimSpace(payload.Name)
	if err := s.ensureNameAvailable(ctx, name, ""); err != nil {
		return dto.ProgramResponse{}, err
	}

	program := models.Program{
		Name:            name,
		Years:           compactStrings(payload.Years),
		Specializations: compactStrings(payload.Specializations),
		CreatedBy:       createdBy,
	}
	if err := s.repo.Create(ctx, &program); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ProgramResponse{}, ErrProgramExists
		}
		return dto.ProgramResponse{}, err
	}

	s.logger.Info().Str("program_id", program.ID).Str("name", program.Name).Msg("program created")
	return dto.NewProgramResponse(program), nil
}

func (s *programService) Update(ctx context.Context, id string, payload dto.ProgramUpdateRequest) (dto.ProgramResponse, error) {
	program, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgramResponse{}, ErrProgramNotFound
		}
		return dto.ProgramResponse{}, err
	}
	if payload.IsEmpty() {
		return dto.ProgramResponse{}, newValidationError("", "no fields to update")
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProgramResponse{}, err
	}

	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name != program.Name {
			if err := s.ensureNameAvailable(ctx, name, program.ID); err != nil {
				return dto.ProgramResponse{}, err
			}
		}
		program.Name = name
	}
	if payload.Years != nil {
		program.Years = compactStrings(payload.Years)
	}
	if payload.Specializations != nil {
		program.Specializations = compactStrings(payload.Specializations)
	}

	if err := s.repo.Update(ctx, &program); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ProgramResponse{}, ErrProgramExists
		}
		return dto.ProgramResponse{}, err
	}

	return dto.NewProgramResponse(program), nil
}

func (s *programService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		return err
	}

	s.logger.Info().Str("program_id", id).Msg("program deleted")
	return nil
}

func (s *programService) ensureNameAvailable(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return ErrProgramExists
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return err
	}
}
