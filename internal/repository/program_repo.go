package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assessment-api/internal/models"
)

// ProgramRepository defines persistence operations for programs.
type ProgramRepository interface {
	List(ctx context.Context) ([]models.Program, error)
	GetByID(ctx context.Context, id string) (models.Program, error)
	GetByName(ctx context.Context, name string) (models.Program, error)
	Create(ctx context.Context, program *models.Program) error
	Update(ctx context.Context, program *models.Program) error
	Delete(ctx context.Context, id string) error
}

type programRepository struct {
	db *gorm.DB
}

// NewProgramRepository instantiates a GORM-backed repository.
func NewProgramRepository(db *gorm.DB) ProgramRepository {
	return &programRepository{db: db}
}

func (r *programRepository) List(ctx context.Context) ([]models.Program, error) {
	var programs []models.Program
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&programs).Error; err != nil {
		return nil, err
	}

	return programs, nil
}

func (r *programRepository) GetByID(ctx context.Context, id string) (models.Program, error) {
	var program models.Program
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&program).Error; err != nil {
		return models.Program{}, err
	}

	return program, nil
}

func (r *programRepository) GetByName(ctx context.Context, name string) (models.Program, error) {
	var program models.Program
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&program).Error; err != nil {
		return models.Program{}, err
	}

	return program, nil
}

func (r *programRepository) Create(ctx context.Context, program *models.Program) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *programRepository) Update(ctx context.Context, program *models.Program) error {
	return r.db.WithContext(ctx).Save(program).Error
}

func (r *programRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Program{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
