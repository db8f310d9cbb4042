package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assessment-api/internal/models"
)

// StudentRepository provides access to enrolled student records.
type StudentRepository interface {
	GetByID(ctx context.Context, id string) (models.Student, error)
	GetByEmail(ctx context.Context, email string) (models.Student, error)
	ListByProgram(ctx context.Context, programID string) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) GetByEmail(ctx context.Context, email string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

// ListByProgram returns the program roster ordered by roll number.
func (r *studentRepository) ListByProgram(ctx context.Context, programID string) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("roll_number ASC").
		Order("name ASC").
		Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}
