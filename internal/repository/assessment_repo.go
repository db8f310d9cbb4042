package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assessment-api/internal/models"
)

// ErrLocked is returned when a guarded write hits a locked row.
var ErrLocked = errors.New("record is locked")

// AssessmentFilter narrows assessment listings.
type AssessmentFilter struct {
	ProgramID string
}

// AssessmentRepository defines persistence operations for assessments.
type AssessmentRepository interface {
	List(ctx context.Context, filter AssessmentFilter) ([]models.Assessment, error)
	GetByID(ctx context.Context, id string) (models.Assessment, error)
	Create(ctx context.Context, assessment *models.Assessment) error
	Update(ctx context.Context, assessment *models.Assessment) error
	SetLocked(ctx context.Context, id string, locked bool) error
	AppendFiles(ctx context.Context, id string, files []models.StoredFile) (models.Assessment, error)
	Delete(ctx context.Context, id string) error
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository instantiates a GORM-backed repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) List(ctx context.Context, filter AssessmentFilter) ([]models.Assessment, error) {
	query := r.db.WithContext(ctx).Model(&models.Assessment{})
	if filter.ProgramID != "" {
		query = query.Where("program_id = ?", filter.ProgramID)
	}

	var assessments []models.Assessment
	if err := query.Order("created_at DESC").Find(&assessments).Error; err != nil {
		return nil, err
	}

	return assessments, nil
}

func (r *assessmentRepository) GetByID(ctx context.Context, id string) (models.Assessment, error) {
	var assessment models.Assessment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&assessment).Error; err != nil {
		return models.Assessment{}, err
	}

	return assessment, nil
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	return r.db.WithContext(ctx).Create(assessment).Error
}

// Update writes the full row only while the assessment is unlocked.
func (r *assessmentRepository) Update(ctx context.Context, assessment *models.Assessment) error {
	result := r.db.WithContext(ctx).
		Model(&models.Assessment{}).
		Where("id = ? AND is_locked = ?", assessment.ID, false).
		Select("title", "description", "start_at", "deadline", "max_marks", "updated_at").
		Updates(map[string]interface{}{
			"title":       assessment.Title,
			"description": assessment.Description,
			"start_at":    assessment.StartAt,
			"deadline":    assessment.Deadline,
			"max_marks":   assessment.MaxMarks,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrLocked(ctx, assessment.ID)
	}
	return nil
}

func (r *assessmentRepository) SetLocked(ctx context.Context, id string, locked bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Assessment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_locked": locked, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AppendFiles appends the whole batch in a single guarded write.
func (r *assessmentRepository) AppendFiles(ctx context.Context, id string, files []models.StoredFile) (models.Assessment, error) {
	var updated models.Assessment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Assessment
		if err := tx.Where("id = ?", id).First(&current).Error; err != nil {
			return err
		}
		if current.IsLocked {
			return ErrLocked
		}

		merged := make([]models.StoredFile, 0, len(current.AttachedFiles)+len(files))
		merged = append(merged, current.AttachedFiles...)
		merged = append(merged, files...)

		result := tx.Model(&models.Assessment{}).
			Where("id = ? AND is_locked = ?", id, false).
			Updates(map[string]interface{}{
				"attached_files": datatypes.JSONSlice[models.StoredFile](merged),
				"updated_at":     time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrLocked
		}

		current.AttachedFiles = merged
		updated = current
		return nil
	})
	if err != nil {
		return models.Assessment{}, err
	}

	return updated, nil
}

func (r *assessmentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND is_locked = ?", id, false).Delete(&models.Assessment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrLocked(ctx, id)
	}
	return nil
}

func (r *assessmentRepository) missingOrLocked(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Assessment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrLocked
}
