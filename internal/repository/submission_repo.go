package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assessment-api/internal/models"
)

// SubmissionRepository defines persistence operations for submissions.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id string) (models.Submission, error)
	FindByAssessmentAndStudent(ctx context.Context, assessmentID, studentID string) (models.Submission, error)
	ListByAssessment(ctx context.Context, assessmentID string) ([]models.Submission, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	UpdateMarks(ctx context.Context, id string, marks float64, feedback string) error
	PublishByAssessment(ctx context.Context, assessmentID string) (int64, error)
	DeleteByAssessment(ctx context.Context, assessmentID string) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository constructs a submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) FindByAssessmentAndStudent(ctx context.Context, assessmentID, studentID string) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("assessment_id = ? AND student_id = ?", assessmentID, studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByAssessment(ctx context.Context, assessmentID string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("submitted_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// Update replaces the answer fields of a resubmission. Grading columns are untouched.
func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", submission.ID).
		Updates(map[string]interface{}{
			"files":        submission.Files,
			"urls":         submission.URLs,
			"text_answer":  submission.TextAnswer,
			"submitted_at": submission.SubmittedAt,
			"is_late":      submission.IsLate,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *submissionRepository) UpdateMarks(ctx context.Context, id string, marks float64, feedback string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"marks":      marks,
			"feedback":   feedback,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PublishByAssessment flips unpublished submissions and returns how many changed.
func (r *submissionRepository) PublishByAssessment(ctx context.Context, assessmentID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("assessment_id = ? AND marks_published = ?", assessmentID, false).
		Updates(map[string]interface{}{
			"marks_published": true,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *submissionRepository) DeleteByAssessment(ctx context.Context, assessmentID string) error {
	return r.db.WithContext(ctx).Where("assessment_id = ?", assessmentID).Delete(&models.Submission{}).Error
}
