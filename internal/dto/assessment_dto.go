package dto

import (
	"time"

	"github.com/noah-isme/gema-assessment-api/internal/models"
)

// AssessmentCreateRequest describes the payload for creating an assessment. Instants
// without a zone offset are read as UTC.
type AssessmentCreateRequest struct {
	ProgramID   string   `json:"program_id" validate:"required"`
	Title       string   `json:"title" validate:"required,min=3,max=255"`
	Description string   `json:"description" validate:"omitempty,max=10000"`
	StartAt     string   `json:"start_at" validate:"required"`
	Deadline    string   `json:"deadline" validate:"required"`
	MaxMarks    *float64 `json:"max_marks" validate:"omitempty,gte=0"`
}

// AssessmentUpdateRequest carries a partial update. Nil fields are left untouched.
type AssessmentUpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=10000"`
	StartAt     *string  `json:"start_at"`
	Deadline    *string  `json:"deadline"`
	MaxMarks    *float64 `json:"max_marks" validate:"omitempty,gte=0"`
}

// IsEmpty reports whether the update carries no fields.
func (r AssessmentUpdateRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.StartAt == nil && r.Deadline == nil && r.MaxMarks == nil
}

// FileResponse is a downloadable file reference.
type FileResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// NewFileResponses converts stored files into their client representation.
func NewFileResponses(files []models.StoredFile) []FileResponse {
	responses := make([]FileResponse, 0, len(files))
	for _, file := range files {
		responses = append(responses, FileResponse{Name: file.Name, URL: file.URL})
	}

	return responses
}

// AssessmentResponse is the serialized representation returned to API clients.
type AssessmentResponse struct {
	ID            string                  `json:"id"`
	ProgramID     string                  `json:"program_id"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	StartAt       time.Time               `json:"start_at"`
	Deadline      time.Time               `json:"deadline"`
	MaxMarks      *float64                `json:"max_marks"`
	IsLocked      bool                    `json:"is_locked"`
	Status        models.AssessmentStatus `json:"status"`
	AttachedFiles []FileResponse          `json:"attached_files"`
	CreatedBy     string                  `json:"created_by"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// NewAssessmentResponse converts a model into a DTO. Attached files are expected to
// be resolved already.
func NewAssessmentResponse(model models.Assessment, status models.AssessmentStatus) AssessmentResponse {
	return AssessmentResponse{
		ID:            model.ID,
		ProgramID:     model.ProgramID,
		Title:         model.Title,
		Description:   model.Description,
		StartAt:       model.StartAt.In(models.ReferenceZone),
		Deadline:      model.Deadline.In(models.ReferenceZone),
		MaxMarks:      model.MaxMarks,
		IsLocked:      model.IsLocked,
		Status:        status,
		AttachedFiles: NewFileResponses(model.AttachedFiles),
		CreatedBy:     model.CreatedBy,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
