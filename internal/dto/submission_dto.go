package dto

import (
	"time"

	"github.com/noah-isme/gema-assessment-api/internal/models"
)

// SubmissionCreateRequest describes a student submission. Files travel alongside as
// multipart parts.
type SubmissionCreateRequest struct {
	AssessmentID string   `json:"assessment_id" validate:"required"`
	TextAnswer   string   `json:"text_answer" validate:"omitempty,max=20000"`
	URLs         []string `json:"urls" validate:"omitempty,max=20,dive,url"`
}

// SubmissionResponse is the serialized representation of a submission.
type SubmissionResponse struct {
	ID             string                 `json:"id"`
	AssessmentID   string                 `json:"assessment_id"`
	StudentID      string                 `json:"student_id"`
	Files          []FileResponse         `json:"files"`
	URLs           []string               `json:"urls"`
	TextAnswer     string                 `json:"text_answer"`
	SubmittedAt    time.Time              `json:"submitted_at"`
	IsLate         bool                   `json:"is_late"`
	State          models.SubmissionState `json:"state"`
	Marks          *float64               `json:"marks"`
	Feedback       *string                `json:"feedback"`
	MarksPublished bool                   `json:"marks_published"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// NewSubmissionResponse converts a model into a DTO. Files are expected to be
// resolved already.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	urls := make([]string, 0, len(model.URLs))
	urls = append(urls, model.URLs...)

	return SubmissionResponse{
		ID:             model.ID,
		AssessmentID:   model.AssessmentID,
		StudentID:      model.StudentID,
		Files:          NewFileResponses(model.Files),
		URLs:           urls,
		TextAnswer:     model.TextAnswer,
		SubmittedAt:    model.SubmittedAt.In(models.ReferenceZone),
		IsLate:         model.IsLate,
		State:          model.State(),
		Marks:          model.Marks,
		Feedback:       model.Feedback,
		MarksPublished: model.MarksPublished,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

// Redacted hides grading until the marks are published.
func (r SubmissionResponse) Redacted() SubmissionResponse {
	if r.MarksPublished {
		return r
	}
	r.Marks = nil
	r.Feedback = nil
	return r
}

// MySubmissionResponse answers a student's lookup of their own submission.
type MySubmissionResponse struct {
	Submitted  bool                `json:"submitted"`
	Submission *SubmissionResponse `json:"submission,omitempty"`
}

// StudentResultResponse pairs a student's submission with its assessment.
type StudentResultResponse struct {
	AssessmentTitle  string                  `json:"assessment_title"`
	AssessmentStatus models.AssessmentStatus `json:"assessment_status"`
	MaxMarks         *float64                `json:"max_marks"`
	Submission       SubmissionResponse      `json:"submission"`
}

// RosterEntryResponse is one enrolled student and their submission state.
type RosterEntryResponse struct {
	Student    StudentResponse        `json:"student"`
	State      models.SubmissionState `json:"state"`
	Submission *SubmissionResponse    `json:"submission"`
}

// RosterResponse lists every enrolled student of an assessment's program.
type RosterResponse struct {
	AssessmentID string                  `json:"assessment_id"`
	Title        string                  `json:"title"`
	Status       models.AssessmentStatus `json:"status"`
	Total        int                     `json:"total"`
	Submitted    int                     `json:"submitted"`
	Late         int                     `json:"late"`
	NotSubmitted int                     `json:"not_submitted"`
	Entries      []RosterEntryResponse   `json:"entries"`
}
