package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submission is one student's current answer set for one assessment. The
// (assessment_id, student_id) pair is unique.
type Submission struct {
	ID             string                          `gorm:"primaryKey;size:36" json:"id"`
	AssessmentID   string                          `gorm:"size:36;not null;uniqueIndex:idx_submission_assessment_student" json:"assessment_id"`
	StudentID      string                          `gorm:"size:36;not null;uniqueIndex:idx_submission_assessment_student;index" json:"student_id"`
	Files          datatypes.JSONSlice[StoredFile] `json:"files"`
	URLs           datatypes.JSONSlice[string]     `json:"urls"`
	TextAnswer     string                          `gorm:"type:text" json:"text_answer"`
	SubmittedAt    time.Time                       `gorm:"not null" json:"submitted_at"`
	IsLate         bool                            `gorm:"not null;default:false" json:"is_late"`
	Marks          *float64                        `json:"marks"`
	Feedback       *string                         `gorm:"type:text" json:"feedback"`
	MarksPublished bool                            `gorm:"not null;default:false" json:"marks_published"`
	CreatedAt      time.Time                       `json:"created_at"`
	UpdatedAt      time.Time                       `json:"updated_at"`
}

// SubmissionState is the per-student roster state for an assessment.
type SubmissionState string

const (
	// SubmissionStateNotSubmitted indicates the student has no submission.
	SubmissionStateNotSubmitted SubmissionState = "NotSubmitted"
	// SubmissionStateSubmitted indicates an on-time submission.
	SubmissionStateSubmitted SubmissionState = "Submitted"
	// SubmissionStateLate indicates the submission arrived after the deadline.
	SubmissionStateLate SubmissionState = "Late"
)

// BeforeCreate assigns a string identifier.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// State reports the roster state of an existing submission.
func (s Submission) State() SubmissionState {
	if s.IsLate {
		return SubmissionStateLate
	}
	return SubmissionStateSubmitted
}

// IsGraded reports whether marks have been assigned.
func (s Submission) IsGraded() bool {
	return s.Marks != nil
}
