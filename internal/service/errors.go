package service

import (
	"errors"
	"fmt"
	"strconv"
)

// Error kinds surfaced by the services. Handlers map them onto HTTP statuses.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrLocked     = errors.New("locked")
	ErrConflict   = errors.New("conflict")
)

var (
	// ErrAssessmentNotFound indicates the requested assessment does not exist.
	ErrAssessmentNotFound = fmt.Errorf("assessment %w", ErrNotFound)
	// ErrSubmissionNotFound indicates the requested submission does not exist.
	ErrSubmissionNotFound = fmt.Errorf("submission %w", ErrNotFound)
	// ErrProgramNotFound indicates the requested program does not exist.
	ErrProgramNotFound = fmt.Errorf("program %w", ErrNotFound)
	// ErrStudentNotFound indicates the requested student does not exist.
	ErrStudentNotFound = fmt.Errorf("student %w", ErrNotFound)
	// ErrAssessmentLocked rejects edits and uploads on a locked assessment.
	ErrAssessmentLocked = fmt.Errorf("assessment is %w", ErrLocked)
	// ErrProgramExists reports a program name collision.
	ErrProgramExists = fmt.Errorf("program name %w", ErrConflict)
	// ErrStudentExists reports a student email collision.
	ErrStudentExists = fmt.Errorf("student email %w", ErrConflict)
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Unwrap exposes the validation kind.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// MarksExceedMaxError is returned when marks are above the assessment ceiling.
type MarksExceedMaxError struct {
	Marks    float64
	MaxMarks float64
}

func (e *MarksExceedMaxError) Error() string {
	return fmt.Sprintf("marks %s exceed maximum of %s", formatMarks(e.Marks), formatMarks(e.MaxMarks))
}

// Unwrap exposes the validation kind.
func (e *MarksExceedMaxError) Unwrap() error {
	return ErrValidation
}

func formatMarks(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
