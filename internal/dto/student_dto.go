package dto

import (
	"time"

	"github.com/noah-isme/gema-assessment-api/internal/models"
)

// StudentCreateRequest enrols a student into a program.
type StudentCreateRequest struct {
	Name           string `json:"name" validate:"required,min=1,max=255"`
	RollNumber     string `json:"roll_number" validate:"required,max=64"`
	Email          string `json:"email" validate:"required,email"`
	ProgramID      string `json:"program_id" validate:"required"`
	Specialization string `json:"specialization" validate:"omitempty,max=128"`
	Year           string `json:"year" validate:"omitempty,max=32"`
}

// StudentResponse is the serialized representation of a student.
type StudentResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	RollNumber     string    `json:"roll_number"`
	Email          string    `json:"email"`
	ProgramID      string    `json:"program_id"`
	Specialization string    `json:"specialization"`
	Year           string    `json:"year"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewStudentResponse converts a model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	return StudentResponse{
		ID:             model.ID,
		Name:           model.Name,
		RollNumber:     model.RollNumber,
		Email:          model.Email,
		ProgramID:      model.ProgramID,
		Specialization: model.Specialization,
		Year:           model.Year,
		CreatedAt:      model.CreatedAt,
	}
}

// NewStudentResponseSlice converts a slice of models into DTOs.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, NewStudentResponse(student))
	}

	return responses
}
