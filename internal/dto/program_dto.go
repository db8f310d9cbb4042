package dto

import (
	"time"

	"github.com/noah-isme/gema-assessment-api/internal/models"
)

// ProgramCreateRequest describes the payload for creating a program.
type ProgramCreateRequest struct {
	Name            string   `json:"name" validate:"required,min=2,max=255"`
	Years           []string `json:"years" validate:"omitempty,dive,required"`
	Specializations []string `json:"specializations" validate:"omitempty,dive,required"`
}

// ProgramUpdateRequest carries a partial program update.
type ProgramUpdateRequest struct {
	Name            *string  `json:"name" validate:"omitempty,min=2,max=255"`
	Years           []string `json:"years" validate:"omitempty,dive,required"`
	Specializations []string `json:"specializations" validate:"omitempty,dive,required"`
}

// IsEmpty reports whether the update carries no fields.
func (r ProgramUpdateRequest) IsEmpty() bool {
	return r.Name == nil && r.Years == nil && r.Specializations == nil
}

// ProgramResponse is the serialized representation of a program.
type ProgramResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Years           []string  `json:"years"`
	Specializations []string  `json:"specializations"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewProgramResponse converts a model into a DTO.
func NewProgramResponse(model models.Program) ProgramResponse {
	return ProgramResponse{
		ID:              model.ID,
		Name:            model.Name,
		Years:           append([]string{}, model.Years...),
		Specializations: append([]string{}, model.Specializations...),
		CreatedBy:       model.CreatedBy,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// NewProgramResponseSlice converts a slice of models into DTOs.
func NewProgramResponseSlice(programs []models.Program) []ProgramResponse {
	responses := make([]ProgramResponse, 0, len(programs))
	for _, program := range programs {
		responses = append(responses, NewProgramResponse(program))
	}

	return responses
}
