package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Program groups students and the assessments they are enrolled in.
type Program struct {
	ID              string                      `gorm:"primaryKey;size:36" json:"id"`
	Name            string                      `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Years           datatypes.JSONSlice[string] `json:"years"`
	Specializations datatypes.JSONSlice[string] `json:"specializations"`
	CreatedBy       string                      `gorm:"size:64" json:"created_by"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// BeforeCreate assigns a string identifier.
func (p *Program) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
