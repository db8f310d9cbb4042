package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Student is a learner enrolled in exactly one program.
type Student struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	RollNumber     string    `gorm:"size:64;index" json:"roll_number"`
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	ProgramID      string    `gorm:"size:36;index;not null" json:"program_id"`
	Specialization string    `gorm:"size:128" json:"specialization"`
	Year           string    `gorm:"size:32" json:"year"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BeforeCreate assigns a string identifier.
func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
