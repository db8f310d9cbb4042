package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Assessment is a timed task with a submission window. Its status is derived from
// StartAt/Deadline on every read and is not a column.
type Assessment struct {
	ID            string                          `gorm:"primaryKey;size:36" json:"id"`
	ProgramID     string                          `gorm:"size:36;index;not null" json:"program_id"`
	Title         string                          `gorm:"size:255;not null" json:"title"`
	Description   string                          `gorm:"type:text" json:"description"`
	StartAt       time.Time                       `gorm:"not null" json:"start_at"`
	Deadline      time.Time                       `gorm:"not null" json:"deadline"`
	MaxMarks      *float64                        `json:"max_marks"`
	IsLocked      bool                            `gorm:"not null;default:false" json:"is_locked"`
	AttachedFiles datatypes.JSONSlice[StoredFile] `json:"attached_files"`
	CreatedBy     string                          `gorm:"size:64" json:"created_by"`
	CreatedAt     time.Time                       `json:"created_at"`
	UpdatedAt     time.Time                       `json:"updated_at"`
}

// BeforeCreate assigns a string identifier.
func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// StatusAt returns the lifecycle phase at the given instant.
func (a Assessment) StatusAt(now time.Time) AssessmentStatus {
	return ResolveStatus(a.StartAt, a.Deadline, now)
}

// IsPastDue returns true when the assessment deadline has already passed.
func (a Assessment) IsPastDue(reference time.Time) bool {
	return reference.In(ReferenceZone).After(a.Deadline.In(ReferenceZone))
}

// ExceedsMaxMarks reports whether marks are above the configured ceiling. Without a
// ceiling nothing exceeds it.
func (a Assessment) ExceedsMaxMarks(marks float64) bool {
	if a.MaxMarks == nil {
		return false
	}
	return marks > *a.MaxMarks
}
