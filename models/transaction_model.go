package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TxStatusPendingAdmin      = "pending_admin"
	TxStatusPendingInstructor = "pending_instructor"
	TxStatusCompleted         = "completed"
	TxStatusDeclined          = "declined"
	TxStatusRefunded          = "refunded"
)

// Transaction is the escrow record for a course purchase. InstructorID,
// CourseTitle and Amount are snapshots taken when the purchase is initiated:
// later course edits or deletes must never retarget or reprice an in-flight
// payment, and history has to survive course deletion. Status only ever moves
// forward; transitions are applied with a guarded UPDATE on the current status.
type Transaction struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	LearnerID    uuid.UUID `gorm:"not null;index" json:"learner_id"`
	InstructorID uuid.UUID `gorm:"not null;index" json:"instructor_id"`
	CourseID     uuid.UUID `gorm:"not null" json:"course_id"`
	CourseTitle  string    `gorm:"size:255;not null" json:"course_title"`
	Amount       int64     `gorm:"not null" json:"amount"`
	Status       string    `gorm:"size:20;not null;default:'pending_admin';index" json:"status"`

	ArchivedByLearner    bool `gorm:"default:false" json:"-"`
	ArchivedByInstructor bool `gorm:"default:false" json:"-"`

	Learner    User `gorm:"foreignkey:LearnerID" json:"learner,omitempty"`
	Instructor User `gorm:"foreignkey:InstructorID" json:"instructor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
