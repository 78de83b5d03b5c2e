package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Receipt struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID uuid.UUID `gorm:"not null;unique" json:"transaction_id"`
	LearnerID     uuid.UUID `gorm:"not null;index" json:"learner_id"`
	ReceiptURL    string    `gorm:"size:255;not null" json:"receipt_url"`
	IssuedAt      time.Time `gorm:"not null" json:"issued_at"`
}

func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
