package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is the single bank account linked to a user. Balances are whole
// units, no fractional currency. Balance must never go negative; every
// mutation goes through a guarded UPDATE in the ledger service.
type Account struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID `gorm:"not null;unique" json:"user_id"`
	AccountNumber string    `gorm:"size:20;not null;unique" json:"account_number"`
	SecretHash    string    `gorm:"not null" json:"-"`
	Balance       int64     `gorm:"not null;default:0" json:"balance"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
