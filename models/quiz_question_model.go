package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizQuestion struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ClassID       uuid.UUID `gorm:"not null;index" json:"class_id"`
	Position      int       `gorm:"not null" json:"position"`
	QuestionText  string    `gorm:"type:text;not null" json:"question_text"`
	Options       string    `gorm:"type:text;not null" json:"options"` // JSON-encoded list
	CorrectOption int       `gorm:"not null" json:"correct_option"`    // index into Options
}

func (q *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
