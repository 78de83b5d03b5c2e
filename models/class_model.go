package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Class is an ordered lesson inside a course. It has no life of its own:
// classes are replaced wholesale whenever the course is updated.
type Class struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CourseID    uuid.UUID `gorm:"not null;index" json:"course_id"`
	Position    int       `gorm:"not null" json:"position"`
	VideoURL    string    `gorm:"size:255;not null" json:"video_url"`
	AudioURL    *string   `gorm:"size:255" json:"audio_url,omitempty"`
	TextContent *string   `gorm:"type:text" json:"text_content,omitempty"`

	Questions []QuizQuestion `gorm:"foreignkey:ClassID" json:"questions,omitempty"`
}

func (c *Class) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
