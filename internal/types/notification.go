package types

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientUserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipient_user_id"`
	Kind            string     `gorm:"not null;column:kind" json:"kind"`
	Title           string     `gorm:"not null;column:title" json:"title"`
	Body            string     `gorm:"column:body" json:"body"`
	RelatedID       *uuid.UUID `gorm:"type:uuid" json:"related_id,omitempty"`
	ReadAt          *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
}

func (Notification) TableName() string {
	return "notification"
}
