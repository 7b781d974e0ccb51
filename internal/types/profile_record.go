package types

import (
	"time"

	"github.com/google/uuid"
)

// ProfileRecord is a career-profile entry owned by the organization that
// wrote it. Other organizations only ever read it through the visibility
// policy.
type ProfileRecord struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"employee_id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	Visibility     VisibilityTier `gorm:"not null;default:'ORG_VISIBLE';column:visibility" json:"visibility"`
	Title          string         `gorm:"not null;column:title" json:"title"`
	Summary        string         `gorm:"column:summary" json:"summary"`
	StartedAt      *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`
	EndedAt        *time.Time     `gorm:"column:ended_at" json:"ended_at,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (ProfileRecord) TableName() string {
	return "profile_record"
}
