package types

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the data subject. OrganizationID is the current employer;
// nil means not currently employed anywhere in the market.
type Employee struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID *uuid.UUID `gorm:"type:uuid;index" json:"organization_id,omitempty"`
	FirstName      string     `gorm:"not null;column:first_name" json:"first_name"`
	LastName       string     `gorm:"not null;column:last_name" json:"last_name"`
	Phone          string     `gorm:"column:phone" json:"phone,omitempty"`
	Email          string     `gorm:"column:email" json:"email,omitempty"`
	NationalID     string     `gorm:"column:national_id" json:"national_id,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (Employee) TableName() string {
	return "employee"
}
