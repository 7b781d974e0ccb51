package types

import (
	"time"

	"github.com/google/uuid"
)

// User is a login identity. Organization members carry OrganizationID and a
// managing role; employee users are linked to their Employee row.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password       string     `gorm:"not null;column:password" json:"-"`
	Role           Role       `gorm:"not null;column:role" json:"role"`
	OrganizationID *uuid.UUID `gorm:"type:uuid;index" json:"organization_id,omitempty"`
	EmployeeID     *uuid.UUID `gorm:"type:uuid;index" json:"employee_id,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "app_user"
}
