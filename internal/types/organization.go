package types

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Industry  string    `gorm:"column:industry" json:"industry"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Organization) TableName() string {
	return "organization"
}

// OrganizationBalance denormalizes the sum of the organization's ledger
// entries. Mutated only together with a ledger append, inside one
// transaction, via an atomic SQL increment.
type OrganizationBalance struct {
	OrganizationID uuid.UUID `gorm:"type:uuid;primaryKey" json:"organization_id"`
	Balance        int64     `gorm:"not null;default:0;column:balance" json:"balance"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (OrganizationBalance) TableName() string {
	return "organization_balance"
}
