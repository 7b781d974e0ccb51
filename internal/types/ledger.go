package types

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEntry is append-only: never updated, never hard-deleted.
type LedgerEntry struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID  uuid.UUID    `gorm:"type:uuid;not null;index:idx_ledger_org_effective,priority:1" json:"organization_id"`
	Delta           int64        `gorm:"not null;column:delta" json:"delta"`
	Reason          LedgerReason `gorm:"not null;column:reason" json:"reason"`
	RelatedEntityID *uuid.UUID   `gorm:"type:uuid" json:"related_entity_id,omitempty"`
	Description     string       `gorm:"column:description" json:"description"`
	EffectiveDate   time.Time    `gorm:"not null;index:idx_ledger_org_effective,priority:2,sort:desc" json:"effective_date"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entry"
}
