package types

import (
	"time"

	"github.com/google/uuid"
)

type PriceConfig struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EvaluationKind EvaluationKind `gorm:"uniqueIndex;not null;column:evaluation_kind" json:"evaluation_kind"`
	PointsCost     int64          `gorm:"not null;column:points_cost" json:"points_cost"`
	// No column default: a zero-value Active must reach the insert so a
	// deactivating upsert actually writes false.
	Active    bool      `gorm:"not null;column:active" json:"active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PriceConfig) TableName() string {
	return "price_config"
}
