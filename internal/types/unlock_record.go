package types

import (
	"time"

	"github.com/google/uuid"
)

// UnlockRecord is a paid, permanent grant of visibility for one evaluation
// to one organization. The composite unique index is the authority on
// "at most one unlock per (org, evaluation)" under concurrency; the
// service-level existence check is only a fast path.
type UnlockRecord struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_unlock_org_eval,priority:1" json:"organization_id"`
	SubjectID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"subject_id"`
	EvaluationID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_unlock_org_eval,priority:2" json:"evaluation_id"`
	EvaluationKind EvaluationKind `gorm:"not null;column:evaluation_kind" json:"evaluation_kind"`
	PointsCost     int64          `gorm:"not null;column:points_cost" json:"points_cost"`
	UnlockedAt     time.Time      `gorm:"not null" json:"unlocked_at"`
}

func (UnlockRecord) TableName() string {
	return "unlock_record"
}
