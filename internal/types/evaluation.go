package types

import (
	"time"

	"github.com/google/uuid"
)

// Evaluation is an employee-history record gated by the unlock economy.
// OrganizationID is the organization that authored it.
type Evaluation struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_eval_subject_created,priority:1" json:"subject_id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	Kind           EvaluationKind `gorm:"not null;column:kind" json:"kind"`
	Score          int            `gorm:"not null;column:score" json:"score"`
	Content        string         `gorm:"column:content" json:"content"`
	CreatedAt      time.Time      `gorm:"not null;index:idx_eval_subject_created,priority:2" json:"created_at"`
}

func (Evaluation) TableName() string {
	return "evaluation"
}
