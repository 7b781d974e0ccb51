package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ComparisonRecord durably stores a comparison's inputs and, once the
// analysis finishes, its result. The record is created before the task is
// submitted and the task carries RecordID, so no after-the-fact matching is
// ever needed.
type ComparisonRecord struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index:idx_comparison_org_key,priority:1" json:"organization_id"`
	SubjectIDs     datatypes.JSON `gorm:"not null;column:subject_ids" json:"subject_ids"`
	SubjectKey     string         `gorm:"not null;index:idx_comparison_org_key,priority:2;column:subject_key" json:"-"`
	Params         datatypes.JSON `gorm:"column:params" json:"params"`
	Result         datatypes.JSON `gorm:"column:result" json:"result,omitempty"`
	TaskID         string         `gorm:"column:task_id" json:"task_id,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (ComparisonRecord) TableName() string {
	return "comparison_record"
}
