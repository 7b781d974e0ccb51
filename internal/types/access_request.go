package types

import (
	"time"

	"github.com/google/uuid"
)

// AccessRequest asks a subject employee for time-boxed visibility of contact
// fields or one profile record. Expiry is evaluated lazily at read time;
// an expired APPROVED row is never rewritten.
//
// ScopeClass is a derived column ("contact" or "profile:<id>") backing the
// partial unique index that enforces one PENDING request per class; see
// db.PostgresService.AutoMigrateAll.
type AccessRequest struct {
	ID                uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	RequestingOrgID   uuid.UUID     `gorm:"type:uuid;not null;index:idx_access_org_subject,priority:1" json:"requesting_org_id"`
	SubjectEmployeeID uuid.UUID     `gorm:"type:uuid;not null;index:idx_access_org_subject,priority:2" json:"subject_employee_id"`
	Scope             AccessScope   `gorm:"not null;column:scope" json:"scope"`
	ScopeClass        string        `gorm:"not null;column:scope_class" json:"-"`
	ProfileRecordID   *uuid.UUID    `gorm:"type:uuid" json:"profile_record_id,omitempty"`
	Reason            string        `gorm:"column:reason" json:"reason"`
	Status            RequestStatus `gorm:"not null;default:'PENDING';column:status" json:"status"`
	RequestedAt       time.Time     `gorm:"not null" json:"requested_at"`
	RespondedAt       *time.Time    `gorm:"column:responded_at" json:"responded_at,omitempty"`
	ExpiresAt         *time.Time    `gorm:"column:expires_at" json:"expires_at,omitempty"`
}

func (AccessRequest) TableName() string {
	return "access_request"
}

// ScopeClassFor derives the uniqueness class for a new request.
func ScopeClassFor(scope AccessScope, profileRecordID *uuid.UUID) string {
	if scope == ScopeProfile && profileRecordID != nil {
		return "profile:" + profileRecordID.String()
	}
	return "contact"
}
