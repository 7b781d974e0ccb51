package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type AccessRequestRepo interface {
	Create(ctx context.Context, tx *gorm.DB, req *types.AccessRequest) error
	GetByID(ctx context.Context, tx *gorm.DB, requestID uuid.UUID) (*types.AccessRequest, error)
	HasPending(ctx context.Context, tx *gorm.DB, orgID, subjectID uuid.UUID, scopeClass string) (bool, error)
	// Transition flips a PENDING request to its terminal status. The WHERE
	// clause guards the state machine; 0 rows means the request was not
	// PENDING anymore.
	Transition(ctx context.Context, tx *gorm.DB, requestID uuid.UUID, status types.RequestStatus, respondedAt time.Time, expiresAt *time.Time) (int64, error)
	// ListApprovedActive returns APPROVED, unexpired requests for the pair,
	// evaluated lazily against now. Never reads or writes any expiry flag.
	ListApprovedActive(ctx context.Context, tx *gorm.DB, orgID, subjectID uuid.UUID, now time.Time) ([]*types.AccessRequest, error)
	ListBySubject(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID, page, size int) ([]*types.AccessRequest, error)
	ListByOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, page, size int) ([]*types.AccessRequest, error)
}

type accessRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccessRequestRepo(db *gorm.DB, baseLog *logger.Logger) AccessRequestRepo {
	return &accessRequestRepo{db: db, log: baseLog.With("repo", "AccessRequestRepo")}
}

func (r *accessRequestRepo) Create(ctx context.Context, tx *gorm.DB, req *types.AccessRequest) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(req).Error
}

func (r *accessRequestRepo) GetByID(ctx context.Context, tx *gorm.DB, requestID uuid.UUID) (*types.AccessRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.AccessRequest
	if err := transaction.WithContext(ctx).
		Where("id = ?", requestID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *accessRequestRepo) HasPending(ctx context.Context, tx *gorm.DB, orgID, subjectID uuid.UUID, scopeClass string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.AccessRequest{}).
		Where("requesting_org_id = ? AND subject_employee_id = ? AND scope_class = ? AND status = ?",
			orgID, subjectID, scopeClass, types.RequestPending).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *accessRequestRepo) Transition(ctx context.Context, tx *gorm.DB, requestID uuid.UUID, status types.RequestStatus, respondedAt time.Time, expiresAt *time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.AccessRequest{}).
		Where("id = ? AND status = ?", requestID, types.RequestPending).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": respondedAt,
			"expires_at":   expiresAt,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *accessRequestRepo) ListApprovedActive(ctx context.Context, tx *gorm.DB, orgID, subjectID uuid.UUID, now time.Time) ([]*types.AccessRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AccessRequest
	if err := transaction.WithContext(ctx).
		Where("requesting_org_id = ? AND subject_employee_id = ? AND status = ? AND expires_at > ?",
			orgID, subjectID, types.RequestApproved, now).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *accessRequestRepo) ListBySubject(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID, page, size int) ([]*types.AccessRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 50
	}
	var results []*types.AccessRequest
	if err := transaction.WithContext(ctx).
		Where("subject_employee_id = ?", subjectID).
		Order("requested_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *accessRequestRepo) ListByOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, page, size int) ([]*types.AccessRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 50
	}
	var results []*types.AccessRequest
	if err := transaction.WithContext(ctx).
		Where("requesting_org_id = ?", orgID).
		Order("requested_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
