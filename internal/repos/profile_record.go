package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type ProfileRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, records []*types.ProfileRecord) ([]*types.ProfileRecord, error)
	GetByID(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) (*types.ProfileRecord, error)
	ListByEmployee(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) ([]*types.ProfileRecord, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, fields map[string]interface{}) error
}

type profileRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRecordRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRecordRepo {
	return &profileRecordRepo{db: db, log: baseLog.With("repo", "ProfileRecordRepo")}
}

func (r *profileRecordRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.ProfileRecord) ([]*types.ProfileRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(records) == 0 {
		return []*types.ProfileRecord{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *profileRecordRepo) GetByID(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) (*types.ProfileRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.ProfileRecord
	if err := transaction.WithContext(ctx).
		Where("id = ?", recordID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *profileRecordRepo) ListByEmployee(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) ([]*types.ProfileRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ProfileRecord
	if err := transaction.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *profileRecordRepo) UpdateFields(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ProfileRecord{}).
		Where("id = ?", recordID).
		Updates(fields).Error
}
