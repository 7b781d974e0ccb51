package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type UnlockRepo interface {
	// Create inserts the unlock row. A concurrent duplicate surfaces as
	// gorm.ErrDuplicatedKey from the (org, evaluation) unique index.
	Create(ctx context.Context, tx *gorm.DB, record *types.UnlockRecord) error
	Exists(ctx context.Context, tx *gorm.DB, orgID, evaluationID uuid.UUID) (bool, error)
	ListByOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, page, size int) ([]*types.UnlockRecord, error)
	ExistingEvaluationIDs(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, evaluationIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type unlockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUnlockRepo(db *gorm.DB, baseLog *logger.Logger) UnlockRepo {
	return &unlockRepo{db: db, log: baseLog.With("repo", "UnlockRepo")}
}

func (r *unlockRepo) Create(ctx context.Context, tx *gorm.DB, record *types.UnlockRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(record).Error
}

func (r *unlockRepo) Exists(ctx context.Context, tx *gorm.DB, orgID, evaluationID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.UnlockRecord{}).
		Where("organization_id = ? AND evaluation_id = ?", orgID, evaluationID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *unlockRepo) ListByOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, page, size int) ([]*types.UnlockRecord, error) {
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
	var results []*types.UnlockRecord
	if err := transaction.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("unlocked_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *unlockRepo) ExistingEvaluationIDs(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, evaluationIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	out := make(map[uuid.UUID]bool, len(evaluationIDs))
	if len(evaluationIDs) == 0 {
		return out, nil
	}
	var rows []*types.UnlockRecord
	if err := transaction.WithContext(ctx).
		Select("evaluation_id").
		Where("organization_id = ? AND evaluation_id IN ?", orgID, evaluationIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.EvaluationID] = true
	}
	return out, nil
}

// IsDuplicateKey reports whether err is the unique-index violation gorm
// translates for us (TranslateError is on for every gorm.Open in this repo).
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
