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

type LedgerRepo interface {
	AppendEntry(ctx context.Context, tx *gorm.DB, entry *types.LedgerEntry) error
	// IncrementBalance applies delta as a single atomic SQL increment on the
	// balance row. Returns the number of rows updated (0 when the org has no
	// balance row).
	IncrementBalance(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, delta int64) (int64, error)
	// DebitIfSufficient atomically subtracts cost when the balance covers it.
	// Returns false without touching the row when it does not. This is the
	// guard that keeps concurrent unlocks from overdrawing an organization.
	DebitIfSufficient(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, cost int64) (bool, error)
	EnsureBalanceRow(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) error
	GetBalance(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) (*types.OrganizationBalance, error)
	ListEntries(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, page, size int) ([]*types.LedgerEntry, error)
	SumDeltas(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) (int64, error)
}

type ledgerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLedgerRepo(db *gorm.DB, baseLog *logger.Logger) LedgerRepo {
	return &ledgerRepo{db: db, log: baseLog.With("repo", "LedgerRepo")}
}

func (r *ledgerRepo) AppendEntry(ctx context.Context, tx *gorm.DB, entry *types.LedgerEntry) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(entry).Error
}

func (r *ledgerRepo) IncrementBalance(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, delta int64) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.OrganizationBalance{}).
		Where("organization_id = ?", orgID).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *ledgerRepo) DebitIfSufficient(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, cost int64) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.OrganizationBalance{}).
		Where("organization_id = ? AND balance >= ?", orgID, cost).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", cost),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ledgerRepo) EnsureBalanceRow(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := &types.OrganizationBalance{OrganizationID: orgID, Balance: 0, UpdatedAt: time.Now().UTC()}
	err := transaction.WithContext(ctx).Create(row).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (r *ledgerRepo) GetBalance(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) (*types.OrganizationBalance, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.OrganizationBalance
	if err := transaction.WithContext(ctx).
		Where("organization_id = ?", orgID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *ledgerRepo) ListEntries(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, page, size int) ([]*types.LedgerEntry, error) {
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
	var results []*types.LedgerEntry
	if err := transaction.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("effective_date DESC, created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ledgerRepo) SumDeltas(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var sum *int64
	if err := transaction.WithContext(ctx).
		Model(&types.LedgerEntry{}).
		Where("organization_id = ?", orgID).
		Select("SUM(delta)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
