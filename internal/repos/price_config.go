package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type PriceConfigRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, cfg *types.PriceConfig) error
	GetActiveByKind(ctx context.Context, tx *gorm.DB, kind types.EvaluationKind) (*types.PriceConfig, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.PriceConfig, error)
}

type priceConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPriceConfigRepo(db *gorm.DB, baseLog *logger.Logger) PriceConfigRepo {
	return &priceConfigRepo{db: db, log: baseLog.With("repo", "PriceConfigRepo")}
}

func (r *priceConfigRepo) Upsert(ctx context.Context, tx *gorm.DB, cfg *types.PriceConfig) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	cfg.UpdatedAt = time.Now().UTC()
	// Explicit assignment values rather than excluded columns: the update
	// must write active=false even when the insert half omitted it.
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "evaluation_kind"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"points_cost": cfg.PointsCost,
				"active":      cfg.Active,
				"updated_at":  cfg.UpdatedAt,
			}),
		}).
		Create(cfg).Error
}

func (r *priceConfigRepo) GetActiveByKind(ctx context.Context, tx *gorm.DB, kind types.EvaluationKind) (*types.PriceConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.PriceConfig
	if err := transaction.WithContext(ctx).
		Where("evaluation_kind = ? AND active = ?", kind, true).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *priceConfigRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.PriceConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.PriceConfig
	if err := transaction.WithContext(ctx).
		Order("evaluation_kind ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
