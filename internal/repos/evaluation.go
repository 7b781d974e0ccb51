package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type EvaluationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, evaluations []*types.Evaluation) ([]*types.Evaluation, error)
	GetByID(ctx context.Context, tx *gorm.DB, evaluationID uuid.UUID) (*types.Evaluation, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, evaluationIDs []uuid.UUID) ([]*types.Evaluation, error)
	// ListBySubjectOldestFirst orders by creation time ascending; the free
	// quota is the ordinal position in this ordering.
	ListBySubjectOldestFirst(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID) ([]*types.Evaluation, error)
}

type evaluationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvaluationRepo(db *gorm.DB, baseLog *logger.Logger) EvaluationRepo {
	return &evaluationRepo{db: db, log: baseLog.With("repo", "EvaluationRepo")}
}

func (r *evaluationRepo) Create(ctx context.Context, tx *gorm.DB, evaluations []*types.Evaluation) ([]*types.Evaluation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(evaluations) == 0 {
		return []*types.Evaluation{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&evaluations).Error; err != nil {
		return nil, err
	}
	return evaluations, nil
}

func (r *evaluationRepo) GetByID(ctx context.Context, tx *gorm.DB, evaluationID uuid.UUID) (*types.Evaluation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Evaluation
	if err := transaction.WithContext(ctx).
		Where("id = ?", evaluationID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *evaluationRepo) GetByIDs(ctx context.Context, tx *gorm.DB, evaluationIDs []uuid.UUID) ([]*types.Evaluation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Evaluation
	if len(evaluationIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", evaluationIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *evaluationRepo) ListBySubjectOldestFirst(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID) ([]*types.Evaluation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Evaluation
	if err := transaction.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
