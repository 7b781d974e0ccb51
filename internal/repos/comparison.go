package repos

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type ComparisonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.ComparisonRecord) error
	GetByID(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) (*types.ComparisonRecord, error)
	UpdateResult(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, result []byte) error
	GetBySubjectSet(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, subjectIDs []uuid.UUID) (*types.ComparisonRecord, error)
	// ListRelated returns the organization's most recent comparisons sharing
	// at least one subject with subjectIDs, excluding the exact set.
	ListRelated(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, subjectIDs []uuid.UUID, limit int) ([]*types.ComparisonRecord, error)
}

type comparisonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewComparisonRepo(db *gorm.DB, baseLog *logger.Logger) ComparisonRepo {
	return &comparisonRepo{db: db, log: baseLog.With("repo", "ComparisonRepo")}
}

// SubjectKey canonicalizes a subject set: sorted ids joined with ",".
func SubjectKey(subjectIDs []uuid.UUID) string {
	ids := make([]string, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

func (r *comparisonRepo) Create(ctx context.Context, tx *gorm.DB, record *types.ComparisonRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(record).Error
}

func (r *comparisonRepo) GetByID(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) (*types.ComparisonRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.ComparisonRecord
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

func (r *comparisonRepo) UpdateResult(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, result []byte) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ComparisonRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"result":     datatypes.JSON(result),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *comparisonRepo) GetBySubjectSet(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, subjectIDs []uuid.UUID) (*types.ComparisonRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.ComparisonRecord
	if err := transaction.WithContext(ctx).
		Where("organization_id = ? AND subject_key = ?", orgID, SubjectKey(subjectIDs)).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *comparisonRepo) ListRelated(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, subjectIDs []uuid.UUID, limit int) ([]*types.ComparisonRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	exactKey := SubjectKey(subjectIDs)
	want := make(map[uuid.UUID]bool, len(subjectIDs))
	for _, id := range subjectIDs {
		want[id] = true
	}

	// Overlap filtering happens in Go so the query stays portable between
	// postgres and the sqlite test harness. The candidate window is bounded.
	var candidates []*types.ComparisonRecord
	if err := transaction.WithContext(ctx).
		Where("organization_id = ? AND subject_key <> ?", orgID, exactKey).
		Order("created_at DESC").
		Limit(200).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	var results []*types.ComparisonRecord
	for _, c := range candidates {
		var ids []uuid.UUID
		if err := json.Unmarshal(c.SubjectIDs, &ids); err != nil {
			continue
		}
		for _, id := range ids {
			if want[id] {
				results = append(results, c)
				break
			}
		}
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
