package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type EmployeeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, employees []*types.Employee) ([]*types.Employee, error)
	GetByID(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) (*types.Employee, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, employeeIDs []uuid.UUID) ([]*types.Employee, error)
	ListByOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, page, size int) ([]*types.Employee, error)
}

type employeeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmployeeRepo(db *gorm.DB, baseLog *logger.Logger) EmployeeRepo {
	return &employeeRepo{db: db, log: baseLog.With("repo", "EmployeeRepo")}
}

func (r *employeeRepo) Create(ctx context.Context, tx *gorm.DB, employees []*types.Employee) ([]*types.Employee, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(employees) == 0 {
		return []*types.Employee{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *employeeRepo) GetByID(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) (*types.Employee, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Employee
	if err := transaction.WithContext(ctx).
		Where("id = ?", employeeID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *employeeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, employeeIDs []uuid.UUID) ([]*types.Employee, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Employee
	if len(employeeIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", employeeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *employeeRepo) ListByOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, page, size int) ([]*types.Employee, error) {
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
	var results []*types.Employee
	if err := transaction.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
