package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/repos"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type LedgerService interface {
	// Credit appends a ledger entry and moves the denormalized balance in
	// one transaction. Delta may be negative. When tx is non-nil the caller
	// owns the transaction boundary.
	Credit(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, delta int64, reason types.LedgerReason, relatedID *uuid.UUID, description string) (uuid.UUID, error)
	BalanceOf(ctx context.Context, orgID uuid.UUID) (int64, error)
	History(ctx context.Context, orgID uuid.UUID, page, size int) ([]*types.LedgerEntry, error)
}

type ledgerService struct {
	db           *gorm.DB
	log          *logger.Logger
	ledgerRepo   repos.LedgerRepo
	orgRepo      repos.OrganizationRepo
	employeeRepo repos.EmployeeRepo
}

func NewLedgerService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ledgerRepo repos.LedgerRepo,
	orgRepo repos.OrganizationRepo,
	employeeRepo repos.EmployeeRepo,
) LedgerService {
	return &ledgerService{
		db:           db,
		log:          baseLog.With("service", "LedgerService"),
		ledgerRepo:   ledgerRepo,
		orgRepo:      orgRepo,
		employeeRepo: employeeRepo,
	}
}

func (s *ledgerService) Credit(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, delta int64, reason types.LedgerReason, relatedID *uuid.UUID, description string) (uuid.UUID, error) {
	if orgID == uuid.Nil {
		return uuid.Nil, apierr.InvalidArgument("missing organization id")
	}
	if delta == 0 {
		return uuid.Nil, apierr.InvalidArgument("delta must be non-zero")
	}
	if _, err := types.ParseLedgerReason(string(reason)); err != nil {
		return uuid.Nil, apierr.InvalidArgument("invalid ledger reason: %s", reason)
	}

	exists, err := s.orgRepo.Exists(ctx, tx, orgID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check organization: %w", err)
	}
	if !exists {
		return uuid.Nil, apierr.NotFound("organization %s not found", orgID)
	}

	if description == "" {
		description = s.describe(ctx, tx, reason, relatedID)
	}

	entry := &types.LedgerEntry{
		ID:              uuid.New(),
		OrganizationID:  orgID,
		Delta:           delta,
		Reason:          reason,
		RelatedEntityID: relatedID,
		Description:     description,
		EffectiveDate:   time.Now().UTC(),
		CreatedAt:       time.Now().UTC(),
	}

	apply := func(tx *gorm.DB) error {
		rows, err := s.ledgerRepo.IncrementBalance(ctx, tx, orgID, delta)
		if err != nil {
			return fmt.Errorf("increment balance: %w", err)
		}
		if rows == 0 {
			if err := s.ledgerRepo.EnsureBalanceRow(ctx, tx, orgID); err != nil {
				return fmt.Errorf("ensure balance row: %w", err)
			}
			if _, err := s.ledgerRepo.IncrementBalance(ctx, tx, orgID, delta); err != nil {
				return fmt.Errorf("increment balance: %w", err)
			}
		}
		return s.ledgerRepo.AppendEntry(ctx, tx, entry)
	}

	if tx != nil {
		if err := apply(tx); err != nil {
			return uuid.Nil, err
		}
		return entry.ID, nil
	}
	if err := s.db.WithContext(ctx).Transaction(apply); err != nil {
		return uuid.Nil, err
	}
	return entry.ID, nil
}

func (s *ledgerService) BalanceOf(ctx context.Context, orgID uuid.UUID) (int64, error) {
	if orgID == uuid.Nil {
		return 0, apierr.InvalidArgument("missing organization id")
	}
	row, err := s.ledgerRepo.GetBalance(ctx, nil, orgID)
	if err != nil {
		return 0, err
	}
	if row == nil {
		exists, err := s.orgRepo.Exists(ctx, nil, orgID)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, apierr.NotFound("organization %s not found", orgID)
		}
		return 0, nil
	}
	return row.Balance, nil
}

func (s *ledgerService) History(ctx context.Context, orgID uuid.UUID, page, size int) ([]*types.LedgerEntry, error) {
	if orgID == uuid.Nil {
		return nil, apierr.InvalidArgument("missing organization id")
	}
	return s.ledgerRepo.ListEntries(ctx, nil, orgID, page, size)
}

// describe builds the default entry description, naming the related subject
// when one can be resolved.
func (s *ledgerService) describe(ctx context.Context, tx *gorm.DB, reason types.LedgerReason, relatedID *uuid.UUID) string {
	subject := ""
	if relatedID != nil {
		if emp, err := s.employeeRepo.GetByID(ctx, tx, *relatedID); err == nil && emp != nil {
			subject = emp.FirstName + " " + emp.LastName
		}
	}
	switch reason {
	case types.ReasonProfileCreated:
		if subject != "" {
			return fmt.Sprintf("Points for publishing a career profile for %s", subject)
		}
		return "Points for publishing a career profile"
	case types.ReasonEvaluationSubmitted:
		if subject != "" {
			return fmt.Sprintf("Points for submitting an evaluation of %s", subject)
		}
		return "Points for submitting an evaluation"
	case types.ReasonRightsConsumed:
		if subject != "" {
			return fmt.Sprintf("Points spent viewing records of %s", subject)
		}
		return "Points spent on viewing rights"
	case types.ReasonAppealPenalty:
		return "Penalty from a complaint ruling"
	}
	return string(reason)
}
