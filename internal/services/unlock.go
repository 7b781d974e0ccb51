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

// FreeQuotaPerSubject is how many of a subject's evaluations, oldest first,
// are visible without purchase. The quota is shared across viewing
// organizations: it keys off the evaluation's ordinal alone.
const FreeQuotaPerSubject = 3

type BatchUnlockResult struct {
	TotalCost   int64       `json:"total_cost"`
	UnlockedIDs []uuid.UUID `json:"unlocked_ids"`
	SkippedIDs  []uuid.UUID `json:"skipped_ids"`
}

type UnlockService interface {
	IsUnlocked(ctx context.Context, orgID, evaluationID uuid.UUID) (bool, error)
	// Unlock purchases permanent visibility of one evaluation. The debit and
	// the unlock row commit together or not at all.
	Unlock(ctx context.Context, orgID, evaluationID uuid.UUID) (int64, error)
	// BatchUnlock unlocks each id independently; items that are already
	// visible or fail are skipped, never failing the batch.
	BatchUnlock(ctx context.Context, orgID uuid.UUID, evaluationIDs []uuid.UUID) (*BatchUnlockResult, error)
}

type unlockService struct {
	db             *gorm.DB
	log            *logger.Logger
	unlockRepo     repos.UnlockRepo
	evaluationRepo repos.EvaluationRepo
	employeeRepo   repos.EmployeeRepo
	ledgerRepo     repos.LedgerRepo
	pricing        PricingService
}

func NewUnlockService(
	db *gorm.DB,
	baseLog *logger.Logger,
	unlockRepo repos.UnlockRepo,
	evaluationRepo repos.EvaluationRepo,
	employeeRepo repos.EmployeeRepo,
	ledgerRepo repos.LedgerRepo,
	pricing PricingService,
) UnlockService {
	return &unlockService{
		db:             db,
		log:            baseLog.With("service", "UnlockService"),
		unlockRepo:     unlockRepo,
		evaluationRepo: evaluationRepo,
		employeeRepo:   employeeRepo,
		ledgerRepo:     ledgerRepo,
		pricing:        pricing,
	}
}

func (s *unlockService) IsUnlocked(ctx context.Context, orgID, evaluationID uuid.UUID) (bool, error) {
	eval, err := s.getEvaluation(ctx, evaluationID)
	if err != nil {
		return false, err
	}
	return s.isVisible(ctx, orgID, eval)
}

// isVisible is the shared visibility predicate: own employee, paid unlock,
// or free quota.
func (s *unlockService) isVisible(ctx context.Context, orgID uuid.UUID, eval *types.Evaluation) (bool, error) {
	own, err := s.isOwnEmployee(ctx, orgID, eval.SubjectID)
	if err != nil {
		return false, err
	}
	if own {
		return true, nil
	}

	unlocked, err := s.unlockRepo.Exists(ctx, nil, orgID, eval.ID)
	if err != nil {
		return false, err
	}
	if unlocked {
		return true, nil
	}

	return s.inFreeQuota(ctx, eval)
}

// inFreeQuota consults nothing but the subject's evaluation ordering; it
// consumes no ledger or storage.
func (s *unlockService) inFreeQuota(ctx context.Context, eval *types.Evaluation) (bool, error) {
	all, err := s.evaluationRepo.ListBySubjectOldestFirst(ctx, nil, eval.SubjectID)
	if err != nil {
		return false, err
	}
	for i, e := range all {
		if e.ID == eval.ID {
			return i < FreeQuotaPerSubject, nil
		}
	}
	return false, nil
}

func (s *unlockService) isOwnEmployee(ctx context.Context, orgID, subjectID uuid.UUID) (bool, error) {
	emp, err := s.employeeRepo.GetByID(ctx, nil, subjectID)
	if err != nil {
		return false, err
	}
	if emp == nil {
		return false, apierr.NotFound("employee %s not found", subjectID)
	}
	return emp.OrganizationID != nil && *emp.OrganizationID == orgID, nil
}

func (s *unlockService) Unlock(ctx context.Context, orgID, evaluationID uuid.UUID) (int64, error) {
	if orgID == uuid.Nil {
		return 0, apierr.InvalidArgument("missing organization id")
	}
	eval, err := s.getEvaluation(ctx, evaluationID)
	if err != nil {
		return 0, err
	}

	own, err := s.isOwnEmployee(ctx, orgID, eval.SubjectID)
	if err != nil {
		return 0, err
	}
	if own {
		return 0, apierr.InvalidArgument("evaluation belongs to your own current employee, no purchase needed")
	}

	visible, err := s.isVisible(ctx, orgID, eval)
	if err != nil {
		return 0, err
	}
	if visible {
		return 0, apierr.Conflict("evaluation %s is already unlocked", evaluationID)
	}

	cost, err := s.pricing.PriceFor(ctx, eval.Kind)
	if err != nil {
		return 0, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.ledgerRepo.DebitIfSufficient(ctx, tx, orgID, cost)
		if err != nil {
			return fmt.Errorf("debit balance: %w", err)
		}
		if !ok {
			return apierr.InsufficientBalance("balance below unlock price of %d points", cost)
		}
		entry := &types.LedgerEntry{
			ID:              uuid.New(),
			OrganizationID:  orgID,
			Delta:           -cost,
			Reason:          types.ReasonRightsConsumed,
			RelatedEntityID: &eval.SubjectID,
			Description:     fmt.Sprintf("Unlocked a %s evaluation", eval.Kind),
			EffectiveDate:   time.Now().UTC(),
			CreatedAt:       time.Now().UTC(),
		}
		if err := s.ledgerRepo.AppendEntry(ctx, tx, entry); err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}
		record := &types.UnlockRecord{
			ID:             uuid.New(),
			OrganizationID: orgID,
			SubjectID:      eval.SubjectID,
			EvaluationID:   eval.ID,
			EvaluationKind: eval.Kind,
			PointsCost:     cost,
			UnlockedAt:     time.Now().UTC(),
		}
		if err := s.unlockRepo.Create(ctx, tx, record); err != nil {
			// A concurrent purchase won the unique index; roll the debit back.
			if repos.IsDuplicateKey(err) {
				return apierr.Conflict("evaluation %s is already unlocked", evaluationID)
			}
			return fmt.Errorf("create unlock record: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("Evaluation unlocked",
		"organization_id", orgID,
		"evaluation_id", evaluationID,
		"cost", cost,
	)
	return cost, nil
}

func (s *unlockService) BatchUnlock(ctx context.Context, orgID uuid.UUID, evaluationIDs []uuid.UUID) (*BatchUnlockResult, error) {
	if orgID == uuid.Nil {
		return nil, apierr.InvalidArgument("missing organization id")
	}
	if len(evaluationIDs) == 0 {
		return nil, apierr.InvalidArgument("no evaluation ids supplied")
	}

	result := &BatchUnlockResult{}
	for _, id := range evaluationIDs {
		cost, err := s.Unlock(ctx, orgID, id)
		if err != nil {
			// Per-item failures are excluded from the result, not fatal.
			s.log.Debug("Batch unlock skipped item", "evaluation_id", id, "reason", err.Error())
			result.SkippedIDs = append(result.SkippedIDs, id)
			continue
		}
		result.TotalCost += cost
		result.UnlockedIDs = append(result.UnlockedIDs, id)
	}
	return result, nil
}

func (s *unlockService) getEvaluation(ctx context.Context, evaluationID uuid.UUID) (*types.Evaluation, error) {
	if evaluationID == uuid.Nil {
		return nil, apierr.InvalidArgument("missing evaluation id")
	}
	eval, err := s.evaluationRepo.GetByID(ctx, nil, evaluationID)
	if err != nil {
		return nil, err
	}
	if eval == nil {
		return nil, apierr.NotFound("evaluation %s not found", evaluationID)
	}
	return eval, nil
}
