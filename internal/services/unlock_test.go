package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

// unlockFixture builds a buyer org, an employer org, one subject, and n
// performance reviews authored by the employer.
type unlockFixture struct {
	env      *testEnv
	buyer    *types.Organization
	employer *types.Organization
	subject  *types.Employee
	evals    []*types.Evaluation
}

func newUnlockFixture(t *testing.T, evalCount int) *unlockFixture {
	t.Helper()
	env := newTestEnv(t)
	buyer := env.createOrg(t, "buyer")
	employer := env.createOrg(t, "employer")
	subject := env.createEmployee(t, &employer.ID, "Sam", "Ortiz")

	evals := make([]*types.Evaluation, 0, evalCount)
	for i := 0; i < evalCount; i++ {
		evals = append(evals, env.createEvaluation(t, subject.ID, employer.ID, types.KindPerformanceReview, 70+i))
	}
	if err := env.pricing.SetPrice(context.Background(), types.KindPerformanceReview, 10, true); err != nil {
		t.Fatalf("set price: %v", err)
	}
	return &unlockFixture{env: env, buyer: buyer, employer: employer, subject: subject, evals: evals}
}

func TestFreeQuotaOrdering(t *testing.T) {
	f := newUnlockFixture(t, 5)
	ctx := context.Background()

	for i, eval := range f.evals {
		unlocked, err := f.env.unlock.IsUnlocked(ctx, f.buyer.ID, eval.ID)
		if err != nil {
			t.Fatalf("is unlocked #%d: %v", i, err)
		}
		wantFree := i < FreeQuotaPerSubject
		if unlocked != wantFree {
			t.Fatalf("eval #%d visibility: want=%v got=%v", i, wantFree, unlocked)
		}
	}
}

func TestEmployerAlwaysSeesOwnEmployee(t *testing.T) {
	f := newUnlockFixture(t, 5)

	unlocked, err := f.env.unlock.IsUnlocked(context.Background(), f.employer.ID, f.evals[4].ID)
	if err != nil {
		t.Fatalf("is unlocked: %v", err)
	}
	if !unlocked {
		t.Fatal("current employer should see every evaluation of its employee")
	}
}

func TestUnlockDebitsOnce(t *testing.T) {
	f := newUnlockFixture(t, 5)
	ctx := context.Background()
	f.env.fund(t, f.buyer.ID, 50)
	paid := f.evals[3]

	cost, err := f.env.unlock.Unlock(ctx, f.buyer.ID, paid.ID)
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if cost != 10 {
		t.Fatalf("cost: want=10 got=%d", cost)
	}
	if got := f.env.balance(t, f.buyer.ID); got != 40 {
		t.Fatalf("balance after unlock: want=40 got=%d", got)
	}
	unlocked, err := f.env.unlock.IsUnlocked(ctx, f.buyer.ID, paid.ID)
	if err != nil {
		t.Fatalf("is unlocked: %v", err)
	}
	if !unlocked {
		t.Fatal("evaluation should be visible after unlock")
	}

	// Unlocking again must neither charge nor create a second record.
	_, err = f.env.unlock.Unlock(ctx, f.buyer.ID, paid.ID)
	if got := apierr.CodeOf(err); got != apierr.CodeConflict {
		t.Fatalf("second unlock code: want=%q got=%q", apierr.CodeConflict, got)
	}
	if got := f.env.balance(t, f.buyer.ID); got != 40 {
		t.Fatalf("balance after repeat unlock: want=40 got=%d", got)
	}
}

func TestUnlockOwnEmployeeRejected(t *testing.T) {
	f := newUnlockFixture(t, 4)

	_, err := f.env.unlock.Unlock(context.Background(), f.employer.ID, f.evals[3].ID)
	if got := apierr.CodeOf(err); got != apierr.CodeInvalidArgument {
		t.Fatalf("code: want=%q got=%q", apierr.CodeInvalidArgument, got)
	}
}

func TestUnlockInsufficientBalance(t *testing.T) {
	f := newUnlockFixture(t, 5)
	ctx := context.Background()
	f.env.fund(t, f.buyer.ID, 5)
	paid := f.evals[3]

	_, err := f.env.unlock.Unlock(ctx, f.buyer.ID, paid.ID)
	if got := apierr.CodeOf(err); got != apierr.CodeInsufficientBalance {
		t.Fatalf("code: want=%q got=%q", apierr.CodeInsufficientBalance, got)
	}

	// Nothing moved: same balance, still locked, no ledger debit.
	if got := f.env.balance(t, f.buyer.ID); got != 5 {
		t.Fatalf("balance: want=5 got=%d", got)
	}
	unlocked, err := f.env.unlock.IsUnlocked(ctx, f.buyer.ID, paid.ID)
	if err != nil {
		t.Fatalf("is unlocked: %v", err)
	}
	if unlocked {
		t.Fatal("failed unlock must not grant visibility")
	}
	sum, err := f.env.repos.ledger.SumDeltas(ctx, nil, f.buyer.ID)
	if err != nil {
		t.Fatalf("sum deltas: %v", err)
	}
	if sum != 5 {
		t.Fatalf("ledger sum: want=5 got=%d", sum)
	}
}

func TestUnlockUnpricedKind(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.createOrg(t, "buyer")
	employer := env.createOrg(t, "employer")
	subject := env.createEmployee(t, &employer.ID, "Kim", "Vo")
	var last *types.Evaluation
	for i := 0; i < 4; i++ {
		last = env.createEvaluation(t, subject.ID, employer.ID, types.KindPeerFeedback, 60)
	}
	env.fund(t, buyer.ID, 100)

	_, err := env.unlock.Unlock(context.Background(), buyer.ID, last.ID)
	if got := apierr.CodeOf(err); got != apierr.CodePriceNotConfigured {
		t.Fatalf("code: want=%q got=%q", apierr.CodePriceNotConfigured, got)
	}
}

func TestBatchUnlockSkipsFailures(t *testing.T) {
	f := newUnlockFixture(t, 6)
	ctx := context.Background()
	f.env.fund(t, f.buyer.ID, 100)

	ids := []uuid.UUID{
		f.evals[0].ID, // free quota, skipped as already visible
		f.evals[3].ID,
		f.evals[4].ID,
		uuid.New(), // unknown
	}
	result, err := f.env.unlock.BatchUnlock(ctx, f.buyer.ID, ids)
	if err != nil {
		t.Fatalf("batch unlock: %v", err)
	}
	if len(result.UnlockedIDs) != 2 {
		t.Fatalf("unlocked count: want=2 got=%d", len(result.UnlockedIDs))
	}
	if len(result.SkippedIDs) != 2 {
		t.Fatalf("skipped count: want=2 got=%d", len(result.SkippedIDs))
	}
	if result.TotalCost != 20 {
		t.Fatalf("total cost: want=20 got=%d", result.TotalCost)
	}
	if got := f.env.balance(t, f.buyer.ID); got != 80 {
		t.Fatalf("balance: want=80 got=%d", got)
	}
}
