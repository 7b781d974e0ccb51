package services

import (
	"context"
	"testing"
	"time"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

// TestProfileAccessRoundTrip walks the full grant path: a stranger org is
// told to request access, the employee approves, and the record opens up.
func TestProfileAccessRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createOrg(t, "author")
	viewer := env.createOrg(t, "viewer")
	subject := env.createEmployee(t, nil, "Pia", "Moss")
	subjectUser := env.createUser(t, types.RoleEmployee, nil, &subject.ID)
	record := env.createProfile(t, subject.ID, author.ID, types.TierOrgVisible)

	decision, err := env.visibility.CanViewByID(ctx, viewer.ID, record.ID)
	if err != nil {
		t.Fatalf("can view before grant: %v", err)
	}
	if decision.Visible || !decision.NeedsRequest {
		t.Fatalf("pre-grant decision: %+v", decision)
	}

	req, err := env.access.CreateRequest(ctx, CreateAccessRequestInput{
		RequestingOrgID:   viewer.ID,
		SubjectEmployeeID: subject.ID,
		Scope:             types.ScopeProfile,
		ProfileRecordID:   &record.ID,
		Reason:            "reference check",
		CallerRole:        types.RoleHR,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	expiry := time.Now().UTC().Add(7 * 24 * time.Hour)
	if _, err := env.access.Respond(ctx, req.ID, subjectUser.ID, types.RequestApproved, &expiry); err != nil {
		t.Fatalf("approve: %v", err)
	}

	decision, err = env.visibility.CanViewByID(ctx, viewer.ID, record.ID)
	if err != nil {
		t.Fatalf("can view after grant: %v", err)
	}
	if !decision.Visible || !decision.Authorized {
		t.Fatalf("post-grant decision: %+v", decision)
	}

	ok, err := env.access.HasProfileAccess(ctx, viewer.ID, subject.ID, record.ID)
	if err != nil {
		t.Fatalf("has profile access: %v", err)
	}
	if !ok {
		t.Fatal("profile access check should agree with the visibility decision")
	}
}

// TestUnlockThenEmployerChange covers persistence of unlocks: a purchased
// evaluation stays visible even though the free quota shifts as new
// evaluations arrive.
func TestUnlockSurvivesNewEvaluations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.createOrg(t, "buyer")
	employer := env.createOrg(t, "employer")
	subject := env.createEmployee(t, &employer.ID, "Avery", "Chen")
	if err := env.pricing.SetPrice(ctx, types.KindPerformanceReview, 10, true); err != nil {
		t.Fatalf("set price: %v", err)
	}
	env.fund(t, buyer.ID, 100)

	var evals []*types.Evaluation
	for i := 0; i < 4; i++ {
		evals = append(evals, env.createEvaluation(t, subject.ID, employer.ID, types.KindPerformanceReview, 70))
	}

	if _, err := env.unlock.Unlock(ctx, buyer.ID, evals[3].ID); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	for i := 0; i < 3; i++ {
		env.createEvaluation(t, subject.ID, employer.ID, types.KindPerformanceReview, 70)
	}

	unlocked, err := env.unlock.IsUnlocked(ctx, buyer.ID, evals[3].ID)
	if err != nil {
		t.Fatalf("is unlocked: %v", err)
	}
	if !unlocked {
		t.Fatal("a purchased unlock is permanent")
	}
}
