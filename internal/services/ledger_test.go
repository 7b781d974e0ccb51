package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

func TestCreditAndBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.createOrg(t, "acme")

	if got := env.balance(t, org.ID); got != 0 {
		t.Fatalf("fresh org balance: want=0 got=%d", got)
	}

	entryID, err := env.ledger.Credit(ctx, nil, org.ID, 5, types.ReasonEvaluationSubmitted, nil, "")
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if entryID == uuid.Nil {
		t.Fatal("credit returned nil entry id")
	}
	if got := env.balance(t, org.ID); got != 5 {
		t.Fatalf("balance after credit: want=5 got=%d", got)
	}
}

func TestCreditValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.createOrg(t, "acme")

	tests := []struct {
		name     string
		orgID    uuid.UUID
		delta    int64
		reason   types.LedgerReason
		wantCode string
	}{
		{"zero delta", org.ID, 0, types.ReasonEvaluationSubmitted, apierr.CodeInvalidArgument},
		{"nil org", uuid.Nil, 5, types.ReasonEvaluationSubmitted, apierr.CodeInvalidArgument},
		{"bad reason", org.ID, 5, types.LedgerReason("made-up"), apierr.CodeInvalidArgument},
		{"unknown org", uuid.New(), 5, types.ReasonEvaluationSubmitted, apierr.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.Credit(ctx, nil, tt.orgID, tt.delta, tt.reason, nil, "")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apierr.CodeOf(err); got != tt.wantCode {
				t.Fatalf("code: want=%q got=%q", tt.wantCode, got)
			}
		})
	}
}

func TestLedgerConservation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.createOrg(t, "acme")

	deltas := []int64{100, -30, 25, -5, 60}
	for _, d := range deltas {
		reason := types.ReasonEvaluationSubmitted
		if d < 0 {
			reason = types.ReasonRightsConsumed
		}
		if _, err := env.ledger.Credit(ctx, nil, org.ID, d, reason, nil, ""); err != nil {
			t.Fatalf("credit %d: %v", d, err)
		}
	}

	sum, err := env.repos.ledger.SumDeltas(ctx, nil, org.ID)
	if err != nil {
		t.Fatalf("sum deltas: %v", err)
	}
	if sum != 150 {
		t.Fatalf("entry sum: want=150 got=%d", sum)
	}
	if got := env.balance(t, org.ID); got != sum {
		t.Fatalf("balance diverged from ledger: balance=%d sum=%d", got, sum)
	}

	entries, err := env.ledger.History(ctx, org.ID, 1, 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != len(deltas) {
		t.Fatalf("history length: want=%d got=%d", len(deltas), len(entries))
	}
}

func TestBalanceOfUnknownOrg(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.ledger.BalanceOf(context.Background(), uuid.New())
	if got := apierr.CodeOf(err); got != apierr.CodeNotFound {
		t.Fatalf("code: want=%q got=%q", apierr.CodeNotFound, got)
	}
}

func TestCreditAutoDescriptionNamesSubject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.createOrg(t, "acme")
	emp := env.createEmployee(t, &org.ID, "Dana", "Reyes")

	if _, err := env.ledger.Credit(ctx, nil, org.ID, -3, types.ReasonRightsConsumed, &emp.ID, ""); err != nil {
		t.Fatalf("credit: %v", err)
	}
	entries, err := env.ledger.History(ctx, org.ID, 1, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("history length: want=1 got=%d", len(entries))
	}
	want := "Points spent viewing records of Dana Reyes"
	if entries[0].Description != want {
		t.Fatalf("description: want=%q got=%q", want, entries[0].Description)
	}
}
