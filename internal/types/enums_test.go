package types

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseEnums(t *testing.T) {
	if _, err := ParseLedgerReason("rights-consumed"); err != nil {
		t.Fatalf("ParseLedgerReason: %v", err)
	}
	if _, err := ParseLedgerReason("bonus"); err == nil {
		t.Fatalf("ParseLedgerReason accepted an unknown reason")
	}
	if _, err := ParseEvaluationKind("talent-comparison"); err != nil {
		t.Fatalf("ParseEvaluationKind: %v", err)
	}
	if _, err := ParseEvaluationKind("annual"); err == nil {
		t.Fatalf("ParseEvaluationKind accepted an unknown kind")
	}
	if _, err := ParseRequestStatus("APPROVED"); err != nil {
		t.Fatalf("ParseRequestStatus: %v", err)
	}
	if _, err := ParseRequestStatus("approved"); err == nil {
		t.Fatalf("ParseRequestStatus is not case sensitive")
	}
	if _, err := ParseAccessScope("phone+email"); err != nil {
		t.Fatalf("ParseAccessScope: %v", err)
	}
	if _, err := ParseAccessScope("address"); err == nil {
		t.Fatalf("ParseAccessScope accepted an unknown scope")
	}
	if _, err := ParseVisibilityTier("ORG_VISIBLE"); err != nil {
		t.Fatalf("ParseVisibilityTier: %v", err)
	}
	if _, err := ParseVisibilityTier("hidden"); err == nil {
		t.Fatalf("ParseVisibilityTier accepted an unknown tier")
	}
	if _, err := ParseRole("org-admin"); err != nil {
		t.Fatalf("ParseRole: %v", err)
	}
	if _, err := ParseRole("manager"); err == nil {
		t.Fatalf("ParseRole accepted an unknown role")
	}
}

func TestScopeSatisfies(t *testing.T) {
	cases := []struct {
		grant AccessScope
		want  AccessScope
		ok    bool
	}{
		{ScopeAll, ScopePhone, true},
		{ScopeAll, ScopeEmail, true},
		{ScopeAll, ScopeNationalID, true},
		{ScopeAll, ScopePhoneEmail, true},
		{ScopeAll, ScopeProfile, false},
		{ScopePhoneEmail, ScopePhone, true},
		{ScopePhoneEmail, ScopeEmail, true},
		{ScopePhoneEmail, ScopeNationalID, false},
		{ScopePhoneEmail, ScopeAll, false},
		{ScopePhone, ScopePhone, true},
		{ScopePhone, ScopeEmail, false},
		{ScopeNationalID, ScopeNationalID, true},
		{ScopeNationalID, ScopePhone, false},
		{ScopeProfile, ScopeProfile, true},
		{ScopeProfile, ScopePhone, false},
	}
	for _, tc := range cases {
		if got := tc.grant.Satisfies(tc.want); got != tc.ok {
			t.Errorf("%s satisfies %s: want=%v got=%v", tc.grant, tc.want, tc.ok, got)
		}
	}
}

func TestScopeIsContact(t *testing.T) {
	for _, s := range []AccessScope{ScopePhone, ScopeEmail, ScopeNationalID, ScopePhoneEmail, ScopeAll} {
		if !s.IsContact() {
			t.Errorf("%s: want contact class", s)
		}
	}
	if ScopeProfile.IsContact() {
		t.Errorf("profile scope reported as contact class")
	}
}

func TestScopeClassFor(t *testing.T) {
	recordID := uuid.New()
	if got := ScopeClassFor(ScopeProfile, &recordID); got != "profile:"+recordID.String() {
		t.Fatalf("profile class: got=%q", got)
	}
	if got := ScopeClassFor(ScopeAll, nil); got != "contact" {
		t.Fatalf("contact class: want=%q got=%q", "contact", got)
	}
	// A profile scope without a record id has nothing to key on; it falls
	// back to the contact class and the service layer rejects it before
	// insert anyway.
	if got := ScopeClassFor(ScopeProfile, nil); got != "contact" {
		t.Fatalf("profile scope without record: got=%q", got)
	}
}

func TestRoleCanManageAccess(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleOrgAdmin, RoleHR} {
		if !r.CanManageAccess() {
			t.Errorf("%s: want manage access", r)
		}
	}
	if RoleEmployee.CanManageAccess() {
		t.Errorf("employee role may not manage access")
	}
}
