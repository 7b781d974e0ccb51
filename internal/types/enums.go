package types

import "fmt"

// LedgerReason is the closed set of business reasons a point balance can move.
type LedgerReason string

const (
	ReasonProfileCreated      LedgerReason = "profile-created"
	ReasonEvaluationSubmitted LedgerReason = "evaluation-submitted"
	ReasonRightsConsumed      LedgerReason = "rights-consumed"
	ReasonAppealPenalty       LedgerReason = "appeal-penalty"
)

func ParseLedgerReason(s string) (LedgerReason, error) {
	switch LedgerReason(s) {
	case ReasonProfileCreated, ReasonEvaluationSubmitted, ReasonRightsConsumed, ReasonAppealPenalty:
		return LedgerReason(s), nil
	}
	return "", fmt.Errorf("unknown ledger reason: %q", s)
}

// EvaluationKind classifies an evaluation record and keys its unlock price.
type EvaluationKind string

const (
	KindPerformanceReview EvaluationKind = "performance-review"
	KindProbationReview   EvaluationKind = "probation-review"
	KindExitReview        EvaluationKind = "exit-review"
	KindPeerFeedback      EvaluationKind = "peer-feedback"
	// KindTalentComparison prices the long-running comparison analysis.
	// It never appears on evaluation rows.
	KindTalentComparison EvaluationKind = "talent-comparison"
)

func ParseEvaluationKind(s string) (EvaluationKind, error) {
	switch EvaluationKind(s) {
	case KindPerformanceReview, KindProbationReview, KindExitReview, KindPeerFeedback, KindTalentComparison:
		return EvaluationKind(s), nil
	}
	return "", fmt.Errorf("unknown evaluation kind: %q", s)
}

// RequestStatus is the access-request state machine. PENDING transitions to
// APPROVED or REJECTED exactly once; there are no other transitions. An
// expired APPROVED request keeps its status and simply stops authorizing.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

func ParseRequestStatus(s string) (RequestStatus, error) {
	switch RequestStatus(s) {
	case RequestPending, RequestApproved, RequestRejected:
		return RequestStatus(s), nil
	}
	return "", fmt.Errorf("unknown request status: %q", s)
}

// AccessScope names what an access request asks to see.
type AccessScope string

const (
	ScopePhone      AccessScope = "phone"
	ScopeEmail      AccessScope = "email"
	ScopeNationalID AccessScope = "national-id"
	ScopePhoneEmail AccessScope = "phone+email"
	ScopeAll        AccessScope = "all"
	// ScopeProfile targets one profile record; the request carries its id.
	ScopeProfile AccessScope = "profile"
)

func ParseAccessScope(s string) (AccessScope, error) {
	switch AccessScope(s) {
	case ScopePhone, ScopeEmail, ScopeNationalID, ScopePhoneEmail, ScopeAll, ScopeProfile:
		return AccessScope(s), nil
	}
	return "", fmt.Errorf("unknown access scope: %q", s)
}

// IsContact reports whether the scope belongs to the contact class. One
// PENDING contact-class request per (org, subject) is allowed at a time.
func (s AccessScope) IsContact() bool {
	return s != ScopeProfile
}

// Satisfies reports whether a grant of scope s covers a check for want.
// "all" covers every contact field, "phone+email" covers phone and email,
// and national-id is only covered by "all" or a national-id grant.
func (s AccessScope) Satisfies(want AccessScope) bool {
	if s == want {
		return true
	}
	switch s {
	case ScopeAll:
		return want.IsContact()
	case ScopePhoneEmail:
		return want == ScopePhone || want == ScopeEmail
	}
	return false
}

// VisibilityTier is the default exposure level of a profile record.
type VisibilityTier string

const (
	TierPrivate    VisibilityTier = "PRIVATE"
	TierOrgVisible VisibilityTier = "ORG_VISIBLE"
	TierPublic     VisibilityTier = "PUBLIC"
)

func ParseVisibilityTier(s string) (VisibilityTier, error) {
	switch VisibilityTier(s) {
	case TierPrivate, TierOrgVisible, TierPublic:
		return VisibilityTier(s), nil
	}
	return "", fmt.Errorf("unknown visibility tier: %q", s)
}

// Role is the resolved role of an authenticated caller.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOrgAdmin Role = "org-admin"
	RoleHR       Role = "hr"
	RoleEmployee Role = "employee"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleOrgAdmin, RoleHR, RoleEmployee:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

// CanManageAccess reports whether the role may create access requests and
// spend organization points.
func (r Role) CanManageAccess() bool {
	return r == RoleAdmin || r == RoleOrgAdmin || r == RoleHR
}
