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

// DefaultGrantValidity is applied when an approval does not carry a usable
// expiry of its own.
const DefaultGrantValidity = 7 * 24 * time.Hour

type CreateAccessRequestInput struct {
	RequestingOrgID   uuid.UUID
	SubjectEmployeeID uuid.UUID
	Scope             types.AccessScope
	ProfileRecordID   *uuid.UUID
	Reason            string
	// ProposedExpiresAt is the requester's suggested grant expiry; the
	// subject can override it at approval time.
	ProposedExpiresAt *time.Time
	CallerRole        types.Role
}

type AccessRequestService interface {
	CreateRequest(ctx context.Context, in CreateAccessRequestInput) (*types.AccessRequest, error)
	// Respond approves or rejects a PENDING request. Only the subject
	// employee may call it.
	Respond(ctx context.Context, requestID, approverUserID uuid.UUID, status types.RequestStatus, expiresAt *time.Time) (*types.AccessRequest, error)
	// HasAuthorizedAccess answers a contact-scope check against the lazy
	// expiry rule; nothing is ever written.
	HasAuthorizedAccess(ctx context.Context, orgID, subjectID uuid.UUID, scope types.AccessScope) (bool, error)
	HasProfileAccess(ctx context.Context, orgID, subjectID, profileRecordID uuid.UUID) (bool, error)
	ListForSubject(ctx context.Context, subjectID uuid.UUID, page, size int) ([]*types.AccessRequest, error)
	ListForOrganization(ctx context.Context, orgID uuid.UUID, page, size int) ([]*types.AccessRequest, error)
}

type accessRequestService struct {
	db           *gorm.DB
	log          *logger.Logger
	accessRepo   repos.AccessRequestRepo
	employeeRepo repos.EmployeeRepo
	profileRepo  repos.ProfileRecordRepo
	userRepo     repos.UserRepo
	notifier     Notifier
}

func NewAccessRequestService(
	db *gorm.DB,
	baseLog *logger.Logger,
	accessRepo repos.AccessRequestRepo,
	employeeRepo repos.EmployeeRepo,
	profileRepo repos.ProfileRecordRepo,
	userRepo repos.UserRepo,
	notifier Notifier,
) AccessRequestService {
	return &accessRequestService{
		db:           db,
		log:          baseLog.With("service", "AccessRequestService"),
		accessRepo:   accessRepo,
		employeeRepo: employeeRepo,
		profileRepo:  profileRepo,
		userRepo:     userRepo,
		notifier:     notifier,
	}
}

func (s *accessRequestService) CreateRequest(ctx context.Context, in CreateAccessRequestInput) (*types.AccessRequest, error) {
	if !in.CallerRole.CanManageAccess() {
		return nil, apierr.Unauthorized("role %s may not request access", in.CallerRole)
	}
	if in.RequestingOrgID == uuid.Nil || in.SubjectEmployeeID == uuid.Nil {
		return nil, apierr.InvalidArgument("missing organization or subject id")
	}
	if _, err := types.ParseAccessScope(string(in.Scope)); err != nil {
		return nil, apierr.InvalidArgument("invalid scope: %s", in.Scope)
	}
	if in.Scope == types.ScopeProfile {
		if in.ProfileRecordID == nil {
			return nil, apierr.InvalidArgument("profile scope requires a profile record id")
		}
		profile, err := s.profileRepo.GetByID(ctx, nil, *in.ProfileRecordID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, apierr.NotFound("profile record %s not found", *in.ProfileRecordID)
		}
		if profile.EmployeeID != in.SubjectEmployeeID {
			return nil, apierr.InvalidArgument("profile record does not belong to the subject")
		}
	}

	subject, err := s.employeeRepo.GetByID(ctx, nil, in.SubjectEmployeeID)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, apierr.NotFound("employee %s not found", in.SubjectEmployeeID)
	}
	if subject.OrganizationID != nil && *subject.OrganizationID == in.RequestingOrgID {
		return nil, apierr.InvalidArgument("subject is currently employed by the requesting organization")
	}

	now := time.Now().UTC()
	if in.ProposedExpiresAt != nil && !in.ProposedExpiresAt.After(now) {
		return nil, apierr.InvalidArgument("proposed expiry must be in the future")
	}

	scopeClass := types.ScopeClassFor(in.Scope, in.ProfileRecordID)
	pending, err := s.accessRepo.HasPending(ctx, nil, in.RequestingOrgID, in.SubjectEmployeeID, scopeClass)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apierr.Conflict("a pending request already exists for this subject")
	}

	req := &types.AccessRequest{
		ID:                uuid.New(),
		RequestingOrgID:   in.RequestingOrgID,
		SubjectEmployeeID: in.SubjectEmployeeID,
		Scope:             in.Scope,
		ScopeClass:        scopeClass,
		ProfileRecordID:   in.ProfileRecordID,
		Reason:            in.Reason,
		Status:            types.RequestPending,
		RequestedAt:       now,
		ExpiresAt:         in.ProposedExpiresAt,
	}
	if err := s.accessRepo.Create(ctx, nil, req); err != nil {
		// The partial unique index catches the concurrent duplicate the
		// pre-check cannot.
		if repos.IsDuplicateKey(err) {
			return nil, apierr.Conflict("a pending request already exists for this subject")
		}
		return nil, fmt.Errorf("create access request: %w", err)
	}

	if subjectUser, err := s.userRepo.GetByEmployeeID(ctx, nil, in.SubjectEmployeeID); err == nil && subjectUser != nil {
		s.notifier.Notify(ctx, subjectUser.ID,
			"access-request",
			"New data access request",
			fmt.Sprintf("An organization asked to view your %s data.", in.Scope),
			&req.ID,
		)
	}

	s.log.Info("Access request created",
		"request_id", req.ID,
		"requesting_org_id", in.RequestingOrgID,
		"subject_employee_id", in.SubjectEmployeeID,
		"scope", in.Scope,
	)
	return req, nil
}

func (s *accessRequestService) Respond(ctx context.Context, requestID, approverUserID uuid.UUID, status types.RequestStatus, expiresAt *time.Time) (*types.AccessRequest, error) {
	if status != types.RequestApproved && status != types.RequestRejected {
		return nil, apierr.InvalidArgument("response status must be APPROVED or REJECTED")
	}
	req, err := s.accessRepo.GetByID(ctx, nil, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apierr.NotFound("access request %s not found", requestID)
	}

	approver, err := s.userRepo.GetByID(ctx, nil, approverUserID)
	if err != nil {
		return nil, err
	}
	if approver == nil || approver.EmployeeID == nil || *approver.EmployeeID != req.SubjectEmployeeID {
		return nil, apierr.Unauthorized("only the subject employee may respond to this request")
	}
	if req.Status != types.RequestPending {
		return nil, apierr.Conflict("request is %s, not PENDING", req.Status)
	}

	respondedAt := time.Now().UTC()
	var finalExpiry *time.Time
	if status == types.RequestApproved {
		expiry := resolveGrantExpiry(expiresAt, req.ExpiresAt, respondedAt)
		finalExpiry = &expiry
	}

	rows, err := s.accessRepo.Transition(ctx, nil, requestID, status, respondedAt, finalExpiry)
	if err != nil {
		return nil, fmt.Errorf("transition request: %w", err)
	}
	if rows == 0 {
		// Lost the race with another response.
		return nil, apierr.Conflict("request is no longer PENDING")
	}

	req.Status = status
	req.RespondedAt = &respondedAt
	req.ExpiresAt = finalExpiry

	for _, manager := range s.orgManagers(ctx, req.RequestingOrgID) {
		s.notifier.Notify(ctx, manager.ID,
			"access-request-response",
			fmt.Sprintf("Access request %s", status),
			fmt.Sprintf("Your request to view employee data was %s.", status),
			&req.ID,
		)
	}

	s.log.Info("Access request resolved",
		"request_id", requestID,
		"status", status,
	)
	return req, nil
}

// resolveGrantExpiry picks the approval expiry: the approver's value when it
// is after the response time, else the requester's proposal under the same
// rule, else the 7-day default.
func resolveGrantExpiry(approverExpiry, proposedExpiry *time.Time, respondedAt time.Time) time.Time {
	if approverExpiry != nil && approverExpiry.After(respondedAt) {
		return approverExpiry.UTC()
	}
	if proposedExpiry != nil && proposedExpiry.After(respondedAt) {
		return proposedExpiry.UTC()
	}
	return respondedAt.Add(DefaultGrantValidity)
}

func (s *accessRequestService) HasAuthorizedAccess(ctx context.Context, orgID, subjectID uuid.UUID, scope types.AccessScope) (bool, error) {
	if _, err := types.ParseAccessScope(string(scope)); err != nil {
		return false, apierr.InvalidArgument("invalid scope: %s", scope)
	}
	if scope == types.ScopeProfile {
		return false, apierr.InvalidArgument("profile checks need a profile record id")
	}
	grants, err := s.accessRepo.ListApprovedActive(ctx, nil, orgID, subjectID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	for _, g := range grants {
		if g.Scope.Satisfies(scope) {
			return true, nil
		}
	}
	return false, nil
}

func (s *accessRequestService) HasProfileAccess(ctx context.Context, orgID, subjectID, profileRecordID uuid.UUID) (bool, error) {
	grants, err := s.accessRepo.ListApprovedActive(ctx, nil, orgID, subjectID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	for _, g := range grants {
		if g.Scope == types.ScopeProfile && g.ProfileRecordID != nil && *g.ProfileRecordID == profileRecordID {
			return true, nil
		}
	}
	return false, nil
}

func (s *accessRequestService) ListForSubject(ctx context.Context, subjectID uuid.UUID, page, size int) ([]*types.AccessRequest, error) {
	return s.accessRepo.ListBySubject(ctx, nil, subjectID, page, size)
}

func (s *accessRequestService) ListForOrganization(ctx context.Context, orgID uuid.UUID, page, size int) ([]*types.AccessRequest, error) {
	return s.accessRepo.ListByOrganization(ctx, nil, orgID, page, size)
}

func (s *accessRequestService) orgManagers(ctx context.Context, orgID uuid.UUID) []*types.User {
	managers, err := s.userRepo.ListOrgManagers(ctx, nil, orgID)
	if err != nil {
		s.log.Warn("Failed to load organization managers for notification", "organization_id", orgID, "error", err)
		return nil
	}
	return managers
}
