package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/repos"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

// VisibilityDecision is the answer to "may this organization see this
// profile record, and if not, can it ask".
type VisibilityDecision struct {
	Visible      bool `json:"visible"`
	NeedsRequest bool `json:"needs_request"`
	Authorized   bool `json:"authorized"`
}

// VisibilityService is a pure query over a profile's tier and any matching
// grant; it never mutates anything.
type VisibilityService interface {
	CanView(ctx context.Context, viewerOrgID uuid.UUID, profile *types.ProfileRecord) (VisibilityDecision, error)
	CanViewByID(ctx context.Context, viewerOrgID, profileRecordID uuid.UUID) (VisibilityDecision, error)
}

type visibilityService struct {
	db           *gorm.DB
	log          *logger.Logger
	profileRepo  repos.ProfileRecordRepo
	employeeRepo repos.EmployeeRepo
	accessRepo   repos.AccessRequestRepo
}

func NewVisibilityService(
	db *gorm.DB,
	baseLog *logger.Logger,
	profileRepo repos.ProfileRecordRepo,
	employeeRepo repos.EmployeeRepo,
	accessRepo repos.AccessRequestRepo,
) VisibilityService {
	return &visibilityService{
		db:           db,
		log:          baseLog.With("service", "VisibilityService"),
		profileRepo:  profileRepo,
		employeeRepo: employeeRepo,
		accessRepo:   accessRepo,
	}
}

func (s *visibilityService) CanView(ctx context.Context, viewerOrgID uuid.UUID, profile *types.ProfileRecord) (VisibilityDecision, error) {
	if profile == nil {
		return VisibilityDecision{}, apierr.InvalidArgument("missing profile record")
	}
	if viewerOrgID == uuid.Nil {
		return VisibilityDecision{}, apierr.InvalidArgument("missing viewer organization id")
	}

	// The authoring organization and the subject's current employer both
	// count as owners.
	if profile.OrganizationID == viewerOrgID {
		return VisibilityDecision{Visible: true}, nil
	}
	emp, err := s.employeeRepo.GetByID(ctx, nil, profile.EmployeeID)
	if err != nil {
		return VisibilityDecision{}, err
	}
	if emp != nil && emp.OrganizationID != nil && *emp.OrganizationID == viewerOrgID {
		return VisibilityDecision{Visible: true}, nil
	}

	switch profile.Visibility {
	case types.TierPublic:
		return VisibilityDecision{Visible: true}, nil
	case types.TierPrivate:
		return VisibilityDecision{Visible: false, NeedsRequest: false}, nil
	case types.TierOrgVisible:
		authorized, err := s.hasProfileGrant(ctx, viewerOrgID, profile.EmployeeID, profile.ID)
		if err != nil {
			return VisibilityDecision{}, err
		}
		return VisibilityDecision{
			Visible:      authorized,
			NeedsRequest: !authorized,
			Authorized:   authorized,
		}, nil
	}
	return VisibilityDecision{}, apierr.InvalidArgument("invalid visibility tier: %s", profile.Visibility)
}

func (s *visibilityService) CanViewByID(ctx context.Context, viewerOrgID, profileRecordID uuid.UUID) (VisibilityDecision, error) {
	profile, err := s.profileRepo.GetByID(ctx, nil, profileRecordID)
	if err != nil {
		return VisibilityDecision{}, err
	}
	if profile == nil {
		return VisibilityDecision{}, apierr.NotFound("profile record %s not found", profileRecordID)
	}
	return s.CanView(ctx, viewerOrgID, profile)
}

func (s *visibilityService) hasProfileGrant(ctx context.Context, orgID, subjectID, profileRecordID uuid.UUID) (bool, error) {
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
