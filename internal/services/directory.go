package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/repos"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type CreateEvaluationInput struct {
	SubjectID      uuid.UUID `json:"subject_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Kind           string    `json:"kind"`
	Score          int       `json:"score"`
	Content        string    `json:"content"`
}

type CreateProfileRecordInput struct {
	EmployeeID     uuid.UUID  `json:"employee_id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Visibility     string     `json:"visibility"`
	Title          string     `json:"title"`
	Summary        string     `json:"summary"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

// DirectoryService is the write path for the market's base records. The
// interesting rules all live elsewhere: once a row exists here, the unlock
// economy and the visibility policy decide who gets to read it.
type DirectoryService interface {
	CreateOrganization(ctx context.Context, name, industry string) (*types.Organization, error)
	GetOrganization(ctx context.Context, orgID uuid.UUID) (*types.Organization, error)
	ListOrganizations(ctx context.Context, page, size int) ([]*types.Organization, error)
	CreateEmployee(ctx context.Context, employee *types.Employee) (*types.Employee, error)
	GetEmployee(ctx context.Context, employeeID uuid.UUID) (*types.Employee, error)
	ListEmployees(ctx context.Context, orgID uuid.UUID, page, size int) ([]*types.Employee, error)
	CreateEvaluation(ctx context.Context, in CreateEvaluationInput) (*types.Evaluation, error)
	CreateProfileRecord(ctx context.Context, in CreateProfileRecordInput) (*types.ProfileRecord, error)
	SetProfileVisibility(ctx context.Context, orgID, recordID uuid.UUID, tier types.VisibilityTier) error
}

type directoryService struct {
	db             *gorm.DB
	log            *logger.Logger
	orgRepo        repos.OrganizationRepo
	employeeRepo   repos.EmployeeRepo
	evaluationRepo repos.EvaluationRepo
	profileRepo    repos.ProfileRecordRepo
}

func NewDirectoryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	orgRepo repos.OrganizationRepo,
	employeeRepo repos.EmployeeRepo,
	evaluationRepo repos.EvaluationRepo,
	profileRepo repos.ProfileRecordRepo,
) DirectoryService {
	return &directoryService{
		db:             db,
		log:            baseLog.With("service", "DirectoryService"),
		orgRepo:        orgRepo,
		employeeRepo:   employeeRepo,
		evaluationRepo: evaluationRepo,
		profileRepo:    profileRepo,
	}
}

func (ds *directoryService) CreateOrganization(ctx context.Context, name, industry string) (*types.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.InvalidArgument("organization name is required")
	}
	org := &types.Organization{ID: uuid.New(), Name: name, Industry: industry}
	if _, err := ds.orgRepo.Create(ctx, nil, []*types.Organization{org}); err != nil {
		if repos.IsDuplicateKey(err) {
			return nil, apierr.Conflict("organization %q already exists", name)
		}
		return nil, err
	}
	ds.log.Info("Created organization", "organization_id", org.ID, "name", name)
	return org, nil
}

func (ds *directoryService) GetOrganization(ctx context.Context, orgID uuid.UUID) (*types.Organization, error) {
	org, err := ds.orgRepo.GetByID(ctx, nil, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apierr.NotFound("organization %s does not exist", orgID)
	}
	return org, nil
}

func (ds *directoryService) ListOrganizations(ctx context.Context, page, size int) ([]*types.Organization, error) {
	return ds.orgRepo.List(ctx, nil, page, size)
}

func (ds *directoryService) CreateEmployee(ctx context.Context, employee *types.Employee) (*types.Employee, error) {
	if strings.TrimSpace(employee.FirstName) == "" || strings.TrimSpace(employee.LastName) == "" {
		return nil, apierr.InvalidArgument("employee first and last name are required")
	}
	if employee.OrganizationID != nil {
		exists, err := ds.orgRepo.Exists(ctx, nil, *employee.OrganizationID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apierr.NotFound("organization %s does not exist", employee.OrganizationID)
		}
	}
	employee.ID = uuid.New()
	if _, err := ds.employeeRepo.Create(ctx, nil, []*types.Employee{employee}); err != nil {
		return nil, err
	}
	return employee, nil
}

func (ds *directoryService) GetEmployee(ctx context.Context, employeeID uuid.UUID) (*types.Employee, error) {
	emp, err := ds.employeeRepo.GetByID(ctx, nil, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, apierr.NotFound("employee %s does not exist", employeeID)
	}
	return emp, nil
}

func (ds *directoryService) ListEmployees(ctx context.Context, orgID uuid.UUID, page, size int) ([]*types.Employee, error) {
	return ds.employeeRepo.ListByOrganization(ctx, nil, orgID, page, size)
}

func (ds *directoryService) CreateEvaluation(ctx context.Context, in CreateEvaluationInput) (*types.Evaluation, error) {
	kind, err := types.ParseEvaluationKind(in.Kind)
	if err != nil {
		return nil, apierr.InvalidArgument("%v", err)
	}
	if in.Score < 0 || in.Score > 100 {
		return nil, apierr.InvalidArgument("score must be between 0 and 100")
	}
	subject, err := ds.employeeRepo.GetByID(ctx, nil, in.SubjectID)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, apierr.NotFound("subject %s does not exist", in.SubjectID)
	}
	exists, err := ds.orgRepo.Exists(ctx, nil, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apierr.NotFound("organization %s does not exist", in.OrganizationID)
	}
	eval := &types.Evaluation{
		ID:             uuid.New(),
		SubjectID:      in.SubjectID,
		OrganizationID: in.OrganizationID,
		Kind:           kind,
		Score:          in.Score,
		Content:        in.Content,
	}
	if _, err := ds.evaluationRepo.Create(ctx, nil, []*types.Evaluation{eval}); err != nil {
		return nil, err
	}
	return eval, nil
}

func (ds *directoryService) CreateProfileRecord(ctx context.Context, in CreateProfileRecordInput) (*types.ProfileRecord, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apierr.InvalidArgument("profile record title is required")
	}
	tier := types.TierOrgVisible
	if in.Visibility != "" {
		parsed, err := types.ParseVisibilityTier(in.Visibility)
		if err != nil {
			return nil, apierr.InvalidArgument("%v", err)
		}
		tier = parsed
	}
	emp, err := ds.employeeRepo.GetByID(ctx, nil, in.EmployeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, apierr.NotFound("employee %s does not exist", in.EmployeeID)
	}
	record := &types.ProfileRecord{
		ID:             uuid.New(),
		EmployeeID:     in.EmployeeID,
		OrganizationID: in.OrganizationID,
		Visibility:     tier,
		Title:          in.Title,
		Summary:        in.Summary,
		StartedAt:      in.StartedAt,
		EndedAt:        in.EndedAt,
	}
	if _, err := ds.profileRepo.Create(ctx, nil, []*types.ProfileRecord{record}); err != nil {
		return nil, err
	}
	return record, nil
}

// SetProfileVisibility lets the authoring organization retier its own record.
func (ds *directoryService) SetProfileVisibility(ctx context.Context, orgID, recordID uuid.UUID, tier types.VisibilityTier) error {
	record, err := ds.profileRepo.GetByID(ctx, nil, recordID)
	if err != nil {
		return err
	}
	if record == nil {
		return apierr.NotFound("profile record %s does not exist", recordID)
	}
	if record.OrganizationID != orgID {
		return apierr.Unauthorized("only the authoring organization can change visibility")
	}
	return ds.profileRepo.UpdateFields(ctx, nil, recordID, map[string]interface{}{"visibility": tier})
}
