package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/services"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type DirectoryHandler struct {
	directoryService services.DirectoryService
}

func NewDirectoryHandler(directoryService services.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

func (dh *DirectoryHandler) CreateOrganization(c *gin.Context) {
	rd := caller(c)
	if rd == nil || rd.Role != types.RoleAdmin {
		RespondError(c, adminOnlyErr())
		return
	}
	var req struct {
		Name     string `json:"name"`
		Industry string `json:"industry"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	org, err := dh.directoryService.CreateOrganization(c.Request.Context(), req.Name, req.Industry)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, org)
}

func (dh *DirectoryHandler) GetOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgID"))
	if err != nil {
		RespondBadRequest(c, "invalid organization id")
		return
	}
	org, err := dh.directoryService.GetOrganization(c.Request.Context(), orgID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, org)
}

func (dh *DirectoryHandler) ListOrganizations(c *gin.Context) {
	page, size := pageParams(c)
	orgs, err := dh.directoryService.ListOrganizations(c.Request.Context(), page, size)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"organizations": orgs})
}

func (dh *DirectoryHandler) CreateEmployee(c *gin.Context) {
	rd := caller(c)
	if rd == nil || !rd.Role.CanManageAccess() {
		RespondError(c, apierr.Unauthorized("a managing role is required"))
		return
	}
	var employee types.Employee
	if err := c.ShouldBindJSON(&employee); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	created, err := dh.directoryService.CreateEmployee(c.Request.Context(), &employee)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, created)
}

func (dh *DirectoryHandler) GetEmployee(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("employeeID"))
	if err != nil {
		RespondBadRequest(c, "invalid employee id")
		return
	}
	employee, err := dh.directoryService.GetEmployee(c.Request.Context(), employeeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, employee)
}

func (dh *DirectoryHandler) ListEmployees(c *gin.Context) {
	orgID, err := callerOrg(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	page, size := pageParams(c)
	employees, err := dh.directoryService.ListEmployees(c.Request.Context(), orgID, page, size)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"employees": employees})
}

func (dh *DirectoryHandler) CreateEvaluation(c *gin.Context) {
	rd := caller(c)
	if rd == nil || !rd.Role.CanManageAccess() {
		RespondError(c, apierr.Unauthorized("a managing role is required"))
		return
	}
	var req services.CreateEvaluationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	if req.OrganizationID == uuid.Nil {
		req.OrganizationID = rd.OrganizationID
	}
	eval, err := dh.directoryService.CreateEvaluation(c.Request.Context(), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, eval)
}

func (dh *DirectoryHandler) CreateProfileRecord(c *gin.Context) {
	rd := caller(c)
	if rd == nil || !rd.Role.CanManageAccess() {
		RespondError(c, apierr.Unauthorized("a managing role is required"))
		return
	}
	var req services.CreateProfileRecordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	if req.OrganizationID == uuid.Nil {
		req.OrganizationID = rd.OrganizationID
	}
	record, err := dh.directoryService.CreateProfileRecord(c.Request.Context(), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, record)
}

func (dh *DirectoryHandler) SetProfileVisibility(c *gin.Context) {
	orgID, err := callerOrg(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	recordID, err := uuid.Parse(c.Param("recordID"))
	if err != nil {
		RespondBadRequest(c, "invalid profile record id")
		return
	}
	var req struct {
		Visibility string `json:"visibility"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	tier, err := types.ParseVisibilityTier(req.Visibility)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	if err := dh.directoryService.SetProfileVisibility(c.Request.Context(), orgID, recordID, tier); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"record_id": recordID, "visibility": tier})
}
