package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/services"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type AccessHandler struct {
	accessService services.AccessRequestService
}

func NewAccessHandler(accessService services.AccessRequestService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

func (ah *AccessHandler) Create(c *gin.Context) {
	rd := caller(c)
	if rd == nil || rd.OrganizationID == uuid.Nil {
		RespondError(c, apierr.Unauthorized("an organization account is required"))
		return
	}
	var req struct {
		SubjectEmployeeID uuid.UUID  `json:"subject_employee_id"`
		Scope             string     `json:"scope"`
		ProfileRecordID   *uuid.UUID `json:"profile_record_id,omitempty"`
		Reason            string     `json:"reason"`
		ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	scope, err := types.ParseAccessScope(req.Scope)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	request, err := ah.accessService.CreateRequest(c.Request.Context(), services.CreateAccessRequestInput{
		RequestingOrgID:   rd.OrganizationID,
		SubjectEmployeeID: req.SubjectEmployeeID,
		Scope:             scope,
		ProfileRecordID:   req.ProfileRecordID,
		Reason:            req.Reason,
		ProposedExpiresAt: req.ExpiresAt,
		CallerRole:        rd.Role,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, request)
}

func (ah *AccessHandler) Respond(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		RespondError(c, apierr.Unauthorized("authentication required"))
		return
	}
	requestID, err := uuid.Parse(c.Param("requestID"))
	if err != nil {
		RespondBadRequest(c, "invalid request id")
		return
	}
	var req struct {
		Status    string     `json:"status"`
		ExpiresAt *time.Time `json:"expires_at,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	status, err := types.ParseRequestStatus(req.Status)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	request, err := ah.accessService.Respond(c.Request.Context(), requestID, rd.UserID, status, req.ExpiresAt)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, request)
}

// Check answers "does my organization currently hold this scope on this
// subject" without touching any state.
func (ah *AccessHandler) Check(c *gin.Context) {
	rd := caller(c)
	if rd == nil || rd.OrganizationID == uuid.Nil {
		RespondError(c, apierr.Unauthorized("an organization account is required"))
		return
	}
	subjectID, err := uuid.Parse(c.Param("subjectID"))
	if err != nil {
		RespondBadRequest(c, "invalid subject id")
		return
	}
	scope, err := types.ParseAccessScope(c.Query("scope"))
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	authorized, err := ah.accessService.HasAuthorizedAccess(c.Request.Context(), rd.OrganizationID, subjectID, scope)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"subject_id": subjectID, "scope": scope, "authorized": authorized})
}

func (ah *AccessHandler) ListMine(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		RespondError(c, apierr.Unauthorized("authentication required"))
		return
	}
	page, size := pageParams(c)
	if rd.EmployeeID != uuid.Nil {
		requests, err := ah.accessService.ListForSubject(c.Request.Context(), rd.EmployeeID, page, size)
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, gin.H{"requests": requests})
		return
	}
	if rd.OrganizationID == uuid.Nil {
		RespondError(c, apierr.Unauthorized("no organization or employee bound to this account"))
		return
	}
	requests, err := ah.accessService.ListForOrganization(c.Request.Context(), rd.OrganizationID, page, size)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"requests": requests})
}
