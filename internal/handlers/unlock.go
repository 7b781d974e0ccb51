package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/services"
)

type UnlockHandler struct {
	unlockService services.UnlockService
}

func NewUnlockHandler(unlockService services.UnlockService) *UnlockHandler {
	return &UnlockHandler{unlockService: unlockService}
}

// callerOrg requires an organization-bound identity; employee accounts have
// no unlock surface.
func callerOrg(c *gin.Context) (uuid.UUID, error) {
	rd := caller(c)
	if rd == nil || rd.OrganizationID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("an organization account is required")
	}
	return rd.OrganizationID, nil
}

func (uh *UnlockHandler) Unlock(c *gin.Context) {
	orgID, err := callerOrg(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	evaluationID, err := uuid.Parse(c.Param("evaluationID"))
	if err != nil {
		RespondBadRequest(c, "invalid evaluation id")
		return
	}
	cost, err := uh.unlockService.Unlock(c.Request.Context(), orgID, evaluationID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"evaluation_id": evaluationID, "points_spent": cost})
}

func (uh *UnlockHandler) BatchUnlock(c *gin.Context) {
	orgID, err := callerOrg(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req struct {
		EvaluationIDs []uuid.UUID `json:"evaluation_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	result, err := uh.unlockService.BatchUnlock(c.Request.Context(), orgID, req.EvaluationIDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (uh *UnlockHandler) IsUnlocked(c *gin.Context) {
	orgID, err := callerOrg(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	evaluationID, err := uuid.Parse(c.Param("evaluationID"))
	if err != nil {
		RespondBadRequest(c, "invalid evaluation id")
		return
	}
	unlocked, err := uh.unlockService.IsUnlocked(c.Request.Context(), orgID, evaluationID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"evaluation_id": evaluationID, "unlocked": unlocked})
}
