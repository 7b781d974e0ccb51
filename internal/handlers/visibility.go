package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/services"
)

type VisibilityHandler struct {
	visibilityService services.VisibilityService
}

func NewVisibilityHandler(visibilityService services.VisibilityService) *VisibilityHandler {
	return &VisibilityHandler{visibilityService: visibilityService}
}

func (vh *VisibilityHandler) CanView(c *gin.Context) {
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
	decision, err := vh.visibilityService.CanViewByID(c.Request.Context(), orgID, recordID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, decision)
}
