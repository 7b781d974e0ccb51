package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/services"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type PricingHandler struct {
	pricingService services.PricingService
}

func NewPricingHandler(pricingService services.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

func (ph *PricingHandler) List(c *gin.Context) {
	prices, err := ph.pricingService.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"prices": prices})
}

func (ph *PricingHandler) SetPrice(c *gin.Context) {
	rd := caller(c)
	if rd == nil || rd.Role != types.RoleAdmin {
		RespondError(c, adminOnlyErr())
		return
	}
	var req struct {
		Kind       string `json:"kind"`
		PointsCost int64  `json:"points_cost"`
		Active     *bool  `json:"active,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	kind, err := types.ParseEvaluationKind(req.Kind)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	if err := ph.pricingService.SetPrice(c.Request.Context(), kind, req.PointsCost, active); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"kind": kind, "points_cost": req.PointsCost, "active": active})
}
