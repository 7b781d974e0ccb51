package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/requestdata"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/services"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type LedgerHandler struct {
	ledgerService services.LedgerService
}

func NewLedgerHandler(ledgerService services.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// caller resolves the authenticated identity; nil means the middleware did
// not run, which only happens on a misconfigured route.
func caller(c *gin.Context) *requestdata.RequestData {
	return requestdata.GetRequestData(c.Request.Context())
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))
	return page, size
}

func (lh *LedgerHandler) Balance(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgID"))
	if err != nil {
		RespondBadRequest(c, "invalid organization id")
		return
	}
	balance, err := lh.ledgerService.BalanceOf(c.Request.Context(), orgID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"organization_id": orgID, "balance": balance})
}

func (lh *LedgerHandler) History(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgID"))
	if err != nil {
		RespondBadRequest(c, "invalid organization id")
		return
	}
	page, size := pageParams(c)
	entries, err := lh.ledgerService.History(c.Request.Context(), orgID, page, size)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"entries": entries})
}

// Credit is the administrative grant endpoint. Market admins use it to issue
// points; the reason is constrained to the closed ledger vocabulary.
func (lh *LedgerHandler) Credit(c *gin.Context) {
	var req struct {
		OrganizationID uuid.UUID  `json:"organization_id"`
		Delta          int64      `json:"delta"`
		Reason         string     `json:"reason"`
		RelatedID      *uuid.UUID `json:"related_id,omitempty"`
		Description    string     `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	rd := caller(c)
	if rd == nil || rd.Role != types.RoleAdmin {
		RespondError(c, adminOnlyErr())
		return
	}
	reason, err := types.ParseLedgerReason(req.Reason)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	entryID, err := lh.ledgerService.Credit(c.Request.Context(), nil, req.OrganizationID, req.Delta, reason, req.RelatedID, req.Description)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"entry_id": entryID})
}
