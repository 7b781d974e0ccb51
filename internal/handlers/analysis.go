package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/services"
)

type AnalysisHandler struct {
	analysisService services.AnalysisService
}

func NewAnalysisHandler(analysisService services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

func (ah *AnalysisHandler) Submit(c *gin.Context) {
	orgID, err := callerOrg(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req struct {
		SubjectIDs []uuid.UUID    `json:"subject_ids"`
		Params     map[string]any `json:"params,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	out, err := ah.analysisService.Submit(c.Request.Context(), orgID, req.SubjectIDs, req.Params)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, out)
}

// Status folds result and error into the poll response so a client never
// needs a second round trip once the task resolves.
func (ah *AnalysisHandler) Status(c *gin.Context) {
	taskID := c.Param("taskID")
	status := ah.analysisService.Status(taskID)
	payload := gin.H{"task_id": taskID, "status": string(status)}
	switch status {
	case services.AnalysisCompleted:
		payload["result"] = json.RawMessage(ah.analysisService.Result(taskID))
	case services.AnalysisFailed:
		payload["error"] = ah.analysisService.Error(taskID)
	}
	RespondOK(c, payload)
}

func subjectIDsQuery(c *gin.Context) ([]uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query("subject_ids"))
	if raw == "" {
		return nil, apierr.InvalidArgument("missing subject_ids query parameter")
	}
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, apierr.InvalidArgument("invalid subject id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// LatestComparison returns the stored record for the exact subject set.
func (ah *AnalysisHandler) LatestComparison(c *gin.Context) {
	orgID, err := callerOrg(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	subjectIDs, err := subjectIDsQuery(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	record, err := ah.analysisService.LatestComparison(c.Request.Context(), orgID, subjectIDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	if record == nil {
		RespondError(c, apierr.NotFound("no comparison exists for this subject set"))
		return
	}
	RespondOK(c, record)
}

// RelatedComparisons returns recent records overlapping the subject set.
func (ah *AnalysisHandler) RelatedComparisons(c *gin.Context) {
	orgID, err := callerOrg(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	subjectIDs, err := subjectIDsQuery(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	records, err := ah.analysisService.RelatedComparisons(c.Request.Context(), orgID, subjectIDs, limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"comparisons": records})
}
