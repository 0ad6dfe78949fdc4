package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ssingh-rookie/LeafWise-API/internal/healthassess"
	"github.com/ssingh-rookie/LeafWise-API/internal/http/response"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/apierr"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/ctxutil"
)

type HealthAssessHandler struct {
	pipeline *healthassess.Pipeline
}

func NewHealthAssessHandler(pipeline *healthassess.Pipeline) *HealthAssessHandler {
	return &HealthAssessHandler{pipeline: pipeline}
}

type assessRequest struct {
	PlantID              string   `json:"plantId"`
	Images               []string `json:"images"`
	SymptomsDescription  string   `json:"symptomsDescription"`
}

// POST /api/v1/health/assess (spec §6.1)
func (h *HealthAssessHandler) Assess(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apierr.Validation("invalid request body", err))
		return
	}

	plantID, err := uuid.Parse(req.PlantID)
	if err != nil {
		response.Error(c, apierr.Validation("plantId must be a valid uuid", err))
		return
	}
	if len(req.Images) == 0 || len(req.Images) > 3 {
		response.Error(c, apierr.Validation("health assessment accepts between 1 and 3 images", nil))
		return
	}

	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.Error(c, apierr.Unauthorized("missing request identity"))
		return
	}

	result, err := h.pipeline.Run(c.Request.Context(), rd.UserID, plantID, req.Images, req.SymptomsDescription)
	if err != nil {
		response.Error(c, err)
		return
	}

	issues := make([]gin.H, 0, len(result.Issues))
	for _, ir := range result.Issues {
		issues = append(issues, gin.H{"issue": ir.Issue, "steps": ir.Steps})
	}

	response.OKWithMeta(c, gin.H{
		"issues": issues,
	}, gin.H{"provider": result.Provider})
}
