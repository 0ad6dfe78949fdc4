package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ssingh-rookie/LeafWise-API/internal/identify"
	"github.com/ssingh-rookie/LeafWise-API/internal/http/response"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/apierr"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/ctxutil"
)

type IdentifyHandler struct {
	pipeline *identify.Pipeline
}

func NewIdentifyHandler(pipeline *identify.Pipeline) *IdentifyHandler {
	return &IdentifyHandler{pipeline: pipeline}
}

type identifyRequest struct {
	Images []string `json:"images"`
}

type speciesPayload struct {
	ID             *string  `json:"id"`
	ScientificName string   `json:"scientificName"`
	CommonNames    []string `json:"commonNames"`
	Family         string   `json:"family"`
	Confidence     float64  `json:"confidence"`
}

type photoPayload struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// POST /api/v1/identify (spec §6.1)
func (h *IdentifyHandler) Identify(c *gin.Context) {
	var req identifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apierr.Validation("invalid request body", err))
		return
	}

	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.Error(c, apierr.Unauthorized("missing request identity"))
		return
	}

	result, err := h.pipeline.Run(c.Request.Context(), rd.UserID, req.Images)
	if err != nil {
		response.Error(c, err)
		return
	}

	similar := make([]speciesPayload, 0, len(result.SimilarSpecies))
	for _, alt := range result.SimilarSpecies {
		similar = append(similar, toSpeciesPayload(alt))
	}

	response.OKWithMeta(c, gin.H{
		"species":        toSpeciesPayload(result.Top),
		"similarSpecies": similar,
		"photo": photoPayload{
			URL:          result.PhotoURL,
			ThumbnailURL: result.ThumbnailURL,
		},
	}, gin.H{
		"provider":         result.Provider,
		"processingTimeMs": result.ProcessingTimeMS,
	})
}

func toSpeciesPayload(s identify.Suggestion) speciesPayload {
	var id *string
	if s.SpeciesID != nil {
		v := s.SpeciesID.String()
		id = &v
	}
	return speciesPayload{
		ID:             id,
		ScientificName: s.ScientificName,
		CommonNames:    s.CommonNames,
		Family:         s.Family,
		Confidence:     s.Confidence,
	}
}
