package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ssingh-rookie/LeafWise-API/internal/platform/envutil"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

// VisionResult is the strict JSON shape the Vision Fallback's prompt
// instructs the model to emit (spec §4.2 item 2).
type VisionResult struct {
	ScientificName string
	CommonNames    []string
	Family         string
	Genus          string
	Confidence     float64
}

// unknownVisionResult is the sentinel returned on parse failure: the parser
// never throws on parse alone.
func unknownVisionResult() VisionResult {
	return VisionResult{ScientificName: "Unknown", Family: "Unknown", Genus: "Unknown", CommonNames: []string{}, Confidence: 0}
}

type VisionFallback interface {
	Identify(ctx context.Context, imagesBase64 []string) (VisionResult, error)
}

type visionFallbackGateway struct {
	httpGateway
	model string
}

func NewVisionFallback(log *logger.Logger) (VisionFallback, error) {
	apiKey := strings.TrimSpace(os.Getenv("VISION_FALLBACK_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing env var VISION_FALLBACK_API_KEY")
	}
	baseURL := envutil.GetEnv("VISION_FALLBACK_BASE_URL", "https://generativelanguage.googleapis.com/v1beta", log)
	model := envutil.GetEnv("VISION_FALLBACK_MODEL", "gemini-1.5-flash", log)
	return &visionFallbackGateway{
		httpGateway: newHTTPGateway("vision-fallback", baseURL, apiKey, "x-goog-api-key", "", 15*time.Second),
		model:       model,
	}, nil
}

const visionFallbackPrompt = `Identify the plant species shown in the images. Respond with ONLY a strict JSON object, no surrounding prose, matching exactly:
{"scientificName": string, "commonNames": string[], "family": string, "genus": string, "confidence": number between 0 and 1}`

type visionFallbackRequest struct {
	Contents []visionFallbackContent `json:"contents"`
}

type visionFallbackContent struct {
	Parts []visionFallbackPart `json:"parts"`
}

type visionFallbackPart struct {
	Text       string                   `json:"text,omitempty"`
	InlineData *visionFallbackInlineData `json:"inline_data,omitempty"`
}

type visionFallbackInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type visionFallbackResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *visionFallbackGateway) Identify(ctx context.Context, imagesBase64 []string) (VisionResult, error) {
	parts := []visionFallbackPart{{Text: visionFallbackPrompt}}
	for _, img := range imagesBase64 {
		parts = append(parts, visionFallbackPart{
			InlineData: &visionFallbackInlineData{MimeType: "image/jpeg", Data: StripDataURI(img)},
		})
	}

	var resp visionFallbackResponse
	err := g.doJSON(ctx, fmt.Sprintf("/models/%s:generateContent", g.model), visionFallbackRequest{
		Contents: []visionFallbackContent{{Parts: parts}},
	}, &resp)
	if err != nil {
		return VisionResult{}, err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return unknownVisionResult(), nil
	}

	raw, ok := ExtractJSONObject(resp.Candidates[0].Content.Parts[0].Text)
	if !ok {
		return unknownVisionResult(), nil
	}

	var parsed struct {
		ScientificName string   `json:"scientificName"`
		CommonNames    []string `json:"commonNames"`
		Family         string   `json:"family"`
		Genus          string   `json:"genus"`
		Confidence     float64  `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return unknownVisionResult(), nil
	}

	out := VisionResult{
		ScientificName: orUnknown(parsed.ScientificName),
		Family:         orUnknown(parsed.Family),
		Genus:          orUnknown(parsed.Genus),
		Confidence:     parsed.Confidence,
		CommonNames:    parsed.CommonNames,
	}
	if out.CommonNames == nil {
		out.CommonNames = []string{}
	}
	return out, nil
}
