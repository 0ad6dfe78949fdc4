package router

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ssingh-rookie/LeafWise-API/internal/providers"
)

const healthFallbackSystemPrompt = `You are a plant pathologist. Given a description of a plant's symptoms, respond with ONLY a strict JSON object, no surrounding prose:
{"diagnoses": [{"name": string, "confidence": number between 0 and 1, "steps": string[]}]}`

func healthFallbackPrompt(symptomsDescription string) string {
	desc := strings.TrimSpace(symptomsDescription)
	if desc == "" {
		desc = "no symptoms description was provided; infer the most common issues from typical houseplant care mistakes"
	}
	return fmt.Sprintf("Symptoms: %s", desc)
}

// parseHealthFallbackContent turns the LLM fallback's JSON text into a
// HealthAssessment. On parse failure it returns an empty assessment rather
// than erroring, matching the Vision Fallback gateway's "never throws on
// parse alone" contract.
func parseHealthFallbackContent(content string) providers.HealthAssessment {
	raw, ok := providers.ExtractJSONObject(content)
	if !ok {
		return providers.HealthAssessment{}
	}
	var parsed struct {
		Diagnoses []struct {
			Name       string   `json:"name"`
			Confidence float64  `json:"confidence"`
			Steps      []string `json:"steps"`
		} `json:"diagnoses"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return providers.HealthAssessment{}
	}
	out := providers.HealthAssessment{}
	for _, d := range parsed.Diagnoses {
		out.Diagnoses = append(out.Diagnoses, providers.HealthDiagnosis{
			Name:       d.Name,
			Confidence: d.Confidence,
			Steps:      d.Steps,
		})
	}
	return out
}
