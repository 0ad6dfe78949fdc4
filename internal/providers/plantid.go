package providers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ssingh-rookie/LeafWise-API/internal/platform/envutil"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

// IdentificationSuggestion is one candidate species from the Plant
// Identifier gateway (spec §4.2 item 1).
type IdentificationSuggestion struct {
	ScientificName   string
	Confidence       float64
	SimilarImageURL  string
	Family           string
	Genus            string
	CommonNames      []string
	Description      string
	Toxicity         string
	PlantIDSpeciesID string
}

type IdentificationResult struct {
	IsPlant     bool
	Top         IdentificationSuggestion
	Alternates  []IdentificationSuggestion // up to 4
}

type PlantIdentifier interface {
	Identify(ctx context.Context, imagesBase64 []string) (IdentificationResult, error)
}

type plantIDGateway struct {
	httpGateway
}

func NewPlantIdentifier(log *logger.Logger) (PlantIdentifier, error) {
	return newPlantIDGateway(log)
}

// NewPlantHealthAssessor builds against the same plant.id gateway as
// NewPlantIdentifier (one vendor account, two endpoints) but through the
// PlantHealthAssessor interface the health_assessment chain needs.
func NewPlantHealthAssessor(log *logger.Logger) (PlantHealthAssessor, error) {
	return newPlantIDGateway(log)
}

func newPlantIDGateway(log *logger.Logger) (*plantIDGateway, error) {
	apiKey := strings.TrimSpace(os.Getenv("PLANT_ID_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing env var PLANT_ID_API_KEY")
	}
	baseURL := envutil.GetEnv("PLANT_ID_BASE_URL", "https://plant.id/api/v3", log)
	return &plantIDGateway{
		httpGateway: newHTTPGateway("plant-id", baseURL, apiKey, "Api-Key", "", 10*time.Second),
	}, nil
}

type plantIDRequest struct {
	Images           []string `json:"images"`
	SimilarImages    bool     `json:"similar_images"`
	Classification   bool     `json:"classification_level"`
}

type plantIDResponse struct {
	IsPlant struct {
		Binary bool `json:"binary"`
	} `json:"is_plant"`
	Classification struct {
		Suggestions []struct {
			ID          string  `json:"id"`
			Name        string  `json:"name"`
			Probability float64 `json:"probability"`
			SimilarImages []struct {
				URL string `json:"url"`
			} `json:"similar_images"`
			Details struct {
				Taxonomy struct {
					Family string `json:"family"`
					Genus  string `json:"genus"`
				} `json:"taxonomy"`
				CommonNames []string `json:"common_names"`
				Description struct {
					Value string `json:"value"`
				} `json:"description"`
				Toxicity string `json:"toxicity"`
			} `json:"details"`
		} `json:"suggestions"`
	} `json:"classification"`
}

func (g *plantIDGateway) Identify(ctx context.Context, imagesBase64 []string) (IdentificationResult, error) {
	normalized := make([]string, 0, len(imagesBase64))
	for _, img := range imagesBase64 {
		normalized = append(normalized, StripDataURI(img))
	}

	var resp plantIDResponse
	err := g.doJSON(ctx, "/identification", plantIDRequest{
		Images:         normalized,
		SimilarImages:  true,
		Classification: true,
	}, &resp)
	if err != nil {
		return IdentificationResult{}, err
	}

	toSuggestion := func(s struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Probability float64 `json:"probability"`
		SimilarImages []struct {
			URL string `json:"url"`
		} `json:"similar_images"`
		Details struct {
			Taxonomy struct {
				Family string `json:"family"`
				Genus  string `json:"genus"`
			} `json:"taxonomy"`
			CommonNames []string `json:"common_names"`
			Description struct {
				Value string `json:"value"`
			} `json:"description"`
			Toxicity string `json:"toxicity"`
		} `json:"details"`
	}) IdentificationSuggestion {
		out := IdentificationSuggestion{
			ScientificName:   orUnknown(s.Name),
			Confidence:       s.Probability,
			Family:           orUnknown(s.Details.Taxonomy.Family),
			Genus:            orUnknown(s.Details.Taxonomy.Genus),
			CommonNames:      s.Details.CommonNames,
			Description:      s.Details.Description.Value,
			Toxicity:         s.Details.Toxicity,
			PlantIDSpeciesID: s.ID,
		}
		if len(s.SimilarImages) > 0 {
			out.SimilarImageURL = s.SimilarImages[0].URL
		}
		if out.CommonNames == nil {
			out.CommonNames = []string{}
		}
		return out
	}

	result := IdentificationResult{IsPlant: resp.IsPlant.Binary}
	suggestions := resp.Classification.Suggestions
	if len(suggestions) == 0 {
		return result, nil
	}
	result.Top = toSuggestion(suggestions[0])
	for i := 1; i < len(suggestions) && i <= 4; i++ {
		result.Alternates = append(result.Alternates, toSuggestion(suggestions[i]))
	}
	return result, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

// HealthAssessment is the Plant Identifier gateway's health-mode result
// (chain entry "PlantIdentifier-Health", spec §4.3 table).
type HealthAssessment struct {
	Diagnoses []HealthDiagnosis
}

type HealthDiagnosis struct {
	Name       string
	Confidence float64
	Steps      []string
}

type PlantHealthAssessor interface {
	AssessHealth(ctx context.Context, imagesBase64 []string, symptomsDescription string) (HealthAssessment, error)
}

type plantIDHealthRequest struct {
	Images               []string `json:"images"`
	SymptomsDescription  string   `json:"symptoms_description,omitempty"`
}

type plantIDHealthResponse struct {
	HealthAssessment struct {
		Diseases []struct {
			Name        string  `json:"name"`
			Probability float64 `json:"probability"`
			Treatment   struct {
				Prevention []string `json:"prevention"`
				Biological []string `json:"biological"`
				Chemical   []string `json:"chemical"`
			} `json:"treatment"`
		} `json:"diseases"`
	} `json:"health_assessment"`
}

func (g *plantIDGateway) AssessHealth(ctx context.Context, imagesBase64 []string, symptomsDescription string) (HealthAssessment, error) {
	normalized := make([]string, 0, len(imagesBase64))
	for _, img := range imagesBase64 {
		normalized = append(normalized, StripDataURI(img))
	}

	var resp plantIDHealthResponse
	err := g.doJSON(ctx, "/health_assessment", plantIDHealthRequest{
		Images:              normalized,
		SymptomsDescription: symptomsDescription,
	}, &resp)
	if err != nil {
		return HealthAssessment{}, err
	}

	out := HealthAssessment{}
	for _, d := range resp.HealthAssessment.Diseases {
		steps := append(append([]string{}, d.Treatment.Prevention...), d.Treatment.Biological...)
		steps = append(steps, d.Treatment.Chemical...)
		out.Diagnoses = append(out.Diagnoses, HealthDiagnosis{
			Name:       orUnknown(d.Name),
			Confidence: d.Probability,
			Steps:      steps,
		})
	}
	return out, nil
}
