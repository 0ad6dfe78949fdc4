package identify

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	photorepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/photo"
	speciesrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/species"
	usagerepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/usage"
	"github.com/ssingh-rookie/LeafWise-API/internal/data/repos/testutil"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/apierr"
	"github.com/ssingh-rookie/LeafWise-API/internal/providers"
	"github.com/ssingh-rookie/LeafWise-API/internal/resolver"
	"github.com/ssingh-rookie/LeafWise-API/internal/router"
)

type fakeIdentifier struct {
	result providers.IdentificationResult
	err    error
}

func (f *fakeIdentifier) Identify(ctx context.Context, imagesBase64 []string) (providers.IdentificationResult, error) {
	return f.result, f.err
}

type fakeVisionFallback struct {
	result providers.VisionResult
	err    error
}

func (f *fakeVisionFallback) Identify(ctx context.Context, imagesBase64 []string) (providers.VisionResult, error) {
	return f.result, f.err
}

// noopBucket never persists anything; identify's photo upload path is
// best-effort and must not fail the pipeline when it's absent.
type noopBucket struct{}

func (noopBucket) Put(ctx context.Context, key string, file io.Reader) error { return nil }
func (noopBucket) Delete(ctx context.Context, key string) error             { return nil }
func (noopBucket) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func newTestPipeline(t *testing.T, identifier providers.PlantIdentifier, vision providers.VisionFallback) *Pipeline {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	rt := router.New(router.Deps{
		DB:              db,
		UsageRepo:       usagerepo.New(db, log),
		PlantIdentifier: identifier,
		VisionFallback:  vision,
	}, log)
	res := resolver.New(speciesrepo.New(db, log), log)
	return New(rt, res, noopBucket{}, photorepo.New(db, log), log)
}

func TestPipelineRunRejectsZeroOrTooManyImages(t *testing.T) {
	p := newTestPipeline(t, &fakeIdentifier{}, &fakeVisionFallback{})

	_, err := p.Run(context.Background(), uuid.New(), []string{})
	if err == nil {
		t.Fatal("expected an error for zero images")
	}
	apiErr := apierr.As(err)
	if apiErr.Status != 422 || apiErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected a 422 VALIDATION_ERROR for zero images, got %d %s", apiErr.Status, apiErr.Code)
	}

	six := make([]string, 6)
	_, err = p.Run(context.Background(), uuid.New(), six)
	if err == nil {
		t.Fatal("expected an error for more than 5 images")
	}
	apiErr = apierr.As(err)
	if apiErr.Status != 422 || apiErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected a 422 VALIDATION_ERROR for too many images, got %d %s", apiErr.Status, apiErr.Code)
	}
}

func TestPipelineRunResolvesHighConfidenceMatchWithoutAlternates(t *testing.T) {
	identifier := &fakeIdentifier{result: providers.IdentificationResult{
		IsPlant: true,
		Top: providers.IdentificationSuggestion{
			ScientificName: "Monstera deliciosa",
			Confidence:     0.95,
			Family:         "Araceae",
			Genus:          "Monstera",
			CommonNames:    []string{"Swiss cheese plant"},
		},
	}}
	p := newTestPipeline(t, identifier, &fakeVisionFallback{})

	result, err := p.Run(context.Background(), uuid.New(), []string{"not-really-base64"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SpeciesID == nil {
		t.Fatal("expected a resolved species id")
	}
	if result.Top.ScientificName != "Monstera deliciosa" {
		t.Fatalf("expected Monstera deliciosa, got %q", result.Top.ScientificName)
	}
	if len(result.SimilarSpecies) != 0 {
		t.Fatalf("expected no alternates above the confidence threshold, got %d", len(result.SimilarSpecies))
	}
	if result.Provider != "plant-id" {
		t.Fatalf("expected provider plant-id, got %q", result.Provider)
	}
}

func TestPipelineRunTruncatesAlternatesOnLowConfidence(t *testing.T) {
	alternates := make([]providers.IdentificationSuggestion, 7)
	for i := range alternates {
		alternates[i] = providers.IdentificationSuggestion{ScientificName: "Candidate", Confidence: 0.1}
	}
	identifier := &fakeIdentifier{result: providers.IdentificationResult{
		IsPlant: true,
		Top: providers.IdentificationSuggestion{
			ScientificName: "Unclear plant",
			Confidence:     0.2,
		},
		Alternates: alternates,
	}}
	p := newTestPipeline(t, identifier, &fakeVisionFallback{})

	result, err := p.Run(context.Background(), uuid.New(), []string{"not-really-base64"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.SimilarSpecies) != 5 {
		t.Fatalf("expected alternates truncated to 5, got %d", len(result.SimilarSpecies))
	}
}

func TestPipelineRunFallsBackToVisionOnPrimaryFailure(t *testing.T) {
	identifier := &fakeIdentifier{err: &providers.GatewayError{Provider: "plant-id", Code: providers.ErrCodeServiceError}}
	vision := &fakeVisionFallback{result: providers.VisionResult{
		ScientificName: "Ficus lyrata",
		Confidence:     0.8,
		Family:         "Moraceae",
		Genus:          "Ficus",
		CommonNames:    []string{"Fiddle-leaf fig"},
	}}
	p := newTestPipeline(t, identifier, vision)

	result, err := p.Run(context.Background(), uuid.New(), []string{"not-really-base64"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Provider != "gemini" {
		t.Fatalf("expected provider gemini, got %q", result.Provider)
	}
	if result.Top.ScientificName != "Ficus lyrata" {
		t.Fatalf("expected fallback's scientific name, got %q", result.Top.ScientificName)
	}
}

func TestPipelineRunReturnsAIUnavailableWhenChainExhausted(t *testing.T) {
	identifier := &fakeIdentifier{err: &providers.GatewayError{Provider: "plant-id", Code: providers.ErrCodeServiceError}}
	vision := &fakeVisionFallback{err: &providers.GatewayError{Provider: "vision-fallback", Code: providers.ErrCodeServiceError}}
	p := newTestPipeline(t, identifier, vision)

	_, err := p.Run(context.Background(), uuid.New(), []string{"not-really-base64"})
	if err == nil {
		t.Fatal("expected an error when every provider in the chain fails")
	}
}
