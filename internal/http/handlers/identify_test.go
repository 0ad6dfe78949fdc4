package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	photorepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/photo"
	speciesrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/species"
	"github.com/ssingh-rookie/LeafWise-API/internal/data/repos/testutil"
	usagerepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/usage"
	"github.com/ssingh-rookie/LeafWise-API/internal/identify"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/ctxutil"
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

type noopBucket struct{}

func (noopBucket) Put(ctx context.Context, key string, file io.Reader) error { return nil }
func (noopBucket) Delete(ctx context.Context, key string) error             { return nil }
func (noopBucket) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func newTestIdentifyHandler(t *testing.T) (*IdentifyHandler, *fakeIdentifier, *fakeVisionFallback) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	identifier := &fakeIdentifier{}
	vision := &fakeVisionFallback{}
	rt := router.New(router.Deps{
		DB:              db,
		UsageRepo:       usagerepo.New(db, log),
		PlantIdentifier: identifier,
		VisionFallback:  vision,
	}, log)
	res := resolver.New(speciesrepo.New(db, log), log)
	pipeline := identify.New(rt, res, noopBucket{}, photorepo.New(db, log), log)
	return NewIdentifyHandler(pipeline), identifier, vision
}

func newRequestWithIdentity(method, path string, body any, userID uuid.UUID) *http.Request {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	ctx := ctxutil.WithRequestData(req.Context(), &ctxutil.RequestData{UserID: userID, Tier: "free"})
	return req.WithContext(ctx)
}

func TestIdentifyHandlerReturnsSpeciesOnSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, identifier, _ := newTestIdentifyHandler(t)
	identifier.result = providers.IdentificationResult{
		IsPlant: true,
		Top: providers.IdentificationSuggestion{
			ScientificName: "Monstera deliciosa",
			Confidence:     0.95,
			Family:         "Araceae",
			CommonNames:    []string{"Swiss cheese plant"},
		},
	}

	r := gin.New()
	r.POST("/identify", h.Identify)

	req := newRequestWithIdentity(http.MethodPost, "/identify", identifyRequest{Images: []string{"not-really-base64"}}, uuid.New())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Species speciesPayload `json:"species"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.Success {
		t.Fatal("expected success=true")
	}
	if body.Data.Species.ScientificName != "Monstera deliciosa" {
		t.Fatalf("unexpected scientific name %q", body.Data.Species.ScientificName)
	}
}

func TestIdentifyHandlerReportsGeminiAsWireProviderOnFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, identifier, vision := newTestIdentifyHandler(t)
	identifier.err = &providers.GatewayError{Provider: "plant-id", Code: providers.ErrCodeServiceError}
	vision.result = providers.VisionResult{
		ScientificName: "Ficus lyrata",
		Confidence:     0.8,
		Family:         "Moraceae",
		Genus:          "Ficus",
		CommonNames:    []string{"Fiddle-leaf fig"},
	}

	r := gin.New()
	r.POST("/identify", h.Identify)

	req := newRequestWithIdentity(http.MethodPost, "/identify", identifyRequest{Images: []string{"not-really-base64"}}, uuid.New())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Meta struct {
			Provider string `json:"provider"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Meta.Provider != "gemini" {
		t.Fatalf("expected meta.provider \"gemini\" per spec, got %q", body.Meta.Provider)
	}
}

func TestIdentifyHandlerRequiresRequestIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _, _ := newTestIdentifyHandler(t)

	r := gin.New()
	r.POST("/identify", h.Identify)

	b, _ := json.Marshal(identifyRequest{Images: []string{"img"}})
	req := httptest.NewRequest(http.MethodPost, "/identify", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without request identity, got %d", rec.Code)
	}
}

func TestIdentifyHandlerRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _, _ := newTestIdentifyHandler(t)

	r := gin.New()
	r.POST("/identify", h.Identify)

	req := newRequestWithIdentity(http.MethodPost, "/identify", nil, uuid.New())
	req.Body = io.NopCloser(bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for a malformed body, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestIdentifyHandlerPropagatesPipelineFailureAsAIUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, identifier, vision := newTestIdentifyHandler(t)
	identifier.err = &providers.GatewayError{Provider: "plant-id", Code: providers.ErrCodeAuth}
	vision.err = &providers.GatewayError{Provider: "vision-fallback", Code: providers.ErrCodeAuth}

	r := gin.New()
	r.POST("/identify", h.Identify)

	req := newRequestWithIdentity(http.MethodPost, "/identify", identifyRequest{Images: []string{"not-really-base64"}}, uuid.New())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when every identification provider fails, got %d: %s", rec.Code, rec.Body.String())
	}
}
