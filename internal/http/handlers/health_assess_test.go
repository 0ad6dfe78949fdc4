package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	healthrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/health"
	"github.com/ssingh-rookie/LeafWise-API/internal/data/repos/testutil"
	usagerepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/usage"
	"github.com/ssingh-rookie/LeafWise-API/internal/healthassess"
	"github.com/ssingh-rookie/LeafWise-API/internal/providers"
	"github.com/ssingh-rookie/LeafWise-API/internal/router"
)

type fakeHealthAssessor struct {
	result providers.HealthAssessment
	err    error
}

func (f *fakeHealthAssessor) AssessHealth(ctx context.Context, imagesBase64 []string, symptomsDescription string) (providers.HealthAssessment, error) {
	return f.result, f.err
}

func newTestHealthAssessHandler(t *testing.T) (*HealthAssessHandler, *fakeHealthAssessor) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	assessor := &fakeHealthAssessor{}
	rt := router.New(router.Deps{
		DB:             db,
		UsageRepo:      usagerepo.New(db, log),
		HealthAssessor: assessor,
	}, log)
	pipeline := healthassess.New(rt, healthrepo.New(db, log), log)
	return NewHealthAssessHandler(pipeline), assessor
}

func TestHealthAssessHandlerRejectsInvalidPlantID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newTestHealthAssessHandler(t)
	r := gin.New()
	r.POST("/health/assess", h.Assess)

	req := newRequestWithIdentity(http.MethodPost, "/health/assess", assessRequest{
		PlantID: "not-a-uuid",
		Images:  []string{"img"},
	}, uuid.New())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthAssessHandlerRejectsTooManyImages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newTestHealthAssessHandler(t)
	r := gin.New()
	r.POST("/health/assess", h.Assess)

	req := newRequestWithIdentity(http.MethodPost, "/health/assess", assessRequest{
		PlantID: uuid.New().String(),
		Images:  []string{"a", "b", "c", "d"},
	}, uuid.New())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthAssessHandlerReturnsIssueOnSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, assessor := newTestHealthAssessHandler(t)
	assessor.result = providers.HealthAssessment{
		Diagnoses: []providers.HealthDiagnosis{
			{Name: "root rot", Confidence: 0.9, Steps: []string{"reduce watering"}},
			{Name: "spider mites", Confidence: 0.3, Steps: []string{"isolate the plant"}},
		},
	}
	r := gin.New()
	r.POST("/health/assess", h.Assess)

	req := newRequestWithIdentity(http.MethodPost, "/health/assess", assessRequest{
		PlantID: uuid.New().String(),
		Images:  []string{"img"},
	}, uuid.New())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data struct {
			Issues []struct {
				Issue map[string]any   `json:"issue"`
				Steps []map[string]any `json:"steps"`
			} `json:"issues"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Data.Issues) != 2 {
		t.Fatalf("expected 2 ranked issues in the response, got %d", len(body.Data.Issues))
	}
}

func TestHealthAssessHandlerRequiresRequestIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newTestHealthAssessHandler(t)
	r := gin.New()
	r.POST("/health/assess", h.Assess)

	b := `{"plantId":"` + uuid.New().String() + `","images":["img"]}`
	req := httptest.NewRequest(http.MethodPost, "/health/assess", strings.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
