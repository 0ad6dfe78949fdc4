package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ssingh-rookie/LeafWise-API/internal/data/repos/testutil"
)

func TestHealthHandlerLiveAlwaysReturnsOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(testutil.DB(t))
	r := gin.New()
	r.GET("/live", h.Live)

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandlerReadyPingsTheDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(testutil.DB(t))
	r := gin.New()
	r.GET("/ready", h.Ready)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthHandlerReadyReportsUnavailableOnClosedConnection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("underlying db: %v", err)
	}
	sqlDB.Close()

	h := NewHealthHandler(db)
	r := gin.New()
	r.GET("/ready", h.Ready)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
}
