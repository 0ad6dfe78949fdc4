package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	reminderrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/reminder"
	"github.com/ssingh-rookie/LeafWise-API/internal/data/repos/testutil"
	userrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/user"
	httpH "github.com/ssingh-rookie/LeafWise-API/internal/http/handlers"
	httpMW "github.com/ssingh-rookie/LeafWise-API/internal/http/middleware"
	reminderservice "github.com/ssingh-rookie/LeafWise-API/internal/reminder"
)

func newTestAuthMiddleware(t *testing.T, db *gorm.DB) *httpMW.AuthMiddleware {
	t.Helper()
	log := testutil.Logger(t)
	return httpMW.NewAuthMiddleware(log, "test-signing-secret", userrepo.New(db, log))
}

func newTestReminderHandlerForRouter(t *testing.T, db *gorm.DB) *httpH.ReminderHandler {
	t.Helper()
	log := testutil.Logger(t)
	svc := reminderservice.New(reminderrepo.New(db, log), log)
	return httpH.NewReminderHandler(svc)
}

func TestNewRouterRegistersHealthRoutesRegardlessOfOtherWiring(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	r := NewRouter(RouterConfig{
		HealthHandler: httpH.NewHealthHandler(db),
	})

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestNewRouterSkipsUnwiredHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/identify", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unwired route, got %d", rec.Code)
	}
}

func TestNewRouterAppliesAuthMiddlewareToV1GroupWhenConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	am := newTestAuthMiddleware(t, db)
	r := NewRouter(RouterConfig{
		AuthMiddleware:  am,
		ReminderHandler: newTestReminderHandlerForRouter(t, db),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reminders/due", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a bearer token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewServerRunWrapsTheGinEngine(t *testing.T) {
	s := NewServer(RouterConfig{})
	if s.Engine == nil {
		t.Fatal("expected a non-nil engine")
	}
}
