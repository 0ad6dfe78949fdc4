package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	userrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/user"
	"github.com/ssingh-rookie/LeafWise-API/internal/data/repos/testutil"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/user"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/ctxutil"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newAuthTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(testutil.Logger(t), testSecret, userrepo.New(db, testutil.Logger(t)))

	r := gin.New()
	r.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID.String(), "tier": rd.Tier})
	})
	return r
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	r := newAuthTestRouter(t, testutil.DB(t))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthRejectsMissingTokenWithStandardEnvelope(t *testing.T) {
	r := newAuthTestRouter(t, testutil.DB(t))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Path    string `json:"path"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Success {
		t.Fatal("expected success=false")
	}
	if body.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("expected code UNAUTHORIZED, got %q", body.Error.Code)
	}
	if body.Error.Path != "/protected" {
		t.Fatalf("expected path to be set, got %q", body.Error.Path)
	}
}

func TestRequireAuthRejectsInvalidSignature(t *testing.T) {
	r := newAuthTestRouter(t, testutil.DB(t))

	badToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": uuid.New().String()})
	signed, err := badToken.SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthAcceptsValidTokenAndAttachesTier(t *testing.T) {
	db := testutil.DB(t)
	u := &user.User{ID: uuid.New(), DisplayName: "Tariq", ExperienceLevel: user.ExperienceBeginner, Tier: user.TierPremium}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	r := newAuthTestRouter(t, db)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, u.ID.String()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if want := `"tier":"premium"`; !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("expected body to contain %q, got %s", want, rec.Body.String())
	}
}

func TestRequireAuthDefaultsToFreeTierWhenUserLookupFails(t *testing.T) {
	r := newAuthTestRouter(t, testutil.DB(t))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New().String()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if want := `"tier":"free"`; !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("expected body to contain %q, got %s", want, rec.Body.String())
	}
}
