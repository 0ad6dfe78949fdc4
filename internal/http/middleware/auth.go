package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	userrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/user"
	"github.com/ssingh-rookie/LeafWise-API/internal/http/response"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/apierr"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/ctxutil"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

// AuthMiddleware decodes and verifies a bearer JWT and attaches the
// resulting user id (and billing tier) to the request context. Per spec
// §1, authentication itself is an external collaborator's concern: this
// adapter only trusts the token's "sub" claim and looks up the tier that
// drives the monthly quota gate (spec §4.4 item 2). Claim validation
// beyond signature and "sub" is out of scope.
type AuthMiddleware struct {
	log      *logger.Logger
	secret   []byte
	userRepo userrepo.Repo
}

func NewAuthMiddleware(log *logger.Logger, secret string, userRepo userrepo.Repo) *AuthMiddleware {
	return &AuthMiddleware{
		log:      log.With("middleware", "auth"),
		secret:   []byte(secret),
		userRepo: userRepo,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			response.Error(c, apierr.Unauthorized("missing bearer token"))
			c.Abort()
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return am.secret, nil
		})
		if err != nil {
			response.Error(c, apierr.Unauthorized("invalid token"))
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			response.Error(c, apierr.Unauthorized("invalid subject claim"))
			c.Abort()
			return
		}

		tier := "free"
		if u, err := am.userRepo.GetByID(c.Request.Context(), nil, userID); err == nil && u != nil {
			tier = u.Tier
		} else {
			am.log.Warn("auth: user lookup failed, defaulting to free tier", "user_id", userID, "error", err)
		}

		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: userID, Tier: tier})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
