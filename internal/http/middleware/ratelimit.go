package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ssingh-rookie/LeafWise-API/internal/ledger"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/ctxutil"
	"github.com/ssingh-rookie/LeafWise-API/internal/http/response"
)

// RateLimit enforces spec §4.4's sliding-window endpoint limiter and
// tier-dependent monthly quota for a single task, ahead of the handler
// ever touching the Router. endpoint names the sliding-window bucket
// (e.g. "identify"); task names the quota bucket (router.Task string,
// e.g. "identification") - they're different axes of the same gate.
func RateLimit(rl ledger.RateLimiter, endpoint, task string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil {
			c.Next()
			return
		}

		if err := rl.CheckEndpoint(c.Request.Context(), rd.UserID, endpoint); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if task != "" {
			if err := rl.CheckMonthlyQuota(c.Request.Context(), rd.UserID, task, ledger.Tier(rd.Tier)); err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
