package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/ssingh-rookie/LeafWise-API/internal/http/handlers"
	httpMW "github.com/ssingh-rookie/LeafWise-API/internal/http/middleware"
	"github.com/ssingh-rookie/LeafWise-API/internal/ledger"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
	"github.com/ssingh-rookie/LeafWise-API/internal/router"
)

// RouterConfig wires every registered route to its handler, grounded on
// the teacher's RouterConfig/NewRouter shape: one struct of optional
// handlers, one function that groups routes and skips anything left nil.
type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware
	RateLimiter    ledger.RateLimiter

	HealthHandler       *httpH.HealthHandler
	IdentifyHandler     *httpH.IdentifyHandler
	HealthAssessHandler *httpH.HealthAssessHandler
	ChatHandler         *httpH.ChatHandler
	ReminderHandler     *httpH.ReminderHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}

	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.Live)
		r.GET("/health/live", cfg.HealthHandler.Live)
		r.GET("/health/ready", cfg.HealthHandler.Ready)
	}

	v1 := r.Group("/api/v1")
	if cfg.AuthMiddleware != nil {
		v1.Use(cfg.AuthMiddleware.RequireAuth())
	}

	if cfg.IdentifyHandler != nil {
		v1.POST("/identify", rateLimited(cfg.RateLimiter, "identify", string(router.TaskIdentification)), cfg.IdentifyHandler.Identify)
	}

	if cfg.HealthAssessHandler != nil {
		v1.POST("/health/assess", rateLimited(cfg.RateLimiter, "health_assess", string(router.TaskHealthAssessment)), cfg.HealthAssessHandler.Assess)
	}

	if cfg.ChatHandler != nil {
		v1.POST("/chat", rateLimited(cfg.RateLimiter, "chat", string(router.TaskChatSimple)), cfg.ChatHandler.Chat)
		v1.POST("/chat/stream", rateLimited(cfg.RateLimiter, "chat_stream", string(router.TaskChatSimple)), cfg.ChatHandler.ChatStream)
	}

	if cfg.ReminderHandler != nil {
		v1.POST("/reminders", cfg.ReminderHandler.Create)
		v1.POST("/reminders/:id/complete", cfg.ReminderHandler.Complete)
		v1.POST("/reminders/:id/skip", cfg.ReminderHandler.Skip)
		v1.GET("/reminders/due", cfg.ReminderHandler.Due)
	}

	return r
}

func rateLimited(rl ledger.RateLimiter, endpoint, task string) gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return httpMW.RateLimit(rl, endpoint, task)
}
