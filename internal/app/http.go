package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	leafwisehttp "github.com/ssingh-rookie/LeafWise-API/internal/http"
	httpH "github.com/ssingh-rookie/LeafWise-API/internal/http/handlers"
	httpMW "github.com/ssingh-rookie/LeafWise-API/internal/http/middleware"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config, repos Repos) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey, repos.User),
	}
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Identify     *httpH.IdentifyHandler
	HealthAssess *httpH.HealthAssessHandler
	Chat         *httpH.ChatHandler
	Reminder     *httpH.ReminderHandler
}

func wireHandlers(db *gorm.DB, services Services, repos Repos) Handlers {
	return Handlers{
		Health:       httpH.NewHealthHandler(db),
		Identify:     httpH.NewIdentifyHandler(services.Identify),
		HealthAssess: httpH.NewHealthAssessHandler(services.HealthAssess),
		Chat:         httpH.NewChatHandler(services.Chat, repos.ChatSession),
		Reminder:     httpH.NewReminderHandler(services.Reminder),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware, services Services) *gin.Engine {
	return leafwisehttp.NewRouter(leafwisehttp.RouterConfig{
		Log:                 log,
		AuthMiddleware:      middleware.Auth,
		RateLimiter:         services.RateLimiter,
		HealthHandler:       handlers.Health,
		IdentifyHandler:     handlers.Identify,
		HealthAssessHandler: handlers.HealthAssess,
		ChatHandler:         handlers.Chat,
		ReminderHandler:     handlers.Reminder,
	})
}
