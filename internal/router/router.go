package router

import (
	"time"

	"buckstream/config"
	"buckstream/internal/domain"
	"buckstream/internal/handler"
	"buckstream/internal/middleware"
	"buckstream/internal/repository"
	"buckstream/internal/service"
	"buckstream/pkg/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, provider payment.Provider, verifier handler.WebhookVerifier, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tipRepo := repository.NewTipRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	notifSvc := service.NewNotificationService(notificationRepo, logger)

	// Handlers
	connectHandler := handler.NewConnectHandler(userRepo, provider, cfg, logger)
	tipHandler := handler.NewTipHandler(userRepo, tipRepo, provider, cfg, logger)
	webhookHandler := handler.NewStripeWebhookHandler(tipRepo, userRepo, notifSvc, verifier, cfg, logger)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, logger)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(rate.Every(time.Minute/100), 50))
	{
		connect := api.Group("/stripe/connect")
		connect.Use(authMw, middleware.RequireRole(domain.RoleCreator))
		{
			connect.POST("/create-account-link", connectHandler.CreateAccountLink)
			connect.POST("/disconnect", connectHandler.Disconnect)
			connect.GET("/status/:user_id", connectHandler.GetStatus)
		}

		tips := api.Group("/tips")
		tips.Use(authMw)
		{
			tips.POST("/create-tip-payment", tipHandler.CreateTipPayment)
			tips.GET("/earnings/:user_id", middleware.RequireRole(domain.RoleCreator, domain.RoleAdmin), tipHandler.GetCreatorEarnings)
		}

		notifications := api.Group("/notifications")
		notifications.Use(authMw)
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
		}

		// Raw-body webhook; authenticated by signature, not JWT.
		api.POST("/webhooks/stripe", webhookHandler.Handle)
	}

	return r
}
