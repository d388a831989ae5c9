package router

import (
	"time"

	"giveflow/config"
	"giveflow/internal/domain"
	"giveflow/internal/handler"
	"giveflow/internal/middleware"
	"giveflow/internal/repository"
	"giveflow/internal/service"
	"giveflow/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, provider payment.TransferProvider) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	charityRepo := repository.NewCharityRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	donationSvc := service.NewDonationService(donationRepo)
	lifecycleSvc := service.NewLifecycleService(campaignRepo)
	aggSvc := service.NewAggregationService(charityRepo, donationRepo, payoutRepo, cfg.Payout.MinPayoutCents, cfg.Payout.Currency)
	payoutSvc := service.NewPayoutService(payoutRepo, provider, cfg.Payout.MaxRetries, cfg.Payout.RetryDelay())
	retrySvc := service.NewRetryService(payoutRepo, payoutSvc, cfg.Payout.MaxRetries, cfg.Payout.RetryDelay())

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	charityHandler := handler.NewCharityHandler(charityRepo)
	campaignHandler := handler.NewCampaignHandler(campaignRepo, charityRepo)
	donationHandler := handler.NewDonationHandler(donationRepo, campaignRepo, charityRepo, donationSvc)
	webhookHandler := handler.NewPaymentWebhookHandler(donationRepo, campaignRepo, charityRepo)
	cronHandler := handler.NewCronHandler(lifecycleSvc, aggSvc, payoutSvc, auditRepo)
	payoutHandler := handler.NewPayoutHandler(payoutRepo, retrySvc, auditRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		api.GET("/charities", charityHandler.List)
		api.GET("/charities/:id", charityHandler.Get)
		api.GET("/campaigns", campaignHandler.List)
		api.GET("/campaigns/:id", campaignHandler.Get)
		api.POST("/campaigns", authMw, campaignHandler.Create)
		api.POST("/campaigns/:id/complete", authMw, campaignHandler.Complete)
		api.POST("/donations", authMw, donationHandler.Create)
		api.GET("/me/donations", authMw, donationHandler.ListMine)
		api.POST("/donations/:id/retry", authMw, donationHandler.Retry)

		api.POST("/webhooks/payment", webhookHandler.Handle)

		cron := api.Group("/cron")
		{
			cron.GET("/campaign-lifecycle", middleware.CronGate(cfg, domain.JobCampaignLifecycle), cronHandler.CampaignLifecycle)
			cron.POST("/campaign-lifecycle", middleware.CronGate(cfg, domain.JobCampaignLifecycle), cronHandler.CampaignLifecycle)
			cron.GET("/charity-payouts", middleware.CronGate(cfg, domain.JobCharityPayouts), cronHandler.CharityPayouts)
		}

		api.POST("/payouts/retry", middleware.CronOrAuth(cfg), payoutHandler.Retry)

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/payouts", payoutHandler.List)
			admin.POST("/charities", charityHandler.Create)
		}
	}

	return r
}
