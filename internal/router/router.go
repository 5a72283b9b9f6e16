package router

import (
	"time"

	"confraria/config"
	"confraria/internal/handler"
	"confraria/internal/middleware"
	"confraria/internal/repository"
	"confraria/internal/service"
	"confraria/internal/ws"
	"confraria/pkg/authprovider"
	"confraria/pkg/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, provider authprovider.Provider, sender notify.Sender) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	quotaRepo := repository.NewQuotaRepository(db)
	drawRepo := repository.NewDrawRepository(db)
	attemptRepo := repository.NewPreRegistrationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	rateRepo := repository.NewRateLimitRepository(db)

	drawHub := ws.NewDrawHub()

	// Services
	drawSvc := service.NewDrawService(db, groupRepo, quotaRepo, drawRepo)
	credSvc := service.NewCredentialService(cfg.Policy, profileRepo, attemptRepo, provider, sender)

	// Handlers
	authHandler := handler.NewAuthHandler(cfg, provider, profileRepo, credSvc, auditRepo)
	drawHandler := handler.NewDrawHandler(drawSvc, drawHub, auditRepo)
	preregHandler := handler.NewPreRegistrationHandler(credSvc, auditRepo)
	groupHandler := handler.NewGroupHandler(groupRepo, quotaRepo)
	memberHandler := handler.NewMemberHandler(profileRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.AdminRequired()
	preregLimitMw := middleware.PersistentRateLimit(rateRepo, "prereg", cfg.Policy.PreRegPerHour, time.Hour)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		admin := api.Group("")
		admin.Use(authMw, adminMw)
		{
			admin.POST("/members", memberHandler.Create)
			admin.GET("/members/:id", memberHandler.Get)

			admin.GET("/groups", groupHandler.List)
			admin.POST("/groups", groupHandler.Create)
			admin.GET("/groups/:groupId", groupHandler.Get)
			admin.PATCH("/groups/:groupId/quotas/:number", groupHandler.AssignQuota)

			admin.GET("/groups/:groupId/draws/prepare", drawHandler.Prepare)
			admin.POST("/groups/:groupId/draws/execute", drawHandler.Execute)
			admin.POST("/groups/:groupId/draws/run", drawHandler.Run)
			admin.DELETE("/groups/:groupId/draws/current", drawHandler.Reset)

			prereg := admin.Group("/pre-registrations")
			prereg.Use(preregLimitMw)
			{
				prereg.POST("", preregHandler.Create)
				prereg.POST("/:id/resend-credentials", preregHandler.ResendCredentials)
				prereg.POST("/:id/regenerate-password", preregHandler.RegeneratePassword)
			}
			admin.GET("/members/:id/pre-registrations", preregHandler.ListForMember)
		}

		api.GET("/ws/groups/:groupId/draws", ws.UpgradeDrawWS(&cfg.JWT, drawHub))
	}

	return r
}
