package handlers

import (
	"github.com/cryptonest/cryptonest_backend/cmd/docs"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/middleware"
	"github.com/cryptonest/cryptonest_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {

	// Add health check route
	r.GET("/", getHome)
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Register public authentication routes
	registerAuthRoutes(r, cfg, services)
	registerGoogleOAuthRoutes(r, cfg, services)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerUserRoutes(v1, services.User)
	registerAccountRoutes(v1, services.Account)
	registerPlanRoutes(v1, services.Plan)
	registerDepositRoutes(v1, services.Deposit)
	registerWithdrawalRoutes(v1, services.Withdrawal)
	registerInvestmentRoutes(v1, services.Investment)
	registerTransactionRoutes(v1, services.Transaction)

	// Admin surface: same auth, plus the role gate
	admin := v1.Group("/admin", middleware.RequireAdmin())
	registerAdminUserRoutes(admin, services.User)
	registerAdminPlanRoutes(admin, services.Plan)
	registerAdminDepositRoutes(admin, services.Deposit)
	registerAdminWithdrawalRoutes(admin, services.Withdrawal)
	registerAdminInvestmentRoutes(admin, services.Investment)
	registerAdminAccrualRoutes(admin, services.Accrual)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
