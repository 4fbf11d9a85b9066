package router

import (
	"github.com/bms/backend/internal/infrastructure/auth"
	"github.com/bms/backend/internal/infrastructure/config"
	"github.com/bms/backend/internal/infrastructure/logger"
	"github.com/bms/backend/internal/interfaces/http/handler"
	"github.com/bms/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies carries everything the router needs to assemble the API
type Dependencies struct {
	Config       *config.Config
	Logger       *zap.Logger
	JWTService   *auth.JWTService
	Capabilities auth.Capabilities

	System   *handler.SystemHandler
	Charges  *handler.ChargeHandler
	Payments *handler.PaymentHandler
	Fund     *handler.FundHandler
	Expenses *handler.ExpenseHandler
}

// New builds the gin engine with the full middleware chain and all routes
func New(deps Dependencies) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()

	if deps.Config != nil && len(deps.Config.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(deps.Config.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	if deps.Logger != nil {
		engine.Use(logger.GinMiddleware(deps.Logger))
		engine.Use(logger.Recovery(deps.Logger))
	} else {
		engine.Use(gin.Recovery())
	}
	engine.Use(middleware.Secure())
	engine.Use(corsMiddleware(deps.Config))
	if deps.Config != nil && deps.Config.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(deps.Config.HTTP.MaxBodySize))
	}

	// Liveness endpoints stay outside authentication
	if deps.System != nil {
		engine.GET("/health", deps.System.Health)
		engine.GET("/ready", deps.System.Ready)
	}

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: deps.JWTService,
		Logger:     deps.Logger,
	}))

	buildings := api.Group("/buildings/:buildingId")
	buildings.Use(middleware.BuildingAccessMiddleware())

	caps := deps.Capabilities
	if caps == nil {
		caps = auth.RoleCapabilities{}
	}

	if deps.Charges != nil {
		deps.Charges.RegisterRoutes(buildings)
	}
	if deps.Payments != nil {
		deps.Payments.RegisterRoutes(buildings, middleware.RequireCapability(caps.CanVerifyPayment))
	}
	if deps.Fund != nil {
		deps.Fund.RegisterRoutes(buildings, middleware.RequireCapability(caps.CanAdjustFund))
	}
	if deps.Expenses != nil {
		deps.Expenses.RegisterRoutes(buildings, middleware.RequireCapability(caps.CanApproveExpense))
	}

	return engine
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsCfg := middleware.DefaultCORSConfig()
	if cfg != nil {
		if len(cfg.HTTP.CORSAllowOrigins) > 0 {
			corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
		}
		if len(cfg.HTTP.CORSAllowMethods) > 0 {
			corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
		}
		if len(cfg.HTTP.CORSAllowHeaders) > 0 {
			corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
		}
	}
	return middleware.CORSWithConfig(corsCfg)
}
