package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/bms/backend/internal/application/billing"
	treasuryapp "github.com/bms/backend/internal/application/treasury"
	"github.com/bms/backend/internal/infrastructure/auth"
	"github.com/bms/backend/internal/infrastructure/config"
	"github.com/bms/backend/internal/infrastructure/logger"
	"github.com/bms/backend/internal/infrastructure/persistence"
	"github.com/bms/backend/internal/interfaces/http/handler"
	"github.com/bms/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting BMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	txManager := persistence.NewGormTransactionManager(db.DB)
	chargeRepo := persistence.NewGormChargeRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	fundRepo := persistence.NewGormFundRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	buildingRepo := persistence.NewGormBuildingRepository(db.DB)
	unitRepo := persistence.NewGormUnitRepository(db.DB)

	// Initialize application services
	chargeService := billingapp.NewChargeService(chargeRepo, paymentRepo, unitRepo, txManager)
	paymentService := billingapp.NewPaymentService(paymentRepo, chargeRepo, fundRepo, txManager)
	fundService := treasuryapp.NewFundService(fundRepo, buildingRepo, txManager)
	expenseService := treasuryapp.NewExpenseService(expenseRepo, fundRepo, txManager)

	// Initialize auth services
	jwtService := auth.NewJWTService(cfg.JWT)

	// Assemble the HTTP layer
	engine := router.New(router.Dependencies{
		Config:       cfg,
		Logger:       log,
		JWTService:   jwtService,
		Capabilities: auth.RoleCapabilities{},
		System:       handler.NewSystemHandler(db.DB),
		Charges:      handler.NewChargeHandler(chargeService),
		Payments:     handler.NewPaymentHandler(paymentService),
		Fund:         handler.NewFundHandler(fundService),
		Expenses:     handler.NewExpenseHandler(expenseService),
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
