package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sotsvc/service-estimate/internal/application"
	"github.com/sotsvc/service-estimate/internal/auth"
	"github.com/sotsvc/service-estimate/internal/config"
	"github.com/sotsvc/service-estimate/internal/domain/pricing"
	"github.com/sotsvc/service-estimate/internal/domain/schedule"
	"github.com/sotsvc/service-estimate/internal/events"
	"github.com/sotsvc/service-estimate/internal/handler"
	"github.com/sotsvc/service-estimate/internal/identity"
	"github.com/sotsvc/service-estimate/internal/intake"
	"github.com/sotsvc/service-estimate/internal/logger"
	"github.com/sotsvc/service-estimate/internal/middleware"
	"github.com/sotsvc/service-estimate/internal/payment"
	"github.com/sotsvc/service-estimate/internal/repository"
	"github.com/sotsvc/service-estimate/internal/retry"
)

const serviceName = "service-estimate"

func main() {
	// Load .env in local development; the file is absent in deployment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to access database handle", zap.Error(err))
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatal("database unreachable", zap.Error(err))
	}

	if err := db.AutoMigrate(&repository.DraftModel{}, &repository.TestimonialModel{}); err != nil {
		log.Fatal("failed to run auto-migration", zap.Error(err))
	}
	log.Info("database migration completed")

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour)

	// Initialize Kafka producer
	producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	defer func() { _ = producer.Close() }()

	// Initialize pricing engine over the published rate table
	engine, err := pricing.NewEngine(pricing.DefaultRateTable())
	if err != nil {
		log.Fatal("invalid rate table", zap.Error(err))
	}

	// Initialize outbound boundaries
	processor, err := payment.NewStripeProcessor(cfg.Payment.StripeSecretKey, payment.Bounds{
		MinAmount: cfg.Payment.MinAmount,
		MaxAmount: cfg.Payment.MaxAmount,
	}, log)
	if err != nil {
		log.Fatal("failed to configure payment processor", zap.Error(err))
	}
	relay := intake.NewWebhookClient(cfg.Intake.WebhookURL, log)
	provider := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.APIKey)

	// Initialize repositories
	draftRepo := repository.NewGormDraftRepository(db)
	testimonialRepo := repository.NewGormTestimonialRepository(db)

	// Initialize application services
	availabilityService, err := application.NewAvailabilityService(schedule.DefaultWeekSchedule())
	if err != nil {
		log.Fatal("invalid business hours", zap.Error(err))
	}
	estimateService := application.NewEstimateService(engine)
	flowService := application.NewBookingFlowService(
		draftRepo, engine, availabilityService.Schedule(), processor, producer, log,
	)
	testimonialService := application.NewTestimonialService(testimonialRepo, retry.DefaultPolicy(), log)
	leadService := application.NewLeadService(relay, retry.DefaultPolicy(), producer, cfg.Intake.SourceSite, log)
	authService := application.NewAuthService(provider, jwtManager, log)

	// Initialize HTTP handlers
	estimateHandler := handler.NewEstimateHandler(estimateService, availabilityService)
	draftHandler := handler.NewDraftHandler(flowService)
	testimonialHandler := handler.NewTestimonialHandler(testimonialService)
	leadHandler := handler.NewLeadHandler(leadService)
	authHandler := handler.NewAuthHandler(authService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.MetricsMiddleware())

	// Health and metrics endpoints
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})
	router.GET("/readyz", func(c *gin.Context) {
		if err := sqlDB.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register routes
	estimateHandler.RegisterRoutes(&router.RouterGroup)
	draftHandler.RegisterRoutes(&router.RouterGroup)
	testimonialHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	leadHandler.RegisterRoutes(&router.RouterGroup)
	authHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	// WriteTimeout must outlast the checkout path, which can hold the
	// connection for the full payment window.
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 6 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
