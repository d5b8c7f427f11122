package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smane4123/PitchPulse/internal/di"
	"github.com/smane4123/PitchPulse/internal/gateway"
	"github.com/smane4123/PitchPulse/internal/repository"
	"github.com/smane4123/PitchPulse/internal/service"
	"github.com/smane4123/PitchPulse/pkg/config"
	"github.com/smane4123/PitchPulse/pkg/database"
	"github.com/smane4123/PitchPulse/pkg/logger"
	"github.com/smane4123/PitchPulse/pkg/middleware"
	pkgredis "github.com/smane4123/PitchPulse/pkg/redis"
	"github.com/smane4123/PitchPulse/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting reservation engine", "version", cfg.App.Version)

	ctx := context.Background()

	// Initialize tracing
	tel, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	})
	if err != nil {
		appLog.Warn("Tracing disabled", "error", err)
	} else if tel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = telemetry.Shutdown(shutdownCtx)
		}()
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal("Database connection failed", "error", err)
	}
	defer db.Close()
	appLog.Info("Database connected", "min_conns", dbCfg.MinConns, "max_conns", dbCfg.MaxConns)

	if err := repository.Migrate(ctx, db.Pool()); err != nil {
		appLog.Fatal("Schema migration failed", "error", err)
	}

	// Initialize Redis connection
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
	redisClient, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal("Redis connection failed", "error", err)
	}
	defer redisClient.Close()
	appLog.Info("Redis connected", "pool_size", redisCfg.PoolSize)

	// Pre-load slot hold Lua scripts
	holdRepo := repository.NewRedisSlotHoldRepository(redisClient)
	if err := holdRepo.LoadScripts(ctx); err != nil {
		appLog.Warn("Failed to pre-load Lua scripts", "error", err)
	}

	// Initialize payment gateway; sandbox when no credentials configured
	var paymentGateway gateway.PaymentGateway
	if cfg.Razorpay.KeyID != "" && cfg.Razorpay.KeySecret != "" {
		paymentGateway, err = gateway.NewRazorpayGateway(&gateway.RazorpayGatewayConfig{
			KeyID:     cfg.Razorpay.KeyID,
			KeySecret: cfg.Razorpay.KeySecret,
		})
		if err != nil {
			appLog.Fatal("Payment gateway init failed", "error", err)
		}
		appLog.Info("Razorpay gateway configured")
	} else {
		paymentGateway = gateway.NewSandboxGateway()
		appLog.Warn("No gateway credentials, using sandbox gateway")
	}

	// Initialize Kafka event publisher; no-op when brokers are unreachable
	var eventPublisher service.EventPublisher
	if cfg.Kafka.Enabled {
		eventPublisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn("Kafka connection failed, using no-op publisher", "error", err)
			eventPublisher = service.NewNoOpEventPublisher()
		} else {
			appLog.Info("Kafka event publisher connected")
			defer eventPublisher.Close()
		}
	} else {
		eventPublisher = service.NewNoOpEventPublisher()
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		PaymentGateway: paymentGateway,
		EventPublisher: eventPublisher,
		PaymentConfig: &service.PaymentServiceConfig{
			KeyID:     cfg.Razorpay.KeyID,
			KeySecret: cfg.Razorpay.KeySecret,
			Currency:  cfg.Razorpay.Currency,
			HoldTTL:   cfg.Razorpay.HoldTTL,
		},
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	authCfg := &middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}
	idempotencyCfg := middleware.DefaultIdempotencyConfig(redisClient.Client())

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/availability", container.AvailabilityHandler.GetAvailability)

		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(authCfg))
		{
			bookings.POST("", middleware.IdempotencyMiddleware(idempotencyCfg), container.BookingHandler.CreateBooking)
			bookings.POST("/bulk", middleware.IdempotencyMiddleware(idempotencyCfg), container.BookingHandler.CreateBulkBooking)
			bookings.GET("", container.BookingHandler.GetUserBookings)
			bookings.GET("/:id", container.BookingHandler.GetBooking)
		}

		payment := v1.Group("/payment")
		{
			payment.GET("/key", container.PaymentHandler.GetKey)
			payment.POST("/create-order", middleware.AuthMiddleware(authCfg), container.PaymentHandler.CreateOrder)
			// Settlement is idempotent by payment ID, no auth: the HMAC
			// signature is the proof of a completed payment
			payment.POST("/verify-payment", container.PaymentHandler.VerifyPayment)
		}

		reviews := v1.Group("/reviews")
		{
			reviews.GET("/venue/:id", container.ReviewHandler.GetVenueReviews)
			reviews.POST("", middleware.AuthMiddleware(authCfg), container.ReviewHandler.CreateReview)
			reviews.DELETE("/:id", middleware.AuthMiddleware(authCfg), container.ReviewHandler.DeleteReview)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		appLog.Info("Reservation engine listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal("Server forced to shutdown", "error", err)
	}

	appLog.Info("Server exited gracefully")
}
