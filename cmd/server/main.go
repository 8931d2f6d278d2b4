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

	"seatpool/internal/config"
	"seatpool/internal/handlers"
	"seatpool/internal/middleware"
	"seatpool/internal/repositories/mongodb"
	"seatpool/internal/services"
	"seatpool/pkg/cache"
	"seatpool/pkg/database"
	"seatpool/pkg/logger"
	"seatpool/pkg/maps"
	"seatpool/pkg/payment"
	"seatpool/pkg/websocket"
	"seatpool/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// MongoDB
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	migrator := database.NewMigrator(db.Database)
	if err := migrator.Up(); err != nil {
		appLogger.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	// Payment provider
	var paymentProvider payment.Provider
	switch cfg.Payment.DefaultProvider {
	case "razorpay":
		paymentProvider = payment.NewRazorpayProvider(
			cfg.Payment.Razorpay.KeyID,
			cfg.Payment.Razorpay.KeySecret,
			cfg.Payment.Razorpay.WebhookSecret,
		)
	default:
		paymentProvider = payment.NewStripeProvider(
			cfg.Payment.Stripe.SecretKey,
			cfg.Payment.Stripe.WebhookSecret,
		)
	}

	// Maps provider (optional)
	var mapsProvider maps.Provider
	if cfg.Maps.Enabled {
		provider, err := maps.NewGoogleMapsProvider(cfg.Maps.GoogleAPIKey)
		if err != nil {
			appLogger.WithError(err).Warn("Maps provider unavailable, route estimates disabled")
		} else {
			mapsProvider = provider
		}
	}

	// WebSocket hub
	wsHandler := websocket.NewHandler(&websocket.Options{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		WriteWait:       cfg.WebSocket.WriteWait,
		PongWait:        cfg.WebSocket.PongWait,
		MaxMessageSize:  cfg.WebSocket.MaxMessageSize,
	})

	// Repositories
	cacheService := services.NewCacheService(redisCache)
	rideRepo := mongodb.NewRideRepository(db.Database, cacheService)
	bookingRepo := mongodb.NewBookingRepository(db.Database)
	userRepo := mongodb.NewUserRepository(db.Database)
	vehicleRepo := mongodb.NewVehicleRepository(db.Database)
	reviewRepo := mongodb.NewReviewRepository(db.Database)
	messageRepo := mongodb.NewMessageRepository(db.Database)
	txnManager := mongodb.NewTxnManager(db)

	// Services
	feedService := services.NewFeedService(redisCache, wsHandler, appLogger)
	ledgerService := services.NewLedgerService(rideRepo, bookingRepo, txnManager, paymentProvider, feedService, appLogger)
	rideService := services.NewRideService(rideRepo, vehicleRepo, bookingRepo, txnManager, mapsProvider, appLogger)
	bookingService := services.NewBookingService(bookingRepo, rideRepo, appLogger)
	paymentService := services.NewPaymentService(bookingRepo, rideRepo, ledgerService, paymentProvider, appLogger)
	reviewService := services.NewReviewService(reviewRepo, rideRepo, bookingRepo, userRepo, appLogger)
	chatService := services.NewChatService(messageRepo, bookingRepo, rideRepo, wsHandler, appLogger)
	authService := services.NewAuthService(userRepo, cfg.Security.JWTSecret, appLogger)
	userService := services.NewUserService(userRepo, appLogger)
	vehicleService := services.NewVehicleService(vehicleRepo, appLogger)

	// Relay booking events to websocket watchers until shutdown.
	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()
	go feedService.Run(feedCtx)

	// Router
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))

	routes.Setup(router, &routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		User:    handlers.NewUserHandler(userService),
		Vehicle: handlers.NewVehicleHandler(vehicleService),
		Ride:    handlers.NewRideHandler(rideService, ledgerService),
		Booking: handlers.NewBookingHandler(bookingService, ledgerService),
		Payment: handlers.NewPaymentHandler(paymentService, appLogger),
		Review:  handlers.NewReviewHandler(reviewService),
		Chat:    handlers.NewChatHandler(chatService),
		WS:      wsHandler,
	}, cfg.Security.JWTSecret)

	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := db.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"version": cfg.App.Version,
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	stopFeed()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Errorf("Forced shutdown: %v", err)
	}
}
