package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taxiline/internal/config"
	"taxiline/internal/handlers"
	"taxiline/internal/middleware"
	"taxiline/internal/models"
	"taxiline/internal/repositories/mongodb"
	"taxiline/internal/services"
	"taxiline/pkg/cache"
	"taxiline/pkg/database"
	"taxiline/pkg/logger"
	"taxiline/pkg/sms"
	"taxiline/pkg/storage"
	"taxiline/pkg/ws"
	"taxiline/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

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
		log.Warnf("Redis unavailable, running without cache: %v", err)
		redisCache = nil
	}

	smsProvider := newSMSProvider(cfg, log)

	imageStore, err := storage.NewImageStore(cfg.Storage.ImagePath, cfg.Storage.BaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize image store: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	var repoCache mongodb.CacheService
	if redisCache != nil {
		repoCache = redisCache
	}
	userRepo := mongodb.NewUserRepository(db.Database, repoCache)
	rideRepo := mongodb.NewRideRepository(db.Database)
	settlementRepo := mongodb.NewSettlementRepository(db.Database)

	statuses := models.NewStatusSet(cfg.Rides.Statuses)

	ratingService := services.NewRatingService(userRepo, log)
	rideService := services.NewRideService(rideRepo, settlementRepo, ratingService, statuses, hub, log)
	userService := services.NewUserService(userRepo, smsProvider, imageStore, cfg.Security.JWTSecret, cfg.Security.ActivationCodeLength, log)

	userHandler := handlers.NewUserHandler(userService, log)
	rideHandler := handlers.NewRideHandler(rideService, hub, log)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	v1 := router.Group("/api/v1")
	{
		routes.SetupUserRoutes(v1, userHandler, cfg.Security.JWTSecret)
		routes.SetupRideRoutes(v1, rideHandler, cfg.Security.JWTSecret)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		})
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	log.Infof("Starting server on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func newSMSProvider(cfg *config.Config, log *logger.Logger) sms.Provider {
	switch cfg.SMS.Provider {
	case "aws":
		provider, err := sms.NewAWSSNSProvider(cfg.SMS.AWS.Region)
		if err != nil {
			log.Fatalf("Failed to initialize SNS provider: %v", err)
		}
		return provider
	default:
		return sms.NewTwilioProvider(
			cfg.SMS.Twilio.AccountSID,
			cfg.SMS.Twilio.AuthToken,
			cfg.SMS.Twilio.FromNumber,
		)
	}
}
