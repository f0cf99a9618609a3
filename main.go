package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linklytics/auth"
	"linklytics/cache"
	"linklytics/config"
	"linklytics/database"
	"linklytics/geo"
	"linklytics/handlers"
	"linklytics/logger"
	"linklytics/models"
	"linklytics/ratelimit"
	"linklytics/services"
	"linklytics/workers"
)

const (
	creationLimit  = 10
	creationWindow = 15 * time.Minute
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	auth.Init(cfg.JWTSecret)

	db, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("database unavailable", zap.Error(err))
	}

	redisClient, err := cache.Dial(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		zlog.Fatal("redis unavailable", zap.Error(err))
	}
	store := cache.NewRedisCache(redisClient)

	var locator geo.Locator = geo.NoopLocator{}
	if cfg.GeoIPDBPath != "" {
		maxmind, err := geo.NewMaxMindLocator(cfg.GeoIPDBPath)
		if err != nil {
			zlog.Warn("geoip database unavailable, locations will be Unknown", zap.Error(err))
		} else {
			defer maxmind.Close()
			locator = maxmind
		}
	}

	linkService := services.NewLinkService(db, store, zlog)
	analyticsService := services.NewAnalyticsService(db, store, zlog)
	visitService := services.NewVisitService(db, store, locator, zlog)

	visitEvents := make(chan models.VisitEvent, cfg.VisitQueueSize)
	workers.StartVisitWorkers(cfg.VisitWorkers, visitEvents, visitService, zlog)

	limiter := ratelimit.NewFixedWindow(redisClient, creationLimit, creationWindow)

	authHandler := handlers.NewAuthHandler(db)
	urlHandler := handlers.NewURLHandler(linkService, analyticsService, visitEvents, zlog)

	router := gin.Default()

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.GET("/:alias", urlHandler.Redirect)

	api := router.Group("/api")
	api.Use(auth.Middleware())
	{
		api.POST("/shorten", ratelimit.CreationLimit(limiter, zlog), urlHandler.Shorten)
		api.GET("/analytics/overall", urlHandler.OverallAnalytics)
		api.GET("/analytics/topic/:topic", urlHandler.TopicAnalytics)
		api.GET("/analytics/:alias", urlHandler.URLAnalytics)
	}

	zlog.Info("starting server", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
