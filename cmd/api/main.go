package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/calorieking/backend/config"
	"github.com/calorieking/backend/internal/api"
	"github.com/calorieking/backend/internal/database"
	"github.com/calorieking/backend/internal/logging"
	"github.com/calorieking/backend/internal/middleware"
	"github.com/calorieking/backend/internal/router"
	"github.com/calorieking/backend/internal/server"
	"github.com/calorieking/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logging.New(cfg.LogLevel, cfg.Environment.IsProduction())
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.AnthropicAPIKey == "" {
		log.Warn("ANTHROPIC_API_KEY is not set; image analysis requests will fail")
	}
	if cfg.EphemeralSecret {
		log.Warn("SECRET_KEY is not set; using a random per-process secret, sessions will not survive a restart")
	}

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db, log); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg, log)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable; continuing without session revocation and rate limiting")
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var images service.ImageStore = service.NewInlineImageStore()
	s3Config, err := config.NewS3Config(ctx, cfg)
	switch {
	case err != nil:
		log.WithError(err).Warn("Failed to initialize S3; storing meal images inline")
	case s3Config != nil:
		log.WithField("bucket", s3Config.BucketName).Info("Archiving meal images to S3")
		images = service.NewS3ImageStore(s3Config, log)
	}

	var revoker service.Revoker
	var limiter *middleware.RateLimiter
	healthChecks := map[string]api.Pinger{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		revoker = service.NewRedisRevoker(redisClient)
		limiter = middleware.NewAnalysisRateLimiter(redisClient, cfg.RateLimitAnalyze, cfg.RateLimitWindow, log)
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	authService := service.NewAuthService(db, log)
	mealService := service.NewMealService(db, log)
	sessionService := service.NewSessionService(cfg.SessionSecret, cfg.SessionTTL, revoker)
	visionService := service.NewVisionService(cfg, log)

	r := router.SetupRouter(router.Dependencies{
		AuthHandler:     api.NewAuthHandler(authService, sessionService, api.NewCookieHelper(cfg.CookieSecure), log),
		MealHandler:     api.NewMealHandler(visionService, mealService, images, cfg.MaxUploadBytes, log),
		HealthHandler:   api.NewHealthHandler(healthChecks),
		Sessions:        sessionService,
		AnalysisLimiter: limiter,
		AllowedOrigins:  cfg.AllowedOrigins,
		Log:             log,
	})

	log.WithFields(logrus.Fields{
		"addr":        cfg.Addr(),
		"environment": cfg.Environment,
	}).Info("Starting Calorie King API")

	srv := server.NewServer(cfg.Addr(), r, log)
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
