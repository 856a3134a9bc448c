package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/uniride/campus-pool-backend/internal/config"
	"github.com/uniride/campus-pool-backend/internal/database"
	"github.com/uniride/campus-pool-backend/internal/handlers"
	"github.com/uniride/campus-pool-backend/internal/middleware"
	"github.com/uniride/campus-pool-backend/internal/services"
	"github.com/uniride/campus-pool-backend/pkg/docai"
	"github.com/uniride/campus-pool-backend/pkg/jwt"
	"github.com/uniride/campus-pool-backend/pkg/validator"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.WithError(err).Fatal("Failed to ping database")
	}
	logger.Info("Database connection established")

	ctx := context.Background()

	// In dev mode every document is approved by a deterministic mock, so
	// the flow is testable without a Gemini key.
	var analyzer docai.DocumentAnalyzer
	var generator docai.TextGenerator
	switch cfg.Analyzer.Mode {
	case "production":
		gemini, err := docai.NewGeminiAnalyzer(ctx, docai.GeminiConfig{
			APIKey:  cfg.Analyzer.APIKey,
			Model:   cfg.Analyzer.Model,
			Timeout: cfg.Analyzer.Timeout,
		})
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize document analyzer")
		}
		defer gemini.Close()
		analyzer = gemini
		generator = gemini
	default:
		mock := docai.NewMockAnalyzer()
		analyzer = mock
		generator = mock
	}
	logger.WithField("analyzer", analyzer.GetName()).Info("Document analyzer initialized")

	userRepo := database.NewUserRepository(db)
	rideRepo := database.NewRideRepository(db)
	attemptRepo := database.NewVerificationAttemptRepository(db)

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	registrationValidator := validator.NewRegistrationValidator()

	auditService := services.NewAuditService(db, logger)
	userService := services.NewUserService(userRepo, registrationValidator, auditService, logger)
	verificationService := services.NewVerificationService(
		analyzer, userRepo, attemptRepo, auditService, logger,
		cfg.Verification.ConfidenceThreshold, cfg.Verification.MaxAttempts,
	)
	rateLimitService := services.NewRateLimitService(attemptRepo, cfg.RateLimit)
	rideService := services.NewRideService(rideRepo, auditService, logger)
	advisorService := services.NewAdvisorService(generator, logger)

	authHandler := handlers.NewAuthHandler(userService, jwtManager, logger)
	profileHandler := handlers.NewProfileHandler(userService, logger)
	verificationHandler := handlers.NewVerificationHandler(verificationService, rateLimitService, auditService, logger)
	rideHandler := handlers.NewRideHandler(rideService, userService, advisorService, logger)

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register", authHandler.Register)

		authenticated := v1.Group("")
		authenticated.Use(middleware.RequireAuth(jwtManager))
		{
			authenticated.GET("/profile", profileHandler.GetProfile)
			authenticated.PATCH("/profile", profileHandler.UpdateProfile)

			authenticated.GET("/verification", verificationHandler.Status)
			authenticated.POST("/verification/id", verificationHandler.SubmitID)
			authenticated.POST("/verification/license", verificationHandler.SubmitLicense)
			authenticated.POST("/verification/skip-license", verificationHandler.SkipLicense)

			authenticated.GET("/rides", rideHandler.ListRides)
			authenticated.POST("/rides", rideHandler.CreateRide)
			authenticated.GET("/rides/recommendations", rideHandler.Recommendations)
		}
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	logger.Info("Server stopped")
}
