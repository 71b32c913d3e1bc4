package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vitaltrack/vitaltrack-api/internal/config"
	"github.com/vitaltrack/vitaltrack-api/internal/email"
	"github.com/vitaltrack/vitaltrack-api/internal/handler"
	authHandler "github.com/vitaltrack/vitaltrack-api/internal/handler/auth"
	healthrecordHandler "github.com/vitaltrack/vitaltrack-api/internal/handler/healthrecord"
	medicationHandler "github.com/vitaltrack/vitaltrack-api/internal/handler/medication"
	patientHandler "github.com/vitaltrack/vitaltrack-api/internal/handler/patient"
	"github.com/vitaltrack/vitaltrack-api/internal/middleware"
	"github.com/vitaltrack/vitaltrack-api/internal/model"
	"github.com/vitaltrack/vitaltrack-api/internal/prediction"
	"github.com/vitaltrack/vitaltrack-api/internal/repository/postgres"
	redisrepo "github.com/vitaltrack/vitaltrack-api/internal/repository/redis"
	"github.com/vitaltrack/vitaltrack-api/internal/router"
	authService "github.com/vitaltrack/vitaltrack-api/internal/service/auth"
	healthrecordService "github.com/vitaltrack/vitaltrack-api/internal/service/healthrecord"
	medicationService "github.com/vitaltrack/vitaltrack-api/internal/service/medication"
	patientService "github.com/vitaltrack/vitaltrack-api/internal/service/patient"
	pkgauth "github.com/vitaltrack/vitaltrack-api/pkg/auth"
	"github.com/vitaltrack/vitaltrack-api/pkg/logger"
	"github.com/vitaltrack/vitaltrack-api/pkg/metrics"
	"github.com/vitaltrack/vitaltrack-api/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(&logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		Pretty:     cfg.Server.Environment == "development",
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redisrepo.NewClient(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	m := metrics.New("vitaltrack")

	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	medicationRepo := postgres.NewMedicationRepository(db, m)
	recordRepo := postgres.NewHealthRecordRepository(db, m)
	snapshotRepo := postgres.NewSnapshotRepository(db, m)
	tokenRepo := redisrepo.NewTokenRepository(redisClient)

	validate := validator.New()
	model.RegisterRules(validate.Engine())

	jwtSvc := pkgauth.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.Expiry(),
		cfg.JWT.RefreshExpiry(),
	)
	emailSvc := email.NewService(cfg.SMTP)
	predictor := prediction.NewClient(cfg.Prediction.BaseURL, cfg.Prediction.Timeout(), m)

	authSvc := authService.NewService(userRepo, tokenRepo, jwtSvc, emailSvc, validate)
	patientSvc := patientService.NewService(patientRepo, validate)
	medicationSvc := medicationService.NewService(medicationRepo, patientRepo, validate)
	recordSvc := healthrecordService.NewService(
		recordRepo, snapshotRepo, patientRepo, userRepo,
		predictor, emailSvc, validate, m,
	)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	h := handler.NewHandler(db, redisClient)
	authH := authHandler.NewHandler(authSvc)
	patientH := patientHandler.NewHandler(patientSvc, recordSvc)
	medicationH := medicationHandler.NewHandler(medicationSvc)
	recordH := healthrecordHandler.NewHandler(recordSvc)

	r := router.NewRouter(
		authMiddleware,
		authH,
		h,
		router.Config{
			Environment: cfg.Server.Environment,
			Timeout:     time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			RateLimit: middleware.RateLimiterConfig{
				RPS:   cfg.RateLimit.RPS,
				Burst: cfg.RateLimit.Burst,
			},
			CORS:          middleware.DefaultCORSConfig(),
			MetricsPrefix: "vitaltrack",
		},
		patientH,
		medicationH,
		recordH,
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
