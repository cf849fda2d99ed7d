package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-api/api/swagger"
	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

// @title SMA Timetable API
// @version 1.0.0
// @description Automatic weekly timetable generation per class section.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, running without cache and section lock", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	authService := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheService := service.NewCacheService(cacheRepo, metrics, cfg.Timetable.CacheTTL, logr, redisClient != nil)
	assignments := repository.NewTimetableAssignmentRepository(db)

	generator := service.NewTimetableGeneratorService(
		repository.NewAcademicSessionRepository(db),
		repository.NewTimetableTemplateRepository(db),
		repository.NewSubjectRequirementRepository(db),
		repository.NewCalendarRepository(db),
		assignments,
		repository.NewDirectoryRepository(db),
		repository.NewSectionLockRepository(redisClient),
		db,
		cacheService,
		metrics,
		validate,
		logr,
		service.TimetableGeneratorConfig{
			Enabled:  cfg.Timetable.Enabled,
			LockTTL:  cfg.Timetable.SectionLockTTL,
			CacheTTL: cfg.Timetable.CacheTTL,
			RunTTL:   cfg.Timetable.RunTTL,
			Timeout:  cfg.Timetable.GenerateTimeout,
			Workers:  cfg.Timetable.Workers,
			Retries:  cfg.Timetable.WorkerRetries,
			Defaults: scheduler.Rules{
				MaxConsecutiveTeacherHours: cfg.Timetable.DefaultMaxConsecutive,
				MaxPeriodsPerSubjectPerDay: cfg.Timetable.DefaultMaxSubjectPerDay,
				MaxPeriodsPerTeacherPerDay: cfg.Timetable.DefaultMaxTeacherPerDay,
				BalanceSubjectDistribution: cfg.Timetable.DefaultBalanceSubjectDist,
			},
		},
	)
	generator.Start(ctx)
	defer generator.Stop()

	exporter := service.NewExportService(generator, logr, nil, nil)

	timetableHandler := handler.NewTimetableHandler(generator, exporter, validate)
	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
		"redis":    cacheRepo.Ping,
	})

	r := newRouter(cfg, logr, metrics, authService, timetableHandler, metricsHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newRouter(
	cfg *config.Config,
	logr *zap.Logger,
	metrics *service.MetricsService,
	tokens middleware.TokenValidator,
	timetables *handler.TimetableHandler,
	health *handler.MetricsHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", health.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, middleware.JWT(tokens), middleware.Tenant())
	read := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher)
	write := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	timetable := api.Group("/timetables")
	timetable.POST("/generate", write, timetables.Generate)
	timetable.GET("/runs/:id", write, timetables.RunStatus)
	timetable.GET("/sessions/:sessionId/sections/:sectionId", read, timetables.Get)
	timetable.GET("/sessions/:sessionId/sections/:sectionId/export", read, timetables.Export)

	return r
}
