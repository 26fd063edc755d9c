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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/edupro-navigator/api/swagger"
	"github.com/noah-isme/edupro-navigator/internal/handler"
	"github.com/noah-isme/edupro-navigator/internal/middleware"
	"github.com/noah-isme/edupro-navigator/internal/repository"
	"github.com/noah-isme/edupro-navigator/internal/service"
	"github.com/noah-isme/edupro-navigator/pkg/cache"
	"github.com/noah-isme/edupro-navigator/pkg/config"
	"github.com/noah-isme/edupro-navigator/pkg/database"
	"github.com/noah-isme/edupro-navigator/pkg/genai"
	"github.com/noah-isme/edupro-navigator/pkg/jobs"
	"github.com/noah-isme/edupro-navigator/pkg/logger"
	"github.com/noah-isme/edupro-navigator/pkg/media"
	corsmiddleware "github.com/noah-isme/edupro-navigator/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edupro-navigator/pkg/middleware/requestid"
	"github.com/noah-isme/edupro-navigator/pkg/reporting"
	"github.com/noah-isme/edupro-navigator/pkg/storage"
)

// @title EduPro Navigator API
// @version 1.0.0
// @description Lesson, assessment and intervention records with AI coaching for educators
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

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Fatal("failed to open record store", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, running without cache", zap.Error(err))
			redisClient = nil
		}
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	accommodationRepo := repository.NewAccommodationRepository(db)
	interventionRepo := repository.NewInterventionRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	campusRepo := repository.NewCampusRepository(db)

	authSvc := service.NewAuthService(userRepo, classRepo, cacheSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		SessionTTL:        cfg.Cache.SessionTTL,
	})
	userSvc := service.NewUserService(userRepo, classRepo, cacheSvc, validate, logr, cfg.Cache.SessionTTL)
	classSvc := service.NewClassService(classRepo, userSvc, validate, logr)
	lessonSvc := service.NewLessonService(lessonRepo, cacheSvc, validate, logr)
	assessmentSvc := service.NewAssessmentService(assessmentRepo, cacheSvc, validate, logr)
	accommodationSvc := service.NewAccommodationService(accommodationRepo, validate, logr)
	interventionSvc := service.NewInterventionService(interventionRepo, cacheSvc, validate, logr)
	historySvc := service.NewHistoryService(historyRepo, cacheSvc, logr)
	insightsSvc := service.NewInsightsService(historyRepo, assessmentRepo, cacheSvc, cfg.Cache.TTL, logr)
	campusSvc := service.NewCampusService(campusRepo, cacheSvc, cfg.Cache.TTL, logr)

	queue := jobs.NewQueue("ai", jobs.QueueConfig{
		Workers:  cfg.AI.Workers,
		Timeout:  cfg.AI.Timeout + 30*time.Second,
		Observer: metrics.ObserveTask,
		Logger:   logr,
	})
	queue.Start(context.Background())
	defer queue.Stop()

	generator := genai.NewClient(genai.Config{
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		BaseURL:  cfg.AI.BaseURL,
		Timeout:  cfg.AI.Timeout,
		Observer: metrics.ObserveAICall,
		Logger:   logr,
	})
	if cfg.AI.APIKey == "" {
		logr.Warn("AI API key not configured; AI features will report a configuration error")
	}

	views := service.NewViewRegistry(queue, logr)
	workflowSvc := service.NewWorkflowService(service.WorkflowDeps{
		Bridge:         service.NewAIBridge(generator, logr),
		Media:          media.NewProcessor(cfg.Media),
		Views:          views,
		Lessons:        lessonSvc,
		Assessments:    assessmentSvc,
		Accommodations: accommodationSvc,
		Interventions:  interventionSvc,
		History:        historySvc,
		Campus:         campusSvc,
	}, validate, logr)

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare exports directory", zap.String("dir", cfg.Exports.StorageDir), zap.Error(err))
	}
	exportSvc := service.NewExportService(
		assessmentSvc,
		historySvc,
		exportStorage,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
		validate,
		logr,
	)
	go cleanupExports(ctx, exportSvc, cfg.Exports.SignedURLTTL, logr)

	reporter := reporting.New(cfg.Reporting, cfg.Env, logr)
	defer reporter.Close()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))
	r.Use(reporter.Middleware())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	metricsHandler := handler.NewMetricsHandler(metrics.Handler(), func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Auth:           handler.NewAuthHandler(authSvc, userSvc),
		Classes:        handler.NewClassHandler(classSvc),
		Lessons:        handler.NewLessonHandler(lessonSvc),
		Assessments:    handler.NewAssessmentHandler(assessmentSvc),
		Accommodations: handler.NewAccommodationHandler(accommodationSvc),
		Interventions:  handler.NewInterventionHandler(interventionSvc),
		History:        handler.NewHistoryHandler(historySvc),
		Insights:       handler.NewInsightsHandler(insightsSvc, campusSvc),
		Workflows:      handler.NewWorkflowHandler(workflowSvc),
		Views:          handler.NewViewHandler(views),
		Exports:        handler.NewExportHandler(exportSvc),
	}, middleware.JWT(authSvc), logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func cleanupExports(ctx context.Context, exports *service.ExportService, ttl time.Duration, logr *zap.Logger) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := exports.Cleanup(0)
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}
