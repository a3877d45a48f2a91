package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-dashboard-api/api/swagger"
	"github.com/noah-isme/sma-dashboard-api/internal/backend"
	"github.com/noah-isme/sma-dashboard-api/internal/cache"
	"github.com/noah-isme/sma-dashboard-api/internal/handler"
	"github.com/noah-isme/sma-dashboard-api/internal/middleware"
	"github.com/noah-isme/sma-dashboard-api/internal/service"
	"github.com/noah-isme/sma-dashboard-api/internal/store"
	"github.com/noah-isme/sma-dashboard-api/internal/validation"
	pkgcache "github.com/noah-isme/sma-dashboard-api/pkg/cache"
	"github.com/noah-isme/sma-dashboard-api/pkg/config"
	"github.com/noah-isme/sma-dashboard-api/pkg/database"
	"github.com/noah-isme/sma-dashboard-api/pkg/export"
	"github.com/noah-isme/sma-dashboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-dashboard-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-dashboard-api/pkg/storage"
)

// @title SMA Dashboard API
// @version 0.1.0
// @description Record store and role-based data services for the school dashboard
// @BasePath /
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	queryCache, err := newQueryCache(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init query cache", "error", err)
	}

	rules := validation.New(cfg.Store.PasswordMinLength)
	recordStore := store.New(backend.NewPostgres(db, logr), queryCache, rules, logr, store.Config{
		MaxRecords: cfg.Store.MaxRecords,
		Seeds:      store.DefaultSeeds(),
	})

	metrics := service.NewMetricsService()
	recordStore.SetMetrics(metrics)

	if err := recordStore.Start(context.Background()); err != nil {
		logr.Sugar().Fatalw("failed to load records from backend", "error", err)
	}

	authService := service.NewAuthService(recordStore, validator.New(), logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	exportStorage, err := storage.NewLocalStorage(cfg.Export.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	exportJobs := service.NewExportJobService(recordStore, exportStorage,
		storage.NewSignedURLSigner(cfg.Export.SignedURLSecret, cfg.Export.SignedURLTTL),
		logr, service.ExportJobConfig{
			APIPrefix:       cfg.APIPrefix,
			ResultTTL:       cfg.Export.SignedURLTTL,
			CleanupInterval: cfg.Export.CleanupInterval,
			Workers:         cfg.Export.Workers,
			MaxRetries:      cfg.Export.MaxRetries,
		})
	exportJobs.Start(context.Background())
	defer exportJobs.Stop()

	authHandler := handler.NewAuthHandler(authService)
	recordHandler := handler.NewRecordHandler(recordStore)
	exportHandler := handler.NewExportHandler(recordStore,
		export.NewCSVExporter(), export.NewJSONExporter(), export.NewPDFExporter())
	eventsHandler := handler.NewEventsHandler(recordStore)
	exportJobsHandler := handler.NewExportJobsHandler(exportJobs)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(metrics.GinMiddleware())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "records": recordStore.Len()})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	// Download tokens are self-authorizing, so the route sits outside the JWT group.
	api.GET("/downloads/:token", exportJobsHandler.Download)

	authed := api.Group("/", middleware.JWT(authService))
	{
		authed.GET("/records/:type", recordHandler.List)
		authed.POST("/records/:type", recordHandler.Create)
		authed.PATCH("/records/:type/:id", recordHandler.Update)
		authed.DELETE("/records/:type/:id", recordHandler.Delete)
		authed.GET("/export/:type", exportHandler.Export)
		authed.POST("/export/:type/jobs", exportJobsHandler.CreateJob)
		authed.GET("/export-jobs/:id", exportJobsHandler.JobStatus)
		authed.GET("/events", eventsHandler.Stream)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "cache", cfg.Store.CacheDriver)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func newQueryCache(cfg *config.Config, logr *zap.Logger) (cache.Store, error) {
	switch cfg.Store.CacheDriver {
	case config.CacheDriverRedis:
		client, err := pkgcache.NewRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return cache.NewRedis(client, cfg.Store.CacheTTL, "records:", logr), nil
	case config.CacheDriverOff:
		return cache.Disabled{}, nil
	default:
		return cache.NewMemory(cfg.Store.CacheTTL, cfg.Store.CacheSweepInterval), nil
	}
}
