package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/quick-event-planner/internal/handler"
	internalmiddleware "github.com/noah-isme/quick-event-planner/internal/middleware"
	"github.com/noah-isme/quick-event-planner/internal/repository"
	"github.com/noah-isme/quick-event-planner/internal/scheduler"
	"github.com/noah-isme/quick-event-planner/internal/service"
	"github.com/noah-isme/quick-event-planner/pkg/cache"
	"github.com/noah-isme/quick-event-planner/pkg/config"
	"github.com/noah-isme/quick-event-planner/pkg/ical"
	"github.com/noah-isme/quick-event-planner/pkg/logger"
	corsmiddleware "github.com/noah-isme/quick-event-planner/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/quick-event-planner/pkg/middleware/requestid"
)

// app holds the wired HTTP engine and the resources main must release.
type app struct {
	engine  *gin.Engine
	sweeper *scheduler.Sweeper
	redis   *redis.Client
}

func (a *app) close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// newApp wires stores, services and handlers. A nil redisClient with the
// redis store selected dials Redis from cfg.
func newApp(ctx context.Context, cfg *config.Config, logr *zap.Logger, redisClient *redis.Client) (*app, error) {
	a := &app{}
	validate := validator.New()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	var (
		store repository.SelectionStore
		probe handler.ReadinessProbe
	)
	switch cfg.Planner.SessionStore {
	case config.SessionStoreRedis:
		if redisClient == nil {
			client, err := cache.NewRedis(ctx, cfg.Redis)
			if err != nil {
				return nil, fmt.Errorf("connect session store: %w", err)
			}
			redisClient = client
		}
		a.redis = redisClient
		store = repository.NewSelectionRepository(redisClient, logr)
		probe = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	default:
		mem := repository.NewMemorySelectionRepository()
		store = mem
		a.sweeper = scheduler.NewSweeper(mem, cfg.Planner.SweepSchedule, logr.Named("sweeper"))
	}

	calendarSvc := service.NewCalendarService(cfg.Planner.WeekStart)
	selectionSvc := service.NewSelectionService(store, calendarSvc, metricsSvc, validate, logr, service.SelectionServiceConfig{
		TTL: cfg.Planner.SessionTTL,
	})
	exportSvc := service.NewExportService(ical.NewSerializer(cfg.Planner.ProductID), selectionSvc, metricsSvc, validate, logr, service.ExportConfig{
		Filename: cfg.Planner.ExportFilename,
	})

	a.engine = newRouter(cfg, logr, metricsSvc, routeHandlers{
		calendar:   handler.NewCalendarHandler(calendarSvc),
		selections: handler.NewSelectionHandler(selectionSvc, exportSvc),
		exports:    handler.NewExportHandler(exportSvc),
		metrics:    handler.NewMetricsHandler(metricsSvc, probe),
	})
	return a, nil
}

type routeHandlers struct {
	calendar   *handler.CalendarHandler
	selections *handler.SelectionHandler
	exports    *handler.ExportHandler
	metrics    *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(internalmiddleware.Metrics(metricsSvc))
		r.GET("/metrics", h.metrics.Prometheus)
	}

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(apiPrefix(cfg.APIPrefix))
	api.GET("/calendar/month", h.calendar.Month)
	api.POST("/export", h.exports.Export)

	sessions := api.Group("/sessions")
	sessions.POST("", h.selections.Create)
	sessions.GET("/:id", h.selections.Get)
	sessions.DELETE("/:id", h.selections.Delete)
	sessions.POST("/:id/dates/:date/toggle", h.selections.Toggle)
	sessions.DELETE("/:id/dates", h.selections.Clear)
	sessions.POST("/:id/navigate", h.selections.Navigate)
	sessions.POST("/:id/readiness", h.exports.Readiness)
	sessions.POST("/:id/export", h.exports.ExportSession)

	return r
}

func apiPrefix(raw string) string {
	prefix := "/" + strings.Trim(strings.TrimSpace(raw), "/")
	if prefix == "/" {
		return ""
	}
	return prefix
}
