// internal/api/router.go
package api

import (
	"fmt"

	"github.com/Corphon/LessonPlanner/internal/config"
	"github.com/Corphon/LessonPlanner/internal/di"
	"github.com/Corphon/LessonPlanner/internal/ratelimit"
	"github.com/Corphon/LessonPlanner/internal/services"
	"github.com/Corphon/LessonPlanner/internal/utils"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "lesson-planner"

// SetupRouter builds the gin engine from services already in container.
func SetupRouter(container *di.Container, cfg *config.AppConfig, logger *utils.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = utils.GetLogger()
	}

	lessonService, err := di.Resolve[*services.LessonService](container, di.ServiceLesson)
	if err != nil {
		return nil, fmt.Errorf("lesson service: %w", err)
	}
	instrumentService, err := di.Resolve[*services.InstrumentService](container, di.ServiceInstrument)
	if err != nil {
		return nil, fmt.Errorf("instrument service: %w", err)
	}
	progressService, err := di.Resolve[*services.ProgressService](container, di.ServiceProgress)
	if err != nil {
		return nil, fmt.Errorf("progress service: %w", err)
	}
	llmService, err := di.Resolve[*services.LLMService](container, di.ServiceLLM)
	if err != nil {
		return nil, fmt.Errorf("llm service: %w", err)
	}
	metrics, err := di.Resolve[*utils.MetricsCollector](container, di.ServiceMetrics)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	counter, err := di.Resolve[ratelimit.Counter](container, di.ServiceRateLimiter)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	// Usage stats are optional.
	usageService, _ := di.Resolve[*services.UsageService](container, di.ServiceUsage)

	hub, err := di.Resolve[*ProgressHub](container, di.ServiceProgressHub)
	if err != nil {
		hub = NewProgressHub(logger)
		container.Register(di.ServiceProgressHub, hub)
	}

	handler := NewHandler(lessonService, instrumentService, progressService, llmService, usageService, metrics, hub, logger)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.OTelEnabled {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(RequestIDMiddleware())
	r.Use(AccessLogMiddleware(logger))
	r.Use(corsMiddleware())

	r.GET("/health", handler.Health)

	// WebSocket
	r.GET("/ws/progress/:taskId", handler.ProgressWebSocket)

	api := r.Group("/api")
	{
		api.POST("/generar", RateLimitByCaller(counter, logger), handler.GenerateLesson)
		api.POST("/instrumento", handler.GenerateInstrument)
		api.GET("/catalogo", handler.GetCatalog)
		api.GET("/metrics", handler.GetMetrics)
		api.GET("/usage", handler.GetUsage)
		api.GET("/progress/:taskId", handler.SubscribeProgress)
	}

	return r, nil
}
