// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Corphon/LessonPlanner/internal/config"
	"github.com/Corphon/LessonPlanner/internal/di"
	"github.com/Corphon/LessonPlanner/internal/observability"
	"github.com/Corphon/LessonPlanner/internal/ratelimit"
	"github.com/Corphon/LessonPlanner/internal/services"
	"github.com/Corphon/LessonPlanner/internal/storage"
	"github.com/Corphon/LessonPlanner/internal/store"
	"github.com/Corphon/LessonPlanner/internal/utils"

	// model backends register themselves
	_ "github.com/Corphon/LessonPlanner/internal/llm/providers/cohere"
	_ "github.com/Corphon/LessonPlanner/internal/llm/providers/gemini"
	_ "github.com/Corphon/LessonPlanner/internal/llm/providers/ollama"
)

const (
	progressSweepInterval = time.Minute
	progressMaxAge        = 10 * time.Minute
	counterSweepInterval  = 5 * time.Minute
)

// App owns the wired services and the resources they hold.
type App struct {
	Config    *config.AppConfig
	Container *di.Container
	Logger    *utils.Logger
	Metrics   *utils.MetricsCollector

	cancel  context.CancelFunc
	closers []func(context.Context) error
}

// New wires every service into a fresh container. Optional backends that
// fail to come up (Redis, Postgres) are logged and replaced by the local
// fallback so the service still starts.
func New(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if logger == nil {
		logger = utils.GetLogger()
	}

	bg, cancel := context.WithCancel(context.Background())
	a := &App{
		Config:    cfg,
		Container: di.NewContainer(),
		Logger:    logger,
		Metrics:   utils.NewMetricsCollector(),
		cancel:    cancel,
	}
	pipelineMetrics := utils.NewPipelineMetrics(a.Metrics)

	a.closers = append(a.closers, observability.InitOTel(ctx, logger, observability.OtelConfig{
		Enabled:     cfg.OTelEnabled,
		ServiceName: "lesson-planner",
		Environment: cfg.AppEnv,
		SampleRatio: 1,
		Pretty:      cfg.IsDevelopment(),
	}))

	fs, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("data dir: %w", err)
	}
	diagnostics := storage.NewDiagnosticsSink(nil, logger)
	if cfg.DiagnosticsEnabled {
		diagnostics = storage.NewDiagnosticsSink(fs, logger)
	}

	usage := services.NewUsageService(fs, logger)
	usage.StartPeriodicSave(bg)
	a.closers = append(a.closers, func(context.Context) error { return usage.Close() })

	policyLoader := storage.NewPolicyLoader(cfg.PolicyFile, storage.NewFileCacheService(4, time.Minute), logger)

	a.Container.Register(di.ServiceRateLimiter, a.rateCounter(ctx, bg))

	var markersStore services.MarkersStore
	if repo := a.markersRepo(ctx); repo != nil {
		markersStore = repo
	}

	llmService := services.NewLLMService(services.LLMOptions{
		Provider:    cfg.LLMProvider,
		Configs:     cfg.LLMConfig,
		Timeout:     cfg.LLMTimeout,
		Temperature: cfg.LLMTemperature,
	}, logger, pipelineMetrics)

	progressService := services.NewProgressService()
	progressService.StartCleanup(bg, progressSweepInterval, progressMaxAge)

	lessonService := services.NewLessonService(services.LessonDeps{
		Policy:      policyLoader,
		LLM:         llmService,
		Diagnostics: diagnostics,
		Store:       markersStore,
		Logger:      logger,
		Metrics:     pipelineMetrics,
	})

	a.Container.Register(di.ServiceMetrics, a.Metrics)
	a.Container.Register(di.ServicePolicy, policyLoader)
	a.Container.Register(di.ServiceLLM, llmService)
	a.Container.Register(di.ServiceProgress, progressService)
	a.Container.Register(di.ServiceLesson, lessonService)
	a.Container.Register(di.ServiceInstrument, services.NewInstrumentService(logger))
	a.Container.Register(di.ServiceUsage, usage)

	logger.Info("services ready",
		"provider", llmService.GetProviderName(),
		"provider_state", llmService.GetReadyState(),
		"diagnostics", diagnostics.Path(),
		"services", len(a.Container.GetNames()))
	return a, nil
}

// rateCounter prefers Redis when configured and reachable.
func (a *App) rateCounter(ctx, bg context.Context) ratelimit.Counter {
	cfg := a.Config
	if cfg.RedisAddr != "" {
		rdb, err := ratelimit.DialRedis(ctx, cfg.RedisAddr)
		if err == nil {
			a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
			a.Logger.Info("rate limit counter", "backend", "redis")
			return ratelimit.NewRedisCounter(rdb, cfg.RateLimitRequests, cfg.RateLimitWindow)
		}
		a.Logger.Warn("redis unavailable, using in-memory rate limit", "error", err)
	}
	counter := ratelimit.NewMemoryCounter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	counter.StartSweeper(bg, counterSweepInterval)
	a.Logger.Info("rate limit counter", "backend", "memory")
	return counter
}

// markersRepo opens Postgres when DATABASE_URL is set.
func (a *App) markersRepo(ctx context.Context) *store.MarkersRepo {
	if a.Config.DatabaseURL == "" {
		return nil
	}
	db, err := store.Open(ctx, a.Config.DatabaseURL)
	if err != nil {
		a.Logger.Warn("markers database unavailable", "error", err)
		return nil
	}
	if err := store.EnsureSchema(ctx, db); err != nil {
		a.Logger.Warn("markers schema setup failed", "error", err)
		_ = db.Close()
		return nil
	}
	a.closers = append(a.closers, func(context.Context) error { return db.Close() })
	return store.NewMarkersRepo(db)
}

// Close stops background work and releases resources in reverse order.
func (a *App) Close(ctx context.Context) error {
	a.cancel()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
