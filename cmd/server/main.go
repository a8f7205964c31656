// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Corphon/LessonPlanner/internal/api"
	"github.com/Corphon/LessonPlanner/internal/app"
	"github.com/Corphon/LessonPlanner/internal/config"
	"github.com/Corphon/LessonPlanner/internal/di"
	"github.com/Corphon/LessonPlanner/internal/utils"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := utils.InitLogger(cfg.AppEnv); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger := utils.GetLogger()
	defer logger.Sync()

	for _, w := range cfg.Warnings {
		logger.Warn("config value replaced by default", "detail", w)
	}
	logger.Info("starting lesson planner", "port", cfg.Port, "env", cfg.AppEnv, "provider", cfg.LLMProvider)

	ctx := context.Background()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("wire services", "error", err)
	}

	router, err := api.SetupRouter(application.Container, cfg, logger)
	if err != nil {
		logger.Fatal("setup router", "error", err)
	}

	serveUntilSignal(router, cfg.Port, application, logger)
}

// serveUntilSignal runs the server and shuts it down on SIGINT/SIGTERM.
func serveUntilSignal(router *gin.Engine, port string, application *app.App, logger *utils.Logger) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "error", err)
		}
	}()
	logger.Info("listening", "addr", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if hub, err := di.Resolve[*api.ProgressHub](application.Container, di.ServiceProgressHub); err == nil {
		hub.Shutdown()
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	if err := application.Close(ctx); err != nil {
		logger.Warn("release resources", "error", err)
	}
	logger.Info("server stopped")
}
