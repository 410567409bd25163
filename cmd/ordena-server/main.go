// Command ordena-server runs the ordering assistant behind an HTTP
// webhook and a WebSocket chat endpoint.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/ordena/ordena/internal/app"
	"github.com/ordena/ordena/internal/config"
	"github.com/ordena/ordena/internal/httpapi"
	"github.com/ordena/ordena/internal/wsapi"
)

func main() {
	cfg := config.Load()

	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting ordena server",
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("store_backend", cfg.StoreBackend))

	ctx := context.Background()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer application.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h := httpapi.NewHandler(application.Manager, application.Store, logger)
	h.RegisterRoutes(e)

	ws := wsapi.NewServer(application.Manager, logger)
	ws.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.Int("port", cfg.HTTPPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown gracefully", zap.Error(err))
	}
	logger.Info("server stopped")
}
