// Command main is the entry point for the Noctua backend server.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/madaghaxx/Noctua/internal/bootstrap"
	"github.com/madaghaxx/Noctua/internal/config"
	"github.com/madaghaxx/Noctua/internal/middleware"
	"github.com/madaghaxx/Noctua/internal/observability"
	"github.com/madaghaxx/Noctua/internal/server"
)

// @title Noctua API
// @version 1.0
// @description Blog platform API with posts, likes, subscriptions, reports and moderation

// @contact.name API Support
// @contact.email support@noctua.local

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	middleware.SetLogger(middleware.NewLogger(cfg.Env, cfg.LogLevel))

	ctx := context.Background()
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    "noctua-api",
		ServiceVersion: "1.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer rt.Close()

	srv := server.NewServer(cfg, rt.DB, rt.Redis)
	srv.EnableMetrics(middleware.InitMetrics("noctua-api"))

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("Server shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("Tracer shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		middleware.Logger.Error("Server stopped", slog.String("error", err.Error()))
		rt.Close()
		os.Exit(1)
	}
}
