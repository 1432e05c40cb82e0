package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aimsmarine/aims-diagnostics/internal/api"
	"github.com/aimsmarine/aims-diagnostics/internal/config"
	"github.com/aimsmarine/aims-diagnostics/internal/metrics"
	"github.com/aimsmarine/aims-diagnostics/internal/services"
	"github.com/aimsmarine/aims-diagnostics/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting aims-dashboard",
		slog.String("address", cfg.Server.Address),
		slog.String("predictor", cfg.Predictor.BaseURL),
	)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	components, err := services.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Error("failed to build dashboard", slog.Any("error", err))
		os.Exit(1)
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pingCtx, cancelPing := context.WithTimeout(ctx, cfg.Predictor.Timeout)
	if status, err := components.Predictor.Ping(pingCtx); err != nil {
		logger.Warn("prediction service not reachable", slog.Any("error", err))
	} else {
		logger.Info("prediction service reachable", slog.String("status", status))
	}
	cancelPing()

	server, err := api.NewServer(cfg.Server, components.Service)
	if err != nil {
		logger.Error("failed to create gRPC server", slog.Any("error", err))
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	logger.Info("gRPC server listening", slog.String("address", server.Address()))
	if err := server.Serve(ctx); err != nil {
		logger.Error("gRPC server exited", slog.Any("error", err))
	}
	stop()
	logger.Info("gRPC server stopped")

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	logger.Info("aims-dashboard stopped", slog.Duration("p95", components.Service.LatencyP95()))
}
