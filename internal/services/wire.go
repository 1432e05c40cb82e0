package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aimsmarine/aims-diagnostics/internal/cache"
	"github.com/aimsmarine/aims-diagnostics/internal/config"
	"github.com/aimsmarine/aims-diagnostics/internal/engine"
	"github.com/aimsmarine/aims-diagnostics/internal/repo"
)

// Components is the wired dashboard stack.
type Components struct {
	Service   *DashboardService
	Predictor *repo.PredictorClient
	Cache     cache.Provider
}

// Close releases the cache.
func (c Components) Close() error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}

// NewFromConfig builds the prediction client, pipeline and dashboard service from cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (Components, error) {
	if cfg == nil {
		return Components{}, fmt.Errorf("config is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cacheProvider, err := newCache(cfg.Cache, logger)
	if err != nil {
		return Components{}, err
	}

	predictor := repo.NewPredictorClient(
		cfg.Predictor.BaseURL,
		cfg.Predictor.PredictPath,
		cfg.Predictor.HealthPath,
		cfg.Predictor.Timeout,
		cacheProvider,
		cfg.Cache.TTL,
	)

	resolver, err := engine.NewResolver(cfg.Recommendations.Path, logger)
	if err != nil {
		_ = cacheProvider.Close()
		return Components{}, fmt.Errorf("load recommendations: %w", err)
	}

	pipeline := engine.NewPipeline(logger, predictor, resolver, cfg.Display.TopK)
	return Components{
		Service:   NewDashboardService(logger, pipeline, nil),
		Predictor: predictor,
		Cache:     cacheProvider,
	}, nil
}

func newCache(cfg config.CacheConfig, logger *slog.Logger) (cache.Provider, error) {
	if !cfg.Enabled {
		return cache.NoopProvider{}, nil
	}
	if cfg.Backend == "valkey" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Valkey.Timeout+time.Second)
		defer cancel()
		provider, err := cache.NewValkeyProvider(ctx, cache.ValkeyConfig{
			Addr:       cfg.Valkey.Addr,
			Username:   cfg.Valkey.Username,
			Password:   cfg.Valkey.Password,
			DB:         cfg.Valkey.DB,
			TLS:        cfg.Valkey.TLS,
			Timeout:    cfg.Valkey.Timeout,
			MaxRetries: cfg.Valkey.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("connect prediction cache: %w", err)
		}
		logger.Info("prediction cache enabled", slog.String("backend", "valkey"), slog.String("addr", cfg.Valkey.Addr), slog.Duration("ttl", cfg.TTL))
		return provider, nil
	}
	logger.Info("prediction cache enabled", slog.String("backend", "memory"), slog.Duration("ttl", cfg.TTL), slog.Int("max_entries", cfg.MaxEntries))
	return cache.NewMemoryProvider(cfg.MaxEntries), nil
}
