package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the diagnostics dashboard.
type Config struct {
	Server          ServerConfig          `yaml:"server"`
	Predictor       PredictorConfig       `yaml:"predictor"`
	Logging         LoggingConfig         `yaml:"logging"`
	Recommendations RecommendationsConfig `yaml:"recommendations"`
	Cache           CacheConfig           `yaml:"cache"`
	Display         DisplayConfig         `yaml:"display"`
}

// ServerConfig controls gRPC listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// PredictorConfig configures access to the remote fault-prediction service.
type PredictorConfig struct {
	BaseURL     string        `yaml:"baseURL"`
	PredictPath string        `yaml:"predictPath"`
	HealthPath  string        `yaml:"healthPath"`
	Timeout     time.Duration `yaml:"timeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// RecommendationsConfig points at an optional overlay for the maintenance table.
type RecommendationsConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig controls memoization of prediction responses.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Backend    string        `yaml:"backend"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"maxEntries"`
	Valkey     ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig points the cache at a shared Valkey/Redis server when backend is "valkey".
type ValkeyConfig struct {
	Addr       string        `yaml:"addr"`
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	TLS        bool          `yaml:"tls"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"maxRetries"`
}

// DisplayConfig controls view-model shaping.
type DisplayConfig struct {
	TopK int `yaml:"topK"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("AIMS_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Predictor.BaseURL) == "" {
		return fmt.Errorf("predictor.baseURL is required")
	}
	if c.Predictor.Timeout <= 0 {
		return fmt.Errorf("predictor.timeout must be positive")
	}
	if c.Display.TopK < 0 {
		return fmt.Errorf("display.topK must not be negative")
	}
	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive when the cache is enabled")
		}
		switch c.Cache.Backend {
		case "memory":
		case "valkey":
			if strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
				return fmt.Errorf("cache.valkey.addr is required for the valkey backend")
			}
		default:
			return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
		}
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":50051",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Predictor: PredictorConfig{
			BaseURL:     "http://localhost:8000",
			PredictPath: "/predict",
			HealthPath:  "/",
			Timeout:     10 * time.Second,
		},
		Logging:         LoggingConfig{Level: "info", JSON: false},
		Recommendations: RecommendationsConfig{Path: "configs/recommendations.yaml"},
		Cache: CacheConfig{
			Enabled:    false,
			Backend:    "memory",
			TTL:        time.Minute,
			MaxEntries: 256,
			Valkey: ValkeyConfig{
				Timeout:    500 * time.Millisecond,
				MaxRetries: 2,
			},
		},
		Display: DisplayConfig{TopK: 8},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AIMS_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("AIMS_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("AIMS_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
	if v := os.Getenv("AIMS_PREDICTOR_URL"); v != "" {
		cfg.Predictor.BaseURL = v
	}
	if v := os.Getenv("AIMS_PREDICTOR_PREDICT_PATH"); v != "" {
		cfg.Predictor.PredictPath = v
	}
	if v := os.Getenv("AIMS_PREDICTOR_HEALTH_PATH"); v != "" {
		cfg.Predictor.HealthPath = v
	}
	if v := os.Getenv("AIMS_PREDICTOR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Predictor.Timeout = d
		}
	}
	if v := os.Getenv("AIMS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AIMS_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("AIMS_RECOMMENDATIONS_PATH"); v != "" {
		cfg.Recommendations.Path = v
	}
	if v := os.Getenv("AIMS_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("AIMS_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("AIMS_VALKEY_ADDR"); v != "" {
		cfg.Cache.Valkey.Addr = v
	}
	if v := os.Getenv("AIMS_VALKEY_USERNAME"); v != "" {
		cfg.Cache.Valkey.Username = v
	}
	if v := os.Getenv("AIMS_VALKEY_PASSWORD"); v != "" {
		cfg.Cache.Valkey.Password = v
	}
	if v := os.Getenv("AIMS_VALKEY_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Valkey.DB = n
		}
	}
	if v := os.Getenv("AIMS_VALKEY_TLS"); v != "" {
		cfg.Cache.Valkey.TLS = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("AIMS_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("AIMS_CACHE_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.MaxEntries = n
		}
	}
	if v := os.Getenv("AIMS_DISPLAY_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Display.TopK = n
		}
	}
}
