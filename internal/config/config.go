package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Prefix is the environment variable prefix, e.g. SALES_PORT.
const Prefix = "SALES"

// Config holds the settings shared by the server and the ingest command.
type Config struct {
	Port           int      `envconfig:"PORT" default:"8081"`
	GinMode        string   `envconfig:"GIN_MODE" default:"release"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`
	Sources        []string `envconfig:"SOURCES" default:"data/daily_sales_data_0.csv,data/daily_sales_data_1.csv,data/daily_sales_data_2.csv"`
	ArtifactPath   string   `envconfig:"ARTIFACT_PATH" default:"soul_foods_pink_morsels_sales.csv"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// Load reads an optional .env file and then the SALES_* environment.
func Load() (*Config, error) {
	// .env is optional; the process environment always wins.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if strings.TrimSpace(c.ArtifactPath) == "" {
		return fmt.Errorf("artifact path must not be empty")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level '%s': %w", c.LogLevel, err)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid gin mode: '%s'", c.GinMode)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// NewLogger builds a production zap logger at level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %w", level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
