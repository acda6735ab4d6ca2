package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment
// (optionally seeded from a .env file)
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" env-default:":8080"`
	DataDir  string `env:"DATA_DIR" env-default:"./data"`
	LogLevel string `env:"LOG_LEVEL" env-default:"INFO"`

	FX FXConfig
}

// FXConfig configures the FX rate service. The base currency is fixed by
// the supported currency set and is not configurable.
type FXConfig struct {
	ProviderURL     string        `env:"FX_PROVIDER_URL" env-default:"https://api.frankfurter.app/latest"`
	ProviderTimeout time.Duration `env:"FX_PROVIDER_TIMEOUT" env-default:"10s"`
	TTL             time.Duration `env:"FX_TTL" env-default:"6h"`
	RefreshSpec     string        `env:"FX_REFRESH_CRON" env-default:"@every 3h"`
}

// Load reads configuration from the environment. A missing .env file is
// not an error; explicit environment variables always win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	return &cfg, nil
}
