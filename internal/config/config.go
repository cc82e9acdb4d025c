package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full runtime configuration, read from the environment with
// defaults suitable for local development.
type Config struct {
	Env      string `env:"APP_ENV" env-default:"dev"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	HTTPServer `env-prefix:"HTTP_"`
	RateAPI    `env-prefix:"RATE_API_"`
	Storage    `env-prefix:"STORAGE_"`
}

// HTTPServer configures the listener.
type HTTPServer struct {
	Addr string `env:"ADDR" env-default:":8080"`
}

// RateAPI configures the external quote provider.
type RateAPI struct {
	BaseURL string        `env:"BASE_URL" env-default:"https://dolarapi.com"`
	Timeout time.Duration `env:"TIMEOUT" env-default:"10s"`
}

// Storage configures the durable state store.
type Storage struct {
	Dir string `env:"DIR" env-default:"./data"`
}

// MustLoad reads the configuration from the environment and exits on error.
func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}
	return &cfg
}
