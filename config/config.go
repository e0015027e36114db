// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is read once at startup and never changes afterwards.
type Config struct {
	Port          int           `env:"PORT,default=3000"`
	DatabaseURI   string        `env:"VIDLY_DB,required"`
	JWTPrivateKey string        `env:"VIDLY_JWT_PRIVATE_KEY,required"`
	LogLevel      string        `env:"VIDLY_LOG_LEVEL,default=info"`
	LogFormat     string        `env:"VIDLY_LOG_FORMAT,default=text"`
	CORSOrigins   []string      `env:"VIDLY_CORS_ORIGINS,default=*"`
	TokenTTL      time.Duration `env:"VIDLY_TOKEN_TTL,default=0s"`
	BcryptCost    int           `env:"VIDLY_BCRYPT_COST,default=10"`
}

// Load reads envFile into the environment when it exists, then decodes the
// environment into a Config. Variables already set in the environment win
// over the file. A missing signing key or database URI is an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: PORT %d out of range", cfg.Port)
	}
	return &cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
