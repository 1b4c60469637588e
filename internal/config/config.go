// Package config loads server settings from the environment.
//
// A .env file in the working directory is read first when present, so a
// developer can keep SECRET_KEY and GEMINI_API_KEY out of their shell. Real
// environment variables always win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// MinSecretKeyLength matches the token signer's own lower bound.
const MinSecretKeyLength = 16

// Config holds every runtime setting of the server.
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://data/learninfive.db"`

	SecretKey      string        `env:"SECRET_KEY,required"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"12"`

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	Gemini struct {
		APIKey  string        `env:"GEMINI_API_KEY"`
		Model   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
		BaseURL string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai"`
		Timeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"30s"`

		// MaxConcurrent bounds simultaneous calls to the generator.
		MaxConcurrent int `env:"GENERATION_CONCURRENCY" envDefault:"4"`
	}
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("config: loading .env: %w", err)
		}
	}
	return parse(env.Options{})
}

// FromMap builds a Config from an explicit variable set instead of the
// process environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg, opts); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if len(c.SecretKey) < MinSecretKeyLength {
		errs = append(errs, fmt.Errorf("SECRET_KEY must be at least %d characters", MinSecretKeyLength))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL must not be empty"))
	}
	if c.Gemini.MaxConcurrent < 1 {
		errs = append(errs, errors.New("GENERATION_CONCURRENCY must be at least 1"))
	}
	if c.Gemini.Timeout <= 0 {
		errs = append(errs, errors.New("GENERATION_TIMEOUT must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// GeneratorEnabled reports whether an API key was supplied for the
// explanation generator.
func (c *Config) GeneratorEnabled() bool {
	return c.Gemini.APIKey != ""
}
