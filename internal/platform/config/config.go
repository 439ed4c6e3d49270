// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config reads the server's settings from the environment with
caarlos0/env.

Connection strings and key paths have no defaults and must be non-empty.
Everything else defaults to a local development setup.

	cfg, err := config.Load()
	if err != nil {
	    return err
	}
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Deployment environments accepted in ENVIRONMENT.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config is the server configuration. It is read once at startup and passed
// by pointer to the components that need it.
type Config struct {
	// # Server
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`

	// # Storage
	// Credentials and profiles live in PostgreSQL, sessions in Redis.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	RedisURL    string `env:"REDIS_URL,required,notEmpty"`

	// MigrationPath replaces the embedded migrations with a directory on disk.
	MigrationPath string `env:"MIGRATION_PATH"`

	// # Sessions
	JWTPrivKeyPath      string `env:"JWT_PRIVATE_KEY_PATH,required,notEmpty"`
	JWTPubKeyPath       string `env:"JWT_PUBLIC_KEY_PATH,required,notEmpty"`
	SessionCookieSecure bool   `env:"SESSION_COOKIE_SECURE" envDefault:"true"`

	// # Web
	// PagesDir holds the HTML pages served behind the session gate.
	PagesDir            string `env:"PAGES_DIR" envDefault:"./web"`
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"serbbisyo.ph"`
}

// Load parses the environment and rejects unknown ENVIRONMENT values.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}

	switch cfg.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return nil, fmt.Errorf("config: unknown ENVIRONMENT %q", cfg.Environment)
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool { return c.Environment == EnvDevelopment }

func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// OriginSuffix is the host suffix CORS accepts outside development.
func (c *Config) OriginSuffix() string { return c.AllowedOriginSuffix }
