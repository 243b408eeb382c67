// Package config loads server configuration from the environment (with .env
// support). All knobs are resolved once at startup; nothing re-reads the
// environment at call time.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete runtime configuration of the server.
type Config struct {
	// AWSRegion selects the HealthLake region. Defaults to us-west-2 when
	// AWS_REGION is unset.
	AWSRegion string `mapstructure:"AWS_REGION"`

	// ReadOnly rejects every mutating tool before any network call.
	ReadOnly bool `mapstructure:"HEALTHLAKE_MCP_READONLY"`

	// FHIRTimeout bounds each data-plane HTTP request.
	FHIRTimeout time.Duration `mapstructure:"FHIR_HTTP_TIMEOUT"`

	// LogLevel is a zap level string: debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// Load reads configuration from .env (if present) and the process environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("AWS_REGION", "us-west-2")
	v.SetDefault("HEALTHLAKE_MCP_READONLY", false)
	v.SetDefault("FHIR_HTTP_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("AWS_REGION")
	v.BindEnv("HEALTHLAKE_MCP_READONLY")
	v.BindEnv("FHIR_HTTP_TIMEOUT")
	v.BindEnv("LOG_LEVEL")

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.AWSRegion == "" {
		return nil, fmt.Errorf("AWS_REGION must not be empty")
	}
	if cfg.FHIRTimeout <= 0 {
		return nil, fmt.Errorf("FHIR_HTTP_TIMEOUT must be positive, got %s", cfg.FHIRTimeout)
	}

	return cfg, nil
}
