// Package config holds the storefront client configuration.
package config

import (
	"strings"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/config/configloader"
)

var (
	_ configloader.Validator = (*Config)(nil)
	_ configloader.Defaulter = (*Config)(nil)
)

type Config struct {
	API            config.APIClientConfig      `koanf:"api"`
	CircuitBreaker config.CircuitBreakerConfig `koanf:"circuitbreaker"`
	Log            config.LogConfig            `koanf:"log"`
	Telemetry      config.TelemetryConfig      `koanf:"telemetry"`
	NATS           config.NATSConfig           `koanf:"nats"`
	Metrics        config.MetricsConfig        `koanf:"metrics"`
	Shutdown       config.ShutdownConfig       `koanf:"shutdown"`
}

// Defaults lets the CLI run against a local API with no config file.
func (c *Config) Defaults() map[string]any {
	return map[string]any{
		"api.baseurl":                        "http://localhost:5000",
		"api.timeout":                        "10s",
		"circuitbreaker.consecutivefailures": 5,
		"circuitbreaker.errorratepercent":    60,
		"circuitbreaker.maxrequests":         1,
		"circuitbreaker.opentimeout":         "30s",
		"log.level":                          "info",
		"nats.timeout":                       "5s",
		"telemetry.traces.otlphttp.timeout":  "5s",
		"shutdown.timeout":                   "5s",
	}
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.API.String())
	b.WriteString(c.CircuitBreaker.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.Metrics.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.CircuitBreaker.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.NATS.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}
