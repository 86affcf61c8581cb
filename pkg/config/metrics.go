package config

import (
	"fmt"
	"strings"
)

// MetricsConfig enables the Prometheus endpoint served by long-running commands.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// String returns a string representation of the metrics configuration.
func (c *MetricsConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Metrics ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  address: %s\n", c.Addr))
	return b.String()
}

func (c *MetricsConfig) Validate() error {
	if c.Enabled && c.Addr == "" {
		return fmt.Errorf("metrics are enabled but address is not configured")
	}
	return nil
}
