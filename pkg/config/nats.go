package config

import (
	"fmt"
	"strings"
	"time"
)

// NATSConfig configures the optional change-event bridge.
// The bridge is disabled when Enabled is false and the rest of the section is ignored.
type NATSConfig struct {
	Enabled bool          `koanf:"enabled"`
	Url     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Subject string        `koanf:"subject"`
}

// String returns a string representation of the NATS configuration.
func (c *NATSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- NATS ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  url: %s\n", c.Url))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  subject: %s\n", c.Subject))
	return b.String()
}

func (c *NATSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Url == "" {
		return fmt.Errorf("NATS URL is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("nats dial timeout is not configured")
	}
	return nil
}
