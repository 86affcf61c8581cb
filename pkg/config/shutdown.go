package config

import (
	"fmt"
	"strings"
	"time"
)

// ShutdownConfig bounds how long background components (tracer provider, NATS connection,
// watch loop) may take to flush and stop once the process is asked to exit.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// String returns a string representation of the ShutdownConfig.
func (c *ShutdownConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Shutdown ---\n")
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown.timeout must be greater than 0")
	}
	return nil
}
