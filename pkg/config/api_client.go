package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// APIClientConfig describes how to reach the remote products API.
type APIClientConfig struct {
	BaseURL string        `koanf:"baseurl"`
	Timeout time.Duration `koanf:"timeout"`
}

// String returns a string representation of the API client configuration.
func (c *APIClientConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- API Client ---\n")
	b.WriteString(fmt.Sprintf("  baseurl: %s\n", c.BaseURL))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *APIClientConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("API base URL is not configured")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API base URL '%s': %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API base URL must start with 'http://' or 'https://': %s", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("API client timeout must be greater than 0")
	}
	return nil
}
