package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	API struct {
		BaseURL string        `koanf:"baseurl"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"api"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func (c *testConfig) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.baseurl is required")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	testCases := []struct {
		name        string
		yaml        string
		env         map[string]string
		expectError bool
		baseURL     string
		timeout     time.Duration
		level       string
	}{
		{
			name:    "yaml only",
			yaml:    "api:\n  baseurl: http://localhost:5000\n  timeout: 2s\nlog:\n  level: debug\n",
			baseURL: "http://localhost:5000",
			timeout: 2 * time.Second,
			level:   "debug",
		},
		{
			name: "environment overrides yaml",
			yaml: "api:\n  baseurl: http://localhost:5000\n  timeout: 2s\n",
			env: map[string]string{
				"LOADERTEST_API_TIMEOUT": "7s",
				"LOADERTEST_LOG_LEVEL":   "warn",
			},
			baseURL: "http://localhost:5000",
			timeout: 7 * time.Second,
			level:   "warn",
		},
		{
			name:        "validation error",
			yaml:        "log:\n  level: info\n",
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			path := writeConfig(t, tc.yaml)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			// when
			cfg, err := LoadFile[*testConfig]("loadertest", path)
			// then
			if tc.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.baseURL, cfg.API.BaseURL)
			assert.Equal(t, tc.timeout, cfg.API.Timeout)
			assert.Equal(t, tc.level, cfg.Log.Level)
		})
	}
}

func TestKeyTransformer(t *testing.T) {
	transform := keyTransformer("STOREFRONT_")
	assert.Equal(t, "api.baseurl", transform("STOREFRONT_API_BASEURL"))
	assert.Equal(t, "circuitbreaker.opentimeout", transform("STOREFRONT_CIRCUITBREAKER_OPENTIMEOUT"))
}

type defaultedConfig struct {
	testConfig `koanf:",squash"`
}

func (*defaultedConfig) Defaults() map[string]any {
	return map[string]any{
		"api.baseurl": "http://localhost:5000",
		"api.timeout": "5s",
	}
}

func TestLoadFile_Defaults(t *testing.T) {
	// given
	path := writeConfig(t, "api:\n  timeout: 1s\n")
	// when
	cfg, err := LoadFile[*defaultedConfig]("loadertest", path)
	// then
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.API.BaseURL)
	assert.Equal(t, time.Second, cfg.API.Timeout)
}
