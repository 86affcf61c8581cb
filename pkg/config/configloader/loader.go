// Package configloader reads service configuration from a YAML file, a .env file and the
// process environment, in increasing order of priority.
package configloader

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	defaultConfigFile = "config.yaml"
	defaultEnvFile    = ".env"
)

type Validator interface {
	Validate() error
}

// Defaulter is implemented by configs that provide fallback values.
// Defaults must not dereference the receiver: it is called on the zero value of T.
type Defaulter interface {
	Defaults() map[string]any
}

// Load reads config.yaml from the working directory. See LoadFile.
func Load[T Validator](serviceName string) (T, error) {
	return LoadFile[T](serviceName, defaultConfigFile)
}

// LoadFile loads configuration into T from configFile, then .env, then the system
// environment. Environment keys are prefixed with <SERVICE_NAME>_ and use "_" as the
// path separator, e.g. STOREFRONT_API_BASEURL -> api.baseurl.
// A missing config or .env file is not an error.
func LoadFile[T Validator](serviceName, configFile string) (T, error) {
	var cfg T
	k := koanf.New(".")
	envPrefix := fmt.Sprintf("%s_", strings.ToUpper(serviceName))

	// 0. Load defaults, the lowest priority
	if d, ok := any(cfg).(Defaulter); ok {
		if err := k.Load(confmap.Provider(d.Defaults(), "."), nil); err != nil {
			return cfg, fmt.Errorf("error loading config defaults: %w", err)
		}
	}

	// 1. Load configuration from yaml file
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: error loading YAML config file '%s': %v", configFile, err)
		}
	}

	// 2. Load environment variables from .env file
	envTransformer := keyTransformer(envPrefix)
	if envFileMap, err := godotenv.Read(defaultEnvFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if !strings.HasPrefix(strings.ToUpper(key), envPrefix) {
				continue
			}
			envMap[envTransformer(key)] = value
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 3. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(envPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	// 4. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 5. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// keyTransformer maps STOREFRONT_API_BASEURL to api.baseurl.
func keyTransformer(envPrefix string) func(string) string {
	prefix := strings.ToLower(envPrefix)
	return func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, prefix)
		return strings.ReplaceAll(key, "_", ".")
	}
}
