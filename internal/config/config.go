// Package config loads application configuration with koanf. Sources are
// layered lowest to highest: defaults, an optional YAML file, then
// MYBITBUCKET_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MYBITBUCKET_"

// EnvConfigFile names the environment variable holding the YAML file path.
const EnvConfigFile = EnvPrefix + "CONFIG"

// Config holds the application configuration.
type Config struct {
	Bitbucket       BitbucketConfig `koanf:"bitbucket"        validate:"required"`
	ListenAddr      string          `koanf:"listen_addr"      validate:"required,hostname_port"`
	DBPath          string          `koanf:"db_path"          validate:"required"`
	ShutdownTimeout time.Duration   `koanf:"shutdown_timeout" validate:"min=1s"`
	Log             LogConfig       `koanf:"log"              validate:"required"`
}

// BitbucketConfig locates and authenticates against the Bitbucket Server.
type BitbucketConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"  validate:"min=100ms"`
}

// LogConfig selects the log handler. An empty File logs to stderr only.
type LogConfig struct {
	Level      string `koanf:"level"       validate:"required,oneof=debug info warn error"`
	Format     string `koanf:"format"      validate:"required,oneof=text json"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"min=0,max=100"`
}

// HasToken reports whether requests will carry a bearer token.
func (c *Config) HasToken() bool {
	return c.Bitbucket.Token != ""
}

func defaults() map[string]any {
	return map[string]any{
		"bitbucket.base_url": "",
		"bitbucket.token":    "",
		"bitbucket.timeout":  "30s",

		"listen_addr":      "127.0.0.1:8080",
		"db_path":          "mybitbucket.db",
		"shutdown_timeout": "10s",

		"log.level":       "info",
		"log.format":      "text",
		"log.file":        "",
		"log.max_size":    100,
		"log.max_backups": 3,
	}
}

// envKeys maps an environment variable suffix, e.g. "BITBUCKET_BASE_URL",
// to its config key. Variables outside this set are ignored.
var envKeys = func() map[string]string {
	keys := make(map[string]string)
	for key := range defaults() {
		keys[strings.ToUpper(strings.ReplaceAll(key, ".", "_"))] = key
	}
	return keys
}()

// Load reads configuration from defaults, the YAML file at path (or at
// $MYBITBUCKET_CONFIG when path is empty) and the environment, and returns
// a validated Config. A missing file is an error only when it was named.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %q does not exist", path)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %q: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return envKeys[strings.TrimPrefix(s, EnvPrefix)]
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
