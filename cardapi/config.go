package cardapi

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"
)

// Config is a configuration for the card API application
type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	// ExpiryTZ is an IANA timezone name for expiry computations (e.g., "Australia/Sydney").
	ExpiryTZ string `yaml:"expiry_tz"`
	// MatchPolicy resolves numbers matching several networks: last, first or specific.
	MatchPolicy string `yaml:"match_policy"`
	LogLevel    string `yaml:"log_level"`

	Spreedly SpreedlyConfig `yaml:"spreedly"`
}

// SpreedlyConfig enables /cards/tokenize when both credentials are set.
type SpreedlyConfig struct {
	EnvironmentKey string `yaml:"environment_key"`
	AccessSecret   string `yaml:"access_secret"`
	Endpoint       string `yaml:"endpoint"`
}

func (c SpreedlyConfig) Enabled() bool {
	return c.EnvironmentKey != "" && c.AccessSecret != ""
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:    "localhost:9090",
		MatchPolicy: "last",
		LogLevel:    "info",
	}
}

// LoadConfig reads a YAML file over the defaults, then applies environment
// overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"CARDFLOW_HTTP_ADDR", &c.HTTPAddr},
		{"CARDFLOW_EXPIRY_TZ", &c.ExpiryTZ},
		{"CARDFLOW_MATCH_POLICY", &c.MatchPolicy},
		{"CARDFLOW_LOG_LEVEL", &c.LogLevel},
		{"SPREEDLY_ENVIRONMENT_KEY", &c.Spreedly.EnvironmentKey},
		{"SPREEDLY_ACCESS_SECRET", &c.Spreedly.AccessSecret},
		{"SPREEDLY_ENDPOINT", &c.Spreedly.Endpoint},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

// Level maps LogLevel onto slog levels, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
