package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "GENFLOW"

// defaults are applied before the config file and environment. Every key
// must appear here so that viper binds its environment variable.
var defaults = map[string]interface{}{
	"server.port":                 8080,
	"server.log_level":            "info",
	"store.backend":               BackendFile,
	"store.dir":                   "./data",
	"store.max_snapshot_bytes":    5 * 1024 * 1024,
	"store.timeout":               "3s",
	"database.url":                "",
	"redis.addr":                  "localhost:6379",
	"redis.password":              "",
	"redis.db":                    0,
	"redis.ttl":                   "0s",
	"auth.jwt_secret":             "",
	"auth.token_lifetime_minutes": 60 * 24,
	"manager.history_limit":       10,
}

// ErrBackendSettings is returned when the selected backend lacks a setting
// it needs.
var ErrBackendSettings = errors.New("backend settings incomplete")

// Load reads configuration from ./config.yaml (if present) and GENFLOW_*
// environment variables. Environment variables take precedence.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// working directory for config.yaml and tolerates its absence.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct constraints and backend-specific requirements.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch cfg.Store.Backend {
	case BackendPostgres:
		if cfg.Database.URL == "" {
			return fmt.Errorf("config validation failed: %w: postgres backend requires database.url", ErrBackendSettings)
		}
	case BackendRedis:
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("config validation failed: %w: redis backend requires redis.addr", ErrBackendSettings)
		}
	}

	return nil
}
