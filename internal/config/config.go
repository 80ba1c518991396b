package config

import "time"

// Storage backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Store    StoreConfig    `mapstructure:"store" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Manager  ManagerConfig  `mapstructure:"manager"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StoreConfig selects and tunes the durable snapshot store.
type StoreConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=memory file postgres redis"`

	// Dir is the directory holding snapshot files for the file backend
	Dir string `mapstructure:"dir" validate:"required_if=Backend file"`

	// MaxSnapshotBytes caps a single snapshot; 0 disables the cap
	MaxSnapshotBytes int `mapstructure:"max_snapshot_bytes" validate:"gte=0"`

	// Timeout bounds each call to a networked backend
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// RedisConfig contains the settings of the redis backend.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// AuthConfig contains the settings used to sign and verify context tokens.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// ManagerConfig tunes the task manager.
type ManagerConfig struct {
	HistoryLimit int `mapstructure:"history_limit" validate:"gt=0"`
}
