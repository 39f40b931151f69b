// Package config defines the application configuration and its loading.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Store     StoreConfig     `mapstructure:"store"      validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StoreConfig identifies the external key-value stores. Tasks and comments
// live in separate namespaces of the same Redis instance.
type StoreConfig struct {
	RedisAddr        string `mapstructure:"redis_addr"        validate:"required,hostname_port"`
	TaskNamespace    string `mapstructure:"task_namespace"    validate:"required"`
	CommentNamespace string `mapstructure:"comment_namespace" validate:"required,nefield=TaskNamespace"`
}

// AuthConfig contains the credential-verification settings. Exactly one
// verification mode is active: a JWT signing secret or a bcrypt API key
// hash (see Load for the cross-field check).
type AuthConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret"   validate:"omitempty,min=32"`
	APIKeyHash string `mapstructure:"api_key_hash"`
}

// RateLimitConfig contains the per-IP request cap settings.
type RateLimitConfig struct {
	Limit         int `mapstructure:"limit"          validate:"required,gt=0"`
	WindowSeconds int `mapstructure:"window_seconds" validate:"required,gt=0"`
}

// CORSConfig contains the cross-origin settings. An empty list means all
// origins are allowed.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}
