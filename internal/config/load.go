package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variable overrides,
// e.g. TASKS_SERVER_PORT, TASKS_AUTH_JWT_SECRET.
const envPrefix = "TASKS"

// Load configuration from environment variables and optionally a config file
// (config.yaml in the working directory). Environment variables take
// precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults carry the load.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers defaults for everything that has a sensible one.
// Keys that are required external configuration (store address, auth
// credentials) get an empty default so that Unmarshal sees their environment
// overrides; validation catches them when they stay empty.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("store.redis_addr", "")
	v.SetDefault("store.task_namespace", "tasks")
	v.SetDefault("store.comment_namespace", "comments")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.api_key_hash", "")
	v.SetDefault("rate_limit.limit", 100)
	v.SetDefault("rate_limit.window_seconds", 60)
	v.SetDefault("cors.allowed_origins", []string{})
}

// validate checks the loaded configuration, including the cross-field rule
// that exactly one credential-verification mode is configured.
func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Auth.JWTSecret == "" && cfg.Auth.APIKeyHash == "" {
		return fmt.Errorf("invalid configuration: one of auth.jwt_secret or auth.api_key_hash must be set")
	}
	if cfg.Auth.JWTSecret != "" && cfg.Auth.APIKeyHash != "" {
		return fmt.Errorf("invalid configuration: auth.jwt_secret and auth.api_key_hash are mutually exclusive")
	}

	return nil
}
