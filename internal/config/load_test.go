package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llegomark/tasks-api/internal/config"
)

const testJWTSecret = "config-test-secret-32-characters!!"

// setRequiredEnv provides the minimum environment for a loadable config.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TASKS_STORE_REDIS_ADDR", "localhost:6379")
	t.Setenv("TASKS_AUTH_JWT_SECRET", testJWTSecret)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.Store.RedisAddr)
	assert.Equal(t, "tasks", cfg.Store.TaskNamespace)
	assert.Equal(t, "comments", cfg.Store.CommentNamespace)
	assert.Equal(t, 100, cfg.RateLimit.Limit)
	assert.Equal(t, 60, cfg.RateLimit.WindowSeconds)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TASKS_SERVER_PORT", "9090")
	t.Setenv("TASKS_SERVER_LOG_LEVEL", "debug")
	t.Setenv("TASKS_RATE_LIMIT_LIMIT", "250")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 250, cfg.RateLimit.Limit)
}

func TestLoad_APIKeyMode(t *testing.T) {
	t.Setenv("TASKS_STORE_REDIS_ADDR", "localhost:6379")
	t.Setenv("TASKS_AUTH_API_KEY_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.NotEmpty(t, cfg.Auth.APIKeyHash)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing_redis_addr",
			env: map[string]string{
				"TASKS_AUTH_JWT_SECRET": testJWTSecret,
			},
		},
		{
			name: "malformed_redis_addr",
			env: map[string]string{
				"TASKS_STORE_REDIS_ADDR": "not a host port",
				"TASKS_AUTH_JWT_SECRET":  testJWTSecret,
			},
		},
		{
			name: "no_auth_mode",
			env: map[string]string{
				"TASKS_STORE_REDIS_ADDR": "localhost:6379",
			},
		},
		{
			name: "both_auth_modes",
			env: map[string]string{
				"TASKS_STORE_REDIS_ADDR":  "localhost:6379",
				"TASKS_AUTH_JWT_SECRET":   testJWTSecret,
				"TASKS_AUTH_API_KEY_HASH": "$2a$10$abcdefghijklmnopqrstuv",
			},
		},
		{
			name: "short_jwt_secret",
			env: map[string]string{
				"TASKS_STORE_REDIS_ADDR": "localhost:6379",
				"TASKS_AUTH_JWT_SECRET":  "too-short",
			},
		},
		{
			name: "invalid_log_level",
			env: map[string]string{
				"TASKS_STORE_REDIS_ADDR": "localhost:6379",
				"TASKS_AUTH_JWT_SECRET":  testJWTSecret,
				"TASKS_SERVER_LOG_LEVEL": "verbose",
			},
		},
		{
			name: "port_out_of_range",
			env: map[string]string{
				"TASKS_STORE_REDIS_ADDR": "localhost:6379",
				"TASKS_AUTH_JWT_SECRET":  testJWTSecret,
				"TASKS_SERVER_PORT":      "70000",
			},
		},
		{
			name: "colliding_namespaces",
			env: map[string]string{
				"TASKS_STORE_REDIS_ADDR":        "localhost:6379",
				"TASKS_AUTH_JWT_SECRET":         testJWTSecret,
				"TASKS_STORE_TASK_NAMESPACE":    "shared",
				"TASKS_STORE_COMMENT_NAMESPACE": "shared",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := config.Load()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), "invalid configuration"))
		})
	}
}
