// Package main implements the entry point for the tasks API server:
// CRUD over tasks and their comments backed by an external key-value store,
// behind a CORS → auth → CSRF → rate-limit middleware chain.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/llegomark/tasks-api/internal/config"
	"github.com/llegomark/tasks-api/internal/platform/logger"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.startHTTPServer(context.Background(), app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging, and wires the
// application dependencies (store adapters, credential verifier).
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)
	slog.Debug("Store configuration",
		"redis_addr_present", cfg.Store.RedisAddr != "",
		"task_namespace", cfg.Store.TaskNamespace,
		"comment_namespace", cfg.Store.CommentNamespace)
	slog.Debug("Auth configuration",
		"jwt_secret_present", cfg.Auth.JWTSecret != "",
		"api_key_hash_present", cfg.Auth.APIKeyHash != "")

	app, err := newApplication(context.Background(), cfg, appLogger)
	if err != nil {
		return nil, err
	}

	return app, nil
}
