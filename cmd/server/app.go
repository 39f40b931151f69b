package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/llegomark/tasks-api/internal/config"
	"github.com/llegomark/tasks-api/internal/service/auth"
	"github.com/llegomark/tasks-api/internal/store"
	"github.com/llegomark/tasks-api/internal/store/rediskv"
)

// application bundles the process-wide dependencies: configuration, logger,
// store handles and the credential verifier. These are the only shared state
// the server holds for its lifetime.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	redis     redis.UniversalClient
	taskKV    store.KV
	commentKV store.KV
	limiterKV store.KV
	tasks     *store.TaskStore
	comments  *store.CommentStore
	verifier  auth.TokenVerifier
}

// newApplication wires the application dependencies from configuration.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	client, err := rediskv.Dial(ctx, cfg.Store.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	taskKV := rediskv.New(client, cfg.Store.TaskNamespace)
	commentKV := rediskv.New(client, cfg.Store.CommentNamespace)

	// Rate limit counters get their own namespace so they never cohabit
	// with entity records.
	limiterKV := rediskv.New(client, "rate_limit")

	verifier, err := newVerifier(cfg.Auth)
	if err != nil {
		return nil, err
	}

	return &application{
		config:    cfg,
		logger:    logger,
		redis:     client,
		taskKV:    taskKV,
		commentKV: commentKV,
		limiterKV: limiterKV,
		tasks:     store.NewTaskStore(taskKV),
		comments:  store.NewCommentStore(commentKV),
		verifier:  verifier,
	}, nil
}

// newVerifier selects the credential-verification mode from config.
// Load guarantees exactly one of the two settings is present.
func newVerifier(cfg config.AuthConfig) (auth.TokenVerifier, error) {
	if cfg.JWTSecret != "" {
		verifier, err := auth.NewJWTVerifier(cfg.JWTSecret, 60*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT verifier: %w", err)
		}
		return verifier, nil
	}
	return auth.NewAPIKeyVerifier(cfg.APIKeyHash), nil
}

// cleanup releases the application's external resources.
func (app *application) cleanup() {
	if err := app.redis.Close(); err != nil {
		app.logger.Error("failed to close store connection", "error", err)
	}
}
