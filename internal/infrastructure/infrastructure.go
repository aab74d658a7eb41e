// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, database, audit storage, the
// semantic analyzer, the notifier and the triage engine) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/smartclass/triage/internal/config"
	"github.com/smartclass/triage/internal/notify"
	"github.com/smartclass/triage/internal/semantic"
	"github.com/smartclass/triage/internal/triage"
	"github.com/smartclass/triage/pkg/database"
	"github.com/smartclass/triage/pkg/lifecycle"
	"github.com/smartclass/triage/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Storage is nil when no connection string is configured. Analyzer is nil
// when the semantic provider is "none".
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Analyzer  triage.Analyzer
	Notifier  notify.System
	Engine    *triage.Engine
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	var store storage.System
	if cfg.Storage.Enabled() {
		store, err = storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
	}

	analyzer, notifier, engine, err := NewPipeline(lc.Context(), cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Analyzer:  analyzer,
		Notifier:  notifier,
		Engine:    engine,
	}, nil
}

// NewPipeline builds the analyzer, notifier and engine without touching the
// database or storage. The command-line tool uses it directly.
func NewPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (triage.Analyzer, notify.System, *triage.Engine, error) {
	analyzer, err := semantic.New(ctx, &cfg.Semantic, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("semantic init failed: %w", err)
	}

	notifier, err := notify.New(ctx, &cfg.Notify, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("notify init failed: %w", err)
	}

	vocab, err := cfg.Triage.Vocabulary()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("vocabulary load failed: %w", err)
	}

	engine, err := triage.New(triage.Config{
		Vocabulary:        vocab,
		LexicalThreshold:  cfg.Triage.LexicalThreshold,
		SemanticThreshold: cfg.Triage.SemanticThreshold,
		MinMessageLength:  cfg.Triage.MinMessageLength,
		Language:          cfg.Triage.Language,
		Timeout:           cfg.Semantic.TimeoutDuration(),
	}, analyzer, logger)
	if err != nil {
		notifier.Close()
		return nil, nil, nil, fmt.Errorf("engine init failed: %w", err)
	}

	return analyzer, notifier, engine, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// The notifier is closed once the coordinator shuts down.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		if err := i.Notifier.Close(); err != nil {
			i.Logger.Error("notifier close failed", "error", err)
			return
		}
		i.Logger.Info("notifier closed")
	})

	return nil
}
