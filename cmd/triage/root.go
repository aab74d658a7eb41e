package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartclass/triage/internal/config"
	"github.com/smartclass/triage/internal/infrastructure"
	"github.com/smartclass/triage/internal/notify"
	"github.com/smartclass/triage/internal/semantic"
	"github.com/smartclass/triage/internal/triage"
)

var rootCmd = &cobra.Command{
	Use:          "triage",
	Short:        "Classroom message triage",
	Long:         "Classifies classroom chat messages as technical questions or class interaction.",
	SilenceUsage: true,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log pipeline activity to stderr")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(summaryCmd)
}

// pipeline holds what a single command invocation needs.
type pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	notifier notify.System
	engine   *triage.Engine
}

func (p *pipeline) Close() {
	if err := p.notifier.Close(); err != nil {
		p.logger.Error("notifier close failed", "error", err)
	}
}

// loadPipeline reads configuration and builds the engine. When useSemantic is
// false the analyzer is disabled and every message is decided lexically.
func loadPipeline(ctx context.Context, cmd *cobra.Command, useSemantic bool) (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !useSemantic {
		cfg.Semantic.Provider = semantic.ProviderNone
	}

	logger := newLogger(cmd)

	_, notifier, engine, err := infrastructure.NewPipeline(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &pipeline{
		cfg:      cfg,
		logger:   logger,
		notifier: notifier,
		engine:   engine,
	}, nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
