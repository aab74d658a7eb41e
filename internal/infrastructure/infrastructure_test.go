package infrastructure_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartclass/triage/internal/config"
	"github.com/smartclass/triage/internal/infrastructure"
	"github.com/smartclass/triage/internal/notify"
	"github.com/smartclass/triage/internal/semantic"
	"github.com/smartclass/triage/internal/triage"
	"github.com/smartclass/triage/pkg/database"
	"github.com/smartclass/triage/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig() *config.Config {
	return &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "triage",
			User:            "triage",
			Password:        "triage",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "triage-audit",
			ConnectionString: azuriteConnString,
		},
		Triage: config.TriageConfig{
			LexicalThreshold:  triage.DefaultLexicalThreshold,
			SemanticThreshold: triage.DefaultSemanticThreshold,
			MinMessageLength:  triage.DefaultMinMessageLength,
			Language:          triage.DefaultLanguage,
		},
		Semantic: semantic.Config{Provider: semantic.ProviderNone, Timeout: "5s"},
		Notify:   notify.Config{Provider: notify.ProviderLog},
		Version:  "0.1.0",
	}
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Storage == nil {
		t.Error("Storage is nil")
	}
	if infra.Notifier == nil {
		t.Error("Notifier is nil")
	}
	if infra.Engine == nil {
		t.Error("Engine is nil")
	}
	if infra.Analyzer != nil {
		t.Errorf("Analyzer = %T, want nil for provider none", infra.Analyzer)
	}
}

func TestNewStorageDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.ConnectionString = ""

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if infra.Storage != nil {
		t.Error("Storage should be nil when no connection string is set")
	}
	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
}

func TestNewDatabaseConnection(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	conn := infra.Database.Connection()
	if conn == nil {
		t.Fatal("Database.Connection() returned nil")
	}
	conn.Close()
}

func TestNewInvalidStorageConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.ConnectionString = "not-a-connection-string"

	_, err := infrastructure.New(cfg)
	if err == nil {
		t.Fatal("expected error for invalid storage connection string")
	}
}

func TestNewUnknownProviders(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"semantic", func(c *config.Config) { c.Semantic.Provider = "watson" }},
		{"notify", func(c *config.Config) { c.Notify.Provider = "pigeon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			if _, err := infrastructure.New(cfg); err == nil {
				t.Fatal("expected error for unknown provider")
			}
		})
	}
}

func TestNewPipelineVocabularyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	if err := os.WriteFile(path, []byte("technical: [\"\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := validConfig()
	cfg.Triage.VocabularyPath = path

	_, _, _, err := infrastructure.NewPipeline(context.Background(), cfg, slog.Default())
	if err == nil {
		t.Fatal("expected error for invalid vocabulary file")
	}
}

func TestNewPipelineTriage(t *testing.T) {
	_, notifier, engine, err := infrastructure.NewPipeline(context.Background(), validConfig(), slog.Default())
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	defer notifier.Close()

	msg, err := triage.NewMessage("Qual o comando do lab para criar a função lambda?", "aluno-1", time.Now())
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}

	result := engine.Triage(context.Background(), msg)
	if result.Local.Label != triage.LabelDuvida {
		t.Errorf("Local.Label = %s, want %s", result.Local.Label, triage.LabelDuvida)
	}
}
