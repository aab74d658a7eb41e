// Package database owns the PostgreSQL pool behind the message store and
// ties its ping and close to the lifecycle coordinator.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/smartclass/triage/pkg/lifecycle"
)

// ApplicationName is reported to the server in pg_stat_activity.
const ApplicationName = "triage"

// System exposes the pool and registers its lifecycle hooks.
type System interface {
	Connection() *sql.DB
	Start(lc *lifecycle.Coordinator) error
}

type pool struct {
	db          *sql.DB
	logger      *slog.Logger
	pingTimeout time.Duration
}

// New parses the connection settings and sizes the pool. The DSN is
// validated here but no connection is opened until the first query or the
// startup ping.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	connCfg, err := pgx.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	connCfg.RuntimeParams["application_name"] = ApplicationName

	db := stdlib.OpenDB(*connCfg)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &pool{
		db:          db,
		logger:      logger.With("system", "database", "host", cfg.Host, "db", cfg.Name),
		pingTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (p *pool) Connection() *sql.DB {
	return p.db
}

// Start pings once at startup and closes the pool at shutdown. A failed
// ping is logged and does not block readiness; queries surface the error.
func (p *pool) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), p.pingTimeout)
		defer cancel()

		start := time.Now()
		if err := p.db.PingContext(ctx); err != nil {
			p.logger.Error("ping failed", "error", err)
			return
		}
		p.logger.Info("connected", "latency", time.Since(start))
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := p.db.Close(); err != nil {
			p.logger.Error("close failed", "error", err)
			return
		}
		p.logger.Info("pool closed")
	})

	return nil
}
