package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/smartclass/triage/internal/config"
	"github.com/smartclass/triage/pkg/lifecycle"
)

type httpServer struct {
	srv     *http.Server
	logger  *slog.Logger
	timeout time.Duration
}

func newHTTPServer(cfg *config.ServerConfig, handler http.Handler, logger *slog.Logger) *httpServer {
	return &httpServer{
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadTimeoutDuration(),
			ReadTimeout:       cfg.ReadTimeoutDuration(),
			WriteTimeout:      cfg.WriteTimeoutDuration(),
		},
		logger:  logger.With("system", "http"),
		timeout: cfg.ShutdownTimeoutDuration(),
	}
}

// Start serves in the background and drains in-flight requests once the
// coordinator context is cancelled.
func (s *httpServer) Start(lc *lifecycle.Coordinator) {
	go func() {
		s.logger.Info("listening", "addr", s.srv.Addr)
		err := s.srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("listen failed", "error", err)
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.srv.Shutdown(ctx); err != nil {
			s.logger.Error("drain failed", "error", err)
			return
		}
		s.logger.Info("drained")
	})
}
