package main

import (
	"time"

	"github.com/smartclass/triage/internal/config"
	"github.com/smartclass/triage/internal/infrastructure"
)

// Server ties the shared infrastructure, the mounted modules and the HTTP
// listener to one lifecycle coordinator.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra.Lifecycle)
	modules.Mount(router)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start registers every subsystem with the coordinator and begins serving.
// Readiness flips once all startup hooks have returned.
func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}

	s.http.Start(s.infra.Lifecycle)

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("triage ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("shutting down", "timeout", timeout)
	return s.infra.Lifecycle.Shutdown(timeout)
}
