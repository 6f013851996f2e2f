package server

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MEKXH/nudge/internal/audit"
	"github.com/MEKXH/nudge/internal/config"
	"github.com/MEKXH/nudge/internal/store"
	"github.com/MEKXH/nudge/internal/watchdog"
)

//go:embed ui/index.html
var webUI []byte

const shutdownGrace = 5 * time.Second

// Server is the broker process: a loopback HTTP listener over one request
// store, bounded in lifetime by the idle watchdog.
type Server struct {
	cfg        config.ServerConfig
	store      *store.Store
	opts       Options
	httpServer *http.Server
}

// New creates a broker server. The zero values of cfg fall back to the
// defaults (port 9131, 600 s idle timeout, 30 s watchdog interval).
func New(cfg config.ServerConfig, st *store.Store, opts Options) *Server {
	if cfg.Port <= 0 {
		cfg.Port = 9131
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 600
	}
	if cfg.WatchdogInterval <= 0 {
		cfg.WatchdogInterval = 30
	}
	return &Server{
		cfg:   cfg,
		store: st,
		opts:  opts,
	}
}

// Addr returns the loopback listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", s.cfg.Port)
}

// URL returns the base URL callers and notifications point at.
func (s *Server) URL() string {
	return fmt.Sprintf("http://%s", s.Addr())
}

// Start binds the loopback socket, starts the idle watchdog, and serves
// until shutdown (watchdog fire, /api/shutdown, or an explicit Shutdown
// call).
func (s *Server) Start() error {
	opts := s.opts
	opts.Shutdown = s.beginShutdown

	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           NewHandler(s.store, s.URL(), opts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	dog := watchdog.NewService(watchdog.Config{
		Interval:    time.Duration(s.cfg.WatchdogInterval) * time.Second,
		IdleTimeout: time.Duration(s.cfg.IdleTimeout) * time.Second,
	}, s.store.HasPending, s.beginShutdown)
	dog.Start()
	defer dog.Stop()

	s.auditEvent(audit.EventServerStarted)
	defer s.auditEvent(audit.EventServerStopped)

	slog.Info("broker listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the listener, waiting for in-flight requests up to ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// beginShutdown triggers an orderly stop without blocking the caller. It
// is fire-and-forget: in-flight operations may interleave with it.
func (s *Server) beginShutdown() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			slog.Warn("shutdown did not complete cleanly", "error", err)
		}
	}()
}

func (s *Server) auditEvent(eventType string) {
	if s.opts.Audit == nil {
		return
	}
	event := audit.Event{
		Time:   time.Now().UTC(),
		Type:   eventType,
		Detail: s.Addr(),
	}
	if err := s.opts.Audit.Append(event); err != nil {
		slog.Warn("failed to append audit event", "type", eventType, "error", err)
	}
}
