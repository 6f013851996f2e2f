package watchdog

import (
	"log/slog"
	"sync"
	"time"
)

const (
	defaultInterval    = 30 * time.Second
	defaultIdleTimeout = 600 * time.Second
)

// Config controls watchdog runtime behavior.
type Config struct {
	Interval    time.Duration
	IdleTimeout time.Duration
}

// Service periodically checks whether the broker still has pending work
// and triggers a shutdown once it has been idle for longer than the
// configured timeout. This bounds the lifetime of a broker instance that a
// caller spawned on demand and then stopped using.
type Service struct {
	cfg        Config
	hasPending func() bool
	shutdown   func()

	now func() time.Time

	mu         sync.Mutex
	lastActive time.Time
	stopCh     chan struct{}
	stopped    chan struct{}
	running    bool
}

// NewService creates a watchdog. hasPending is consulted on every tick;
// shutdown is invoked at most once, after which the loop exits.
func NewService(cfg Config, hasPending func() bool, shutdown func()) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	return &Service{
		cfg:        cfg,
		hasPending: hasPending,
		shutdown:   shutdown,
		now:        time.Now,
	}
}

// Start launches the periodic idle check.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.lastActive = s.now()
	s.stopCh = make(chan struct{})
	s.stopped = make(chan struct{})
	s.running = true

	go s.loop(s.stopCh, s.stopped)
	slog.Info("idle watchdog started", "interval", s.cfg.Interval.String(), "idle_timeout", s.cfg.IdleTimeout.String())
}

// Stop halts the idle check without triggering a shutdown.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	stopCh := s.stopCh
	stopped := s.stopped
	s.running = false
	s.stopCh = nil
	s.stopped = nil
	s.mu.Unlock()

	close(stopCh)
	<-stopped
}

func (s *Service) loop(stopCh <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if s.check() {
				return
			}
		}
	}
}

// check runs one idle evaluation and reports whether shutdown was fired.
func (s *Service) check() bool {
	now := s.now()

	s.mu.Lock()
	if s.hasPending() {
		s.lastActive = now
		s.mu.Unlock()
		return false
	}
	idle := now.Sub(s.lastActive)
	s.mu.Unlock()

	if idle <= s.cfg.IdleTimeout {
		return false
	}

	slog.Info("idle timeout reached, shutting down", "idle", idle.String())
	s.shutdown()
	return true
}
