package relay

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/botrelay/internal/connection"
	"github.com/rickgao/botrelay/internal/router"
)

// Supervisor keeps one link connected. It registers the link with the hub
// for the lifetime of each session and redials with exponential backoff.
type Supervisor struct {
	cfg    SupervisorConfig
	link   *Link
	hub    router.Hub
	dial   Dialer
	logger *slog.Logger

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSupervisor creates a supervisor for link.
func NewSupervisor(cfg SupervisorConfig, link *Link, hub router.Hub, dial Dialer, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultSupervisorConfig()
	if cfg.ReconnectBaseWait <= 0 {
		cfg.ReconnectBaseWait = defaults.ReconnectBaseWait
	}
	if cfg.ReconnectMaxWait < cfg.ReconnectBaseWait {
		cfg.ReconnectMaxWait = cfg.ReconnectBaseWait
	}

	return &Supervisor{
		cfg:    cfg,
		link:   link,
		hub:    hub,
		dial:   dial,
		logger: logger.With("link", link.ChannelIdentity()),
	}
}

// WebSocketDialer dials relay servers with the connection package. The
// socket joins cfg.Room before the link sees it.
func WebSocketDialer(cfg connection.ClientConfig, logger *slog.Logger) Dialer {
	return func(ctx context.Context) (connection.Conn, error) {
		return connection.Dial(ctx, cfg, logger)
	}
}

// Start begins the connect loop.
func (s *Supervisor) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.loop()

	s.logger.Info("relay link started", "stages", s.link.Stages(), "codec", s.link.Codec().Name())
	return nil
}

// Stop ends the current session and waits for the loop to exit.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.logger.Info("stopping relay link")

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("relay link stopped")
	case <-ctx.Done():
		s.logger.Warn("relay link stop timed out")
	}

	s.link.Close()
	return nil
}

// Link returns the supervised link.
func (s *Supervisor) Link() *Link {
	return s.link
}

func (s *Supervisor) loop() {
	defer s.wg.Done()

	wait := s.cfg.ReconnectBaseWait
	for {
		conn, err := s.dial(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.logger.Warn("relay connect failed", "error", err, "retry_in", wait)
		} else {
			wait = s.cfg.ReconnectBaseWait
			err = s.session(conn)
			if s.ctx.Err() != nil || errors.Is(err, ErrLinkClosed) {
				return
			}
			s.logger.Warn("relay session ended", "error", err, "retry_in", wait)
		}

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(wait):
		}

		// Exponential backoff
		wait *= 2
		if wait > s.cfg.ReconnectMaxWait {
			wait = s.cfg.ReconnectMaxWait
		}
	}
}

// session runs one connection with the link registered in the hub.
func (s *Supervisor) session(conn connection.Conn) error {
	defer conn.Close()

	identity := s.link.ChannelIdentity()
	if err := s.hub.RegisterReceiver(s.link); err != nil {
		return err
	}
	if err := s.hub.RegisterEmitter(s.link); err != nil {
		return err
	}
	defer func() {
		s.hub.UnregisterReceiver(identity)
		s.hub.UnregisterEmitter(identity)
	}()

	s.logger.Info("relay connected")
	return s.link.Run(s.ctx, conn)
}
