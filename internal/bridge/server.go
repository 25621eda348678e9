package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rickgao/gamebridge/internal/backend"
	"github.com/rickgao/gamebridge/internal/config"
	"github.com/rickgao/gamebridge/internal/room"
	"github.com/rickgao/gamebridge/internal/session"
	"github.com/rickgao/gamebridge/internal/stats"
)

// Server accepts browser WebSocket connections and runs one connHandler
// per connection.
type Server struct {
	cfg    *config.BridgeConfig
	logger *slog.Logger

	dialer   *backend.Dialer
	rooms    room.Registry
	sessions session.Manager
	stats    *stats.Collector

	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// NewServer wires the bridge components from configuration.
func NewServer(cfg *config.BridgeConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	dialer := backend.NewDialer(backend.Config{
		Addr:            fmt.Sprintf("%s:%d", cfg.Backend.Host, cfg.Backend.Port),
		DialTimeout:     cfg.Backend.DialTimeout,
		ResponseTimeout: cfg.Backend.ResponseTimeout,
		MaxLineSize:     cfg.Backend.MaxLineSize,
	}, logger)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		dialer:   dialer,
		rooms:    room.NewRegistry(cfg.Rooms.Capacity, logger),
		sessions: session.NewManager(logger),
		stats:    stats.NewCollector(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Stats returns the server's runtime counters.
func (s *Server) Stats() *stats.Collector { return s.stats }

// Rooms returns the room registry, for the health endpoint.
func (s *Server) Rooms() room.Registry { return s.rooms }

// Sessions returns the session manager, for the health endpoint.
func (s *Server) Sessions() session.Manager { return s.sessions }

// ServeHTTP upgrades the request and runs the connection handler until the
// browser goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := NewClient(conn,
		s.cfg.Listen.WriteWait,
		s.cfg.Listen.PongWait,
		s.cfg.Listen.MaxMessageSize,
		s.logger,
	)

	s.stats.ClientConnected()
	defer s.stats.ClientDisconnected()

	s.logger.Info("browser connected", "conn_id", client.ID, "remote", client.RemoteAddr())

	h := newConnHandler(client, s.dialer, s.rooms, s.sessions, s.stats, s.logger)
	h.run(r.Context())
}

// Run serves the WebSocket listener until ctx is cancelled. Shutdown stops
// accepting new connections; live connections are dropped rather than
// drained.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(s.cfg.Listen.Path, s)

	addr := fmt.Sprintf("%s:%d", s.cfg.Listen.Host, s.cfg.Listen.Port)
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: mux,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		if s.cfg.Listen.TLS.Enabled() {
			s.logger.Info("bridge listening", "addr", addr, "scheme", "wss")
			errCh <- s.httpSrv.ListenAndServeTLS(s.cfg.Listen.TLS.CertFile, s.cfg.Listen.TLS.KeyFile)
		} else {
			s.logger.Info("bridge listening", "addr", addr, "scheme", "ws")
			errCh <- s.httpSrv.ListenAndServe()
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("bridge shutting down")
		s.httpSrv.Close()
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
