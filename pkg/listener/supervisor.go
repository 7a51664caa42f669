package listener

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/netutil"

	"github.com/lhanjian/yarhs/pkg/telemetry"
)

// Supervisor owns the main data-plane listener's lifecycle and performs the
// hot-restart protocol of spec.md §4.7. Grounded on
// original_source/src/server/loop.rs (the dual accept-loop structure) and
// restart.rs (the bounded-drain old-listener teardown); ported from
// cooperative tasks selecting on an accept future and a restart notification
// to the idiomatic Go shape of independent *http.Server instances, since
// net/http.Server.Shutdown already implements "stop accepting, let in-flight
// requests finish, then force-close after a deadline" — the exact behavior
// spec.md §4.7 asks for.
type Supervisor struct {
	mu      sync.Mutex
	current *boundServer
	handler http.Handler
	timeouts ServerTimeouts
	metrics  *telemetry.Metrics
}

// ServerTimeouts mirrors the performance config fields that shape the
// *http.Server built for each bind. MaxConnections, when set, caps the
// number of simultaneously open connections the accept loop will serve
// (spec.md §5); nil means unlimited.
type ServerTimeouts struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	KeepAliveTimeout time.Duration
	MaxConnections   *int64
}

type boundServer struct {
	addr   string
	server *http.Server
}

// NewSupervisor creates a supervisor with no bound listener; call Start to
// perform the initial bind. metrics may be nil to disable Prometheus
// recording.
func NewSupervisor(handler http.Handler, timeouts ServerTimeouts, metrics *telemetry.Metrics) *Supervisor {
	return &Supervisor{handler: handler, timeouts: timeouts, metrics: metrics}
}

// Start performs the initial bind. Failure here is a startup BindFailure
// (spec.md §7): the process should exit non-zero.
func (s *Supervisor) Start(ctx context.Context, addr string) error {
	bs, err := s.bind(ctx, addr)
	if err != nil {
		return fmt.Errorf("initial bind to %s: %w", addr, err)
	}
	s.mu.Lock()
	s.current = bs
	s.mu.Unlock()
	return nil
}

// Restart performs the hot-swap protocol: bind the new address on a
// port-sharing socket, start serving on it, then drain the old listener in
// the background up to KeepAliveTimeout. On bind failure the old listener is
// untouched and an error is returned for the caller to surface as a NACK
// (spec.md §4.7: "the old loop continues and the update is reported as NACK
// without any disruption").
func (s *Supervisor) Restart(ctx context.Context, newAddr string) error {
	s.mu.Lock()
	old := s.current
	s.mu.Unlock()

	if old != nil && old.addr == newAddr {
		log.Info().Str("addr", newAddr).Msg("listener restart requested for unchanged address, skipping rebind")
		return nil
	}

	bs, err := s.bind(ctx, newAddr)
	if err != nil {
		return fmt.Errorf("%w: %v", errBindFailure, err)
	}

	s.mu.Lock()
	s.current = bs
	s.mu.Unlock()

	if old != nil {
		go s.drain(old)
	}
	if s.metrics != nil {
		s.metrics.ListenerSwaps.Inc()
	}
	return nil
}

func (s *Supervisor) bind(ctx context.Context, addr string) (*boundServer, error) {
	ln, err := Listen(ctx, addr)
	if err != nil {
		return nil, err
	}
	// Record the address actually bound (resolves port 0 to the real port).
	addr = ln.Addr().String()

	var limitedLn net.Listener = ln
	if max := s.timeouts.MaxConnections; max != nil && *max > 0 {
		limitedLn = netutil.LimitListener(ln, int(*max))
		log.Info().Str("addr", addr).Int64("max_connections", *max).Msg("accept loop capped at max_connections")
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.KeepAliveTimeout,
	}

	go func() {
		if serveErr := srv.Serve(limitedLn); serveErr != nil && serveErr != http.ErrServerClosed {
			log.Error().Err(serveErr).Str("addr", addr).Msg("listener accept loop exited")
		}
	}()

	log.Info().Str("addr", addr).Msg("listener bound")
	return &boundServer{addr: addr, server: srv}, nil
}

// drain stops the old listener from accepting new connections and waits up
// to KeepAliveTimeout for in-flight connections to finish before forcing
// them closed (spec.md §4.7 steps 3-4).
func (s *Supervisor) drain(old *boundServer) {
	deadline := s.timeouts.KeepAliveTimeout
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()

	if err := old.server.Shutdown(ctx); err != nil {
		log.Warn().Str("addr", old.addr).Err(err).Msg("drain deadline exceeded, forcing close")
		_ = old.server.Close()
	} else {
		log.Info().Str("addr", old.addr).Msg("old listener drained cleanly")
	}
}

// Shutdown performs a final graceful shutdown of the currently bound
// listener, used on process SIGTERM/SIGINT (spec.md §5).
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		return nil
	}
	return cur.server.Shutdown(ctx)
}

// Addr returns the currently bound address, empty if not started.
func (s *Supervisor) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.addr
}
