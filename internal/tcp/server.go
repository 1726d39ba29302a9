// package tcp
package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/otp-2025.net/internal/core/ports/primary"
	"gitlab.com/otp-2025.net/internal/core/services/outcome"
	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/metrics"
	"gitlab.com/otp-2025.net/internal/static/errs"
	"gitlab.com/otp-2025.net/internal/tcp/codec"
	"gitlab.com/otp-2025.net/internal/tcp/connectionmanager"
	"gitlab.com/otp-2025.net/internal/tcp/defs"
	"gitlab.com/otp-2025.net/internal/tcp/handlers"
)

var _ primary.PoolInspector = (*TCPServer)(nil)

// TCPServer is a cipher daemon: it accepts connections and runs at most
// defs.MaxConcurrent execution units at a time.
type TCPServer struct {
	address          string
	direction        domain.Direction
	outcomeService   outcome.IOutcomeService
	logger           primary.Logger
	metrics          *metrics.PoolMetrics
	listener         net.Listener
	connectionMgr    *connectionmanager.ConnectionManager
	handshake        primary.ConnHandler
	exchange         primary.ConnHandler
	unitTimeout      time.Duration
	acceptRetryDelay time.Duration

	completions chan unitResult
	stopCh      chan struct{}
	doneCh      chan struct{}
	stopOnce    sync.Once
	unitCtx     context.Context
	cancelUnits context.CancelFunc
	recorders   sync.WaitGroup
}

// unitResult is what an execution unit reports when it terminates
type unitResult struct {
	unit       domain.UnitInfo
	err        error
	finishedAt time.Time
}

// TCPServerOption configures a TCPServer
type TCPServerOption func(*TCPServer)

// WithAddress sets the server address
func WithAddress(address string) TCPServerOption {
	return func(s *TCPServer) {
		s.address = address
	}
}

// WithUnitTimeout bounds each execution unit; zero means no deadline
func WithUnitTimeout(timeout time.Duration) TCPServerOption {
	return func(s *TCPServer) {
		s.unitTimeout = timeout
	}
}

// WithAcceptRetryDelay sets the pause after a failed accept
func WithAcceptRetryDelay(delay time.Duration) TCPServerOption {
	return func(s *TCPServer) {
		s.acceptRetryDelay = delay
	}
}

// WithMetrics reports pool activity to m
func WithMetrics(m *metrics.PoolMetrics) TCPServerOption {
	return func(s *TCPServer) {
		s.metrics = m
	}
}

// NewTCPServer creates a new cipher daemon for direction
func NewTCPServer(
	direction domain.Direction,
	outcomeService outcome.IOutcomeService,
	logger primary.Logger,
	options ...TCPServerOption,
) *TCPServer {
	unitCtx, cancel := context.WithCancel(context.Background())
	server := &TCPServer{
		address:          ":0",
		direction:        direction,
		outcomeService:   outcomeService,
		logger:           logger.With("daemon", direction.DaemonName()),
		connectionMgr:    connectionmanager.NewConnectionManager(defs.MaxConcurrent, logger),
		unitTimeout:      defs.DefaultUnitTimeout,
		acceptRetryDelay: defs.ConnectionRetryDelay,
		completions:      make(chan unitResult, defs.MaxConcurrent),
		stopCh:           make(chan struct{}),
		doneCh:           make(chan struct{}),
		unitCtx:          unitCtx,
		cancelUnits:      cancel,
	}

	c := codec.New(direction)
	server.handshake = handlers.NewHandshakeHandler(c, server.logger)
	server.exchange = handlers.NewExchangeHandler(c, server.logger)

	// Apply options
	for _, option := range options {
		option(server)
	}

	return server
}

// Start starts the TCP server
func (s *TCPServer) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start TCP server: %w", err)
	}

	s.logger.Info("TCP server listening", "address", s.listener.Addr().String(), "slots", s.connectionMgr.Capacity())

	go s.serve()

	return nil
}

// Stop closes the listener and waits for in-flight units. When ctx expires
// first, remaining units are interrupted.
func (s *TCPServer) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				s.logger.Error("Failed to close listener", "error", err)
			}
		}
	})
	if s.listener == nil {
		return nil
	}

	var err error
	select {
	case <-s.doneCh:
	case <-ctx.Done():
		s.logger.Warn("Interrupting in-flight execution units", "active", s.connectionMgr.ActiveCount())
		s.cancelUnits()
		<-s.doneCh
		err = ctx.Err()
	}
	s.cancelUnits()
	s.recorders.Wait()
	return err
}

// Addr returns the listening address once started
func (s *TCPServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Direction returns the cipher direction served
func (s *TCPServer) Direction() domain.Direction {
	return s.direction
}

// ConnectionManager exposes the active unit bookkeeping for read-only use
func (s *TCPServer) ConnectionManager() *connectionmanager.ConnectionManager {
	return s.connectionMgr
}

// Capacity returns the number of worker slots
func (s *TCPServer) Capacity() int {
	return s.connectionMgr.Capacity()
}

// ActiveUnits returns the units currently holding a slot, oldest first
func (s *TCPServer) ActiveUnits() []domain.UnitInfo {
	return s.connectionMgr.ActiveUnits()
}

// serve is the pool manager loop. It is the only writer of the active set.
// Completions are handled as they arrive; an accepted connection is only
// taken while a slot is free, after pending completions were reaped.
func (s *TCPServer) serve() {
	defer close(s.doneCh)

	accepted := make(chan net.Conn)
	go s.acceptLoop(accepted)

	for {
		s.reap()

		select {
		case <-s.stopCh:
			s.drain()
			return
		default:
		}

		var next <-chan net.Conn
		if s.connectionMgr.HasFreeSlot() {
			next = accepted
		}

		select {
		case res := <-s.completions:
			s.complete(res)
		case conn := <-next:
			s.dispatch(conn)
		case <-s.stopCh:
		}
	}
}

// acceptLoop hands accepted connections to the manager loop until Stop
func (s *TCPServer) acceptLoop(accepted chan<- net.Conn) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
			}
			s.logger.Error("Failed to accept connection", "error", err)
			select {
			case <-time.After(s.acceptRetryDelay): // Avoid tight loop on error
			case <-s.stopCh:
				return
			}
			continue
		}

		select {
		case accepted <- conn:
		case <-s.stopCh:
			_ = conn.Close()
			return
		}
	}
}

// reap collects every finished unit without blocking
func (s *TCPServer) reap() {
	for {
		select {
		case res := <-s.completions:
			s.complete(res)
		default:
			return
		}
	}
}

// drain waits for every active unit to finish
func (s *TCPServer) drain() {
	for s.connectionMgr.ActiveCount() > 0 {
		s.complete(<-s.completions)
	}
}

// dispatch registers a unit for conn and starts it
func (s *TCPServer) dispatch(conn net.Conn) {
	unit := domain.UnitInfo{
		ID:         uuid.New(),
		Direction:  s.direction,
		RemoteAddr: conn.RemoteAddr().String(),
		AcceptedAt: time.Now(),
	}
	if err := s.connectionMgr.RegisterUnit(unit); err != nil {
		s.logger.Error("Failed to register execution unit", "remote", unit.RemoteAddr, "error", err)
		_ = conn.Close()
		return
	}

	s.metrics.UnitStarted()
	s.logger.Debug("Connection accepted", "unitID", unit.ID, "remote", unit.RemoteAddr)

	go s.runUnit(conn, unit)
}

// runUnit owns conn for its whole life and always reports exactly once
func (s *TCPServer) runUnit(conn net.Conn, unit domain.UnitInfo) {
	res := unitResult{unit: unit}
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("execution unit panicked: %v", r)
		}
		res.finishedAt = time.Now()
		s.completions <- res
	}()
	defer conn.Close()

	ctx, cancel := s.unitContext()
	defer cancel()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			res.err = err
			return
		}
	}

	res.err = s.handleConnection(ctx, conn, &res.unit)
}

func (s *TCPServer) unitContext() (context.Context, context.CancelFunc) {
	if s.unitTimeout > 0 {
		return context.WithTimeout(s.unitCtx, s.unitTimeout)
	}
	return context.WithCancel(s.unitCtx)
}

// handleConnection runs the handshake and, if authorized, the exchange
func (s *TCPServer) handleConnection(ctx context.Context, conn net.Conn, unit *domain.UnitInfo) error {
	if err := s.handshake.HandleConn(ctx, conn, unit); err != nil {
		return err
	}
	return s.exchange.HandleConn(ctx, conn, unit)
}

// complete frees the slot of a finished unit and records its outcome
func (s *TCPServer) complete(res unitResult) {
	if !s.connectionMgr.RemoveUnit(res.unit.ID) {
		s.logger.Warn("Completion for unknown execution unit", "unitID", res.unit.ID)
		return
	}

	out := &domain.UnitOutcome{
		UnitID:     res.unit.ID,
		Direction:  res.unit.Direction,
		RemoteAddr: res.unit.RemoteAddr,
		Status:     statusOf(res.err),
		TextLength: res.unit.TextLength,
		StartedAt:  res.unit.AcceptedAt,
		FinishedAt: res.finishedAt,
	}
	if res.err != nil {
		out.Error = res.err.Error()
	}

	switch out.Status {
	case domain.UnitStatusCompleted:
		s.logger.Info("Execution unit done", "unitID", out.UnitID, "length", out.TextLength, "duration", out.Duration())
	case domain.UnitStatusRejected:
		s.logger.Warn("Execution unit rejected client", "unitID", out.UnitID, "remote", out.RemoteAddr)
	default:
		s.logger.Error("Execution unit failed", "unitID", out.UnitID, "remote", out.RemoteAddr, "error", res.err)
	}

	s.metrics.UnitFinished(out)

	s.recorders.Add(1)
	go func() {
		defer s.recorders.Done()
		s.outcomeService.Record(context.Background(), out)
	}()
}

func statusOf(err error) domain.UnitStatus {
	switch {
	case err == nil:
		return domain.UnitStatusCompleted
	case errors.Is(err, errs.ErrHandshakeRejected):
		return domain.UnitStatusRejected
	default:
		return domain.UnitStatusFailed
	}
}
