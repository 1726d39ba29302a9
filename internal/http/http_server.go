package http

// this is entry point of the admin http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.com/otp-2025.net/internal/core/ports/primary"
	auth2 "gitlab.com/otp-2025.net/internal/core/services/auth"
	"gitlab.com/otp-2025.net/internal/core/services/outcome"
	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/handlers"
	"gitlab.com/otp-2025.net/internal/handlers/auth"
	"gitlab.com/otp-2025.net/internal/handlers/outcomes"
	"gitlab.com/otp-2025.net/internal/handlers/pool"
)

type ServiceProvider struct {
	outcomeService outcome.IOutcomeService
	authService    auth2.IAuthService
	jwtService     primary.JWTService
	pool           primary.PoolInspector
}

func NewServiceProvider(
	outcomeService outcome.IOutcomeService,
	authService auth2.IAuthService,
	jwtService primary.JWTService,
	pool primary.PoolInspector,
) *ServiceProvider {
	return &ServiceProvider{
		outcomeService: outcomeService,
		authService:    authService,
		jwtService:     jwtService,
		pool:           pool,
	}
}

type Server struct {
	router          *mux.Router
	Addr            string
	ServiceName     string
	ServiceProvider ServiceProvider
	logger          primary.Logger
	gatherer        prometheus.Gatherer
	srv             *http.Server
	listener        net.Listener
}

func NewServer(addr string, serviceName string, serviceProvider ServiceProvider, gatherer prometheus.Gatherer, logger primary.Logger) *Server {
	return &Server{
		Addr:            addr,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		logger:          logger,
		gatherer:        gatherer,
	}
}

func (s *Server) Init() error {
	if s.gatherer == nil {
		return fmt.Errorf("%s: no metrics gatherer", s.ServiceName)
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.healthz).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods("GET")

	auth.NewHandler(s.ServiceProvider.authService, s.logger).RegisterRoutes(r)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(handlers.New(s.ServiceProvider.jwtService, s.logger).JWTMiddleware(domain.PermissionPoolRead))
	pool.NewHandler(s.ServiceProvider.pool).Register(protected)
	outcomes.NewOutcomeHandler(s.ServiceProvider.outcomeService, s.logger).RegisterRoutes(protected)

	s.router = r
	return nil
}

// Handler returns the router built by Init
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	handlers.ResponseWithJson(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": s.ServiceName,
	})
}

func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("%s: Init must be called before Start", s.ServiceName)
	}

	// Set up server
	s.srv = &http.Server{
		Addr:         s.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to start admin server: %w", err)
	}
	s.listener = listener

	// Start the server in a goroutine
	go func() {
		s.logger.Info("Admin server listening", "addr", listener.Addr().String())
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Admin server error", "error", err)
		}
	}()

	return nil
}

// ListenAddr returns the bound address once started
func (s *Server) ListenAddr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	s.logger.Info("Shutting down admin server...")
	return s.srv.Shutdown(ctx)
}
