package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"gitlab.com/otp-2025.net/internal/adapter/crypto"
	"gitlab.com/otp-2025.net/internal/adapter/memory/outcomeport"
	"gitlab.com/otp-2025.net/internal/adapter/postgres/outcomerepository"
	redisoutcome "gitlab.com/otp-2025.net/internal/adapter/redis/outcomeport"
	"gitlab.com/otp-2025.net/internal/config"
	"gitlab.com/otp-2025.net/internal/core/ports/primary"
	"gitlab.com/otp-2025.net/internal/core/ports/secondary"
	auth2 "gitlab.com/otp-2025.net/internal/core/services/auth"
	"gitlab.com/otp-2025.net/internal/core/services/outcome"
	"gitlab.com/otp-2025.net/internal/domain"
	logger2 "gitlab.com/otp-2025.net/internal/global/logger"
	http2 "gitlab.com/otp-2025.net/internal/http"
	"gitlab.com/otp-2025.net/internal/metrics"
	"gitlab.com/otp-2025.net/internal/tcp"
)

const memoryOutcomeCapacity = 1000

// Daemon wires one cipher daemon: its TCP pool, outcome storage and the
// optional admin server.
type Daemon struct {
	direction      domain.Direction
	cfg            *config.AppConfig
	logger         primary.Logger
	registry       *prometheus.Registry
	outcomeService outcome.IOutcomeService
	tcpServer      *tcp.TCPServer
	adminServer    *http2.Server
	closers        []func() error
}

// NewDaemon builds a daemon listening on address. Redis and PostgreSQL
// outcome storage are used when configured.
func NewDaemon(ctx context.Context, direction domain.Direction, address string, cfg *config.AppConfig, logger primary.Logger) (*Daemon, error) {
	d := &Daemon{
		direction: direction,
		cfg:       cfg,
		logger:    logger,
		registry:  prometheus.NewRegistry(),
	}
	d.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	repos, err := d.outcomeRepositories(ctx)
	if err != nil {
		d.close()
		return nil, err
	}
	d.outcomeService = outcome.NewOutcomeService(logger, repos[0], repos[1:]...)

	poolMetrics, err := metrics.NewPoolMetrics(d.registry, direction)
	if err != nil {
		d.close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	d.tcpServer = tcp.NewTCPServer(direction, d.outcomeService, logger,
		tcp.WithAddress(address),
		tcp.WithUnitTimeout(cfg.PoolConfig.UnitTimeout),
		tcp.WithAcceptRetryDelay(cfg.PoolConfig.AcceptRetryDelay),
		tcp.WithMetrics(poolMetrics),
	)

	if cfg.AdminConfig.Enabled() {
		jwtProvider := crypto.NewJWTService(cfg.JwtConfig)
		authService := auth2.NewLocalAuthService(cfg.AdminConfig, cfg.JwtConfig, jwtProvider, logger)
		provider := http2.NewServiceProvider(d.outcomeService, authService, jwtProvider, d.tcpServer)
		d.adminServer = http2.NewServer(cfg.AdminConfig.Addr, direction.DaemonName(), *provider, d.registry, logger)
		if err := d.adminServer.Init(); err != nil {
			d.close()
			return nil, err
		}
	}

	return d, nil
}

// outcomeRepositories returns the configured repositories, most durable
// first; reads are served by the first one.
func (d *Daemon) outcomeRepositories(ctx context.Context) ([]secondary.OutcomeRepository, error) {
	var repos []secondary.OutcomeRepository

	if d.cfg.PostgresConfig.Enabled() {
		db, err := outcomerepository.Open(ctx, d.cfg.PostgresConfig.Url)
		if err != nil {
			return nil, fmt.Errorf("failed to set up database: %w", err)
		}
		d.closers = append(d.closers, db.Close)

		repo := outcomerepository.New(db, d.logger, d.cfg.PostgresConfig.Schema)
		if err := repo.EnsureTableExists(ctx); err != nil {
			return nil, err
		}
		repos = append(repos, repo)
		d.logger.Info("Recording outcomes in PostgreSQL", "schema", d.cfg.PostgresConfig.Schema)
	}

	if d.cfg.RedisConfig.Enabled() {
		rc := d.cfg.RedisConfig
		client, err := redisoutcome.NewClient(ctx, rc.Url, rc.Password, rc.DB)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, client.Close)

		prefix := rc.KeyPrefix + string(d.direction) + ":"
		repos = append(repos, redisoutcome.NewOutcomeRepository(client, prefix, rc.RecentLimit, d.logger))
		d.logger.Info("Recording outcomes in Redis", "addr", rc.Url, "prefix", prefix)
	}

	return append(repos, outcomeport.NewOutcomeRepository(memoryOutcomeCapacity)), nil
}

// Start opens the listeners
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.tcpServer.Start(); err != nil {
		return err
	}
	if d.adminServer != nil {
		if err := d.adminServer.Start(ctx); err != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), d.cfg.PoolConfig.ShutdownTimeout)
			defer cancel()
			_ = d.tcpServer.Stop(stopCtx)
			return err
		}
	}
	return nil
}

// Addr returns the cipher listener address
func (d *Daemon) Addr() net.Addr {
	return d.tcpServer.Addr()
}

// AdminAddr returns the admin listener address, nil when disabled
func (d *Daemon) AdminAddr() net.Addr {
	if d.adminServer == nil {
		return nil
	}
	return d.adminServer.ListenAddr()
}

// Shutdown stops accepting, waits for in-flight units and releases storage
func (d *Daemon) Shutdown(ctx context.Context) error {
	var errList []error
	if d.adminServer != nil {
		if err := d.adminServer.Stop(ctx); err != nil {
			errList = append(errList, fmt.Errorf("admin server: %w", err))
		}
	}
	if err := d.tcpServer.Stop(ctx); err != nil {
		errList = append(errList, fmt.Errorf("tcp server: %w", err))
	}
	if err := d.close(); err != nil {
		errList = append(errList, err)
	}
	return errors.Join(errList...)
}

func (d *Daemon) close() error {
	var errList []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errList = append(errList, err)
		}
	}
	d.closers = nil
	return errors.Join(errList...)
}

// NewDaemonCommand builds otp_enc_d or otp_dec_d
func NewDaemonCommand(direction domain.Direction) *cobra.Command {
	var envFile string
	var adminAddr string

	cmd := &cobra.Command{
		Use:           direction.DaemonName() + " port",
		Short:         fmt.Sprintf("Serve %s requests on port", direction),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  false,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := parsePort(args[0])
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("admin-addr") {
				cfg.AdminConfig.Addr = adminAddr
			}

			if err := logger2.Init(cfg.LogConfig); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger2.Info("Starting cipher daemon", "daemon", direction.DaemonName(), "port", port)
			logger := logger2.L().With("daemon", direction.DaemonName())

			return runDaemon(cmd.Context(), direction, ":"+strconv.Itoa(port), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Environment file to load (default .env when present)")
	cmd.Flags().StringVar(&adminAddr, "admin-addr", "", "Admin HTTP listen address, overrides ADMIN_ADDR")
	return cmd
}

func runDaemon(ctx context.Context, direction domain.Direction, address string, cfg *config.AppConfig, logger primary.Logger) error {
	d, err := NewDaemon(ctx, direction, address, cfg, logger)
	if err != nil {
		return err
	}
	if err := d.Start(ctx); err != nil {
		_ = d.close()
		return err
	}
	logger.Info("Daemon started", "address", d.Addr().String())

	<-ctx.Done()
	logger.Info("Shutting down daemon...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.PoolConfig.ShutdownTimeout)
	defer cancel()
	if err := d.Shutdown(shutdownCtx); err != nil {
		logger.Error("Daemon shutdown incomplete", "error", err)
		return err
	}

	logger.Info("successfully shutdown daemon")
	return nil
}
