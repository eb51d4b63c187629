package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/bankdash/internal/adapter/gateway"
	httpAdapter "github.com/iho/bankdash/internal/adapter/http"
	"github.com/iho/bankdash/internal/adapter/http/handler"
	"github.com/iho/bankdash/internal/adapter/http/middleware"
	"github.com/iho/bankdash/internal/adapter/notifier"
	"github.com/iho/bankdash/internal/adapter/repository/memory"
	redisRepo "github.com/iho/bankdash/internal/adapter/repository/redis"
	"github.com/iho/bankdash/internal/domain"
	"github.com/iho/bankdash/internal/infrastructure/config"
	"github.com/iho/bankdash/internal/infrastructure/logger"
	"github.com/iho/bankdash/internal/infrastructure/metrics"
	"github.com/iho/bankdash/internal/infrastructure/redis"
	"github.com/iho/bankdash/internal/infrastructure/seed"
	"github.com/iho/bankdash/internal/usecase"
)

const (
	rateLimitCleanupInterval = 10 * time.Minute
	rateLimitMaxIdle         = time.Hour
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.SetGlobalLevel(logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// app holds the wired components of the server.
type app struct {
	handler     http.Handler
	gateway     *gateway.Router
	rateLimiter *middleware.RateLimiter
	redis       *goredis.Client
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := build(ctx, cfg, reg, log)
	if err != nil {
		return err
	}
	if a.redis != nil {
		defer a.redis.Close()
	}

	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	defer cancelCleanup()
	go a.rateLimiter.RunCleanup(cleanupCtx, rateLimitCleanupInterval, rateLimitMaxIdle)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.HTTPPort).
			Str("gateway_mode", string(a.gateway.Mode())).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// build wires the ledger, gateway, workflow and HTTP layers.
func build(ctx context.Context, cfg *config.Config, reg *prometheus.Registry, log zerolog.Logger) (*app, error) {
	m := metrics.New(reg)

	snapshot, err := loadSeed(cfg.LedgerSeedFile, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger seed: %w", err)
	}
	ledger := memory.NewLedgerStore(snapshot)
	m.LedgerTotalBalance.Set(ledger.TotalBalance().InexactFloat64())
	log.Info().Int("accounts", len(snapshot.Accounts)).Int("transactions", len(snapshot.History)).Msg("ledger loaded")

	// Gateway: remote when configured and healthy, local simulation otherwise
	simulator := gateway.NewSimulator(ledger, gateway.NewULIDGenerator(), log)
	var remote gateway.Remote
	if cfg.RemoteAPIURL != "" {
		remote = gateway.NewRemoteGateway(cfg.RemoteAPIURL, cfg.GatewayTimeout, nil, log)
	}
	gw := gateway.NewRouter(remote, simulator, cfg.HealthProbeTimeout, m, log)
	gw.Init(ctx)

	// Redis is optional
	var (
		redisClient *goredis.Client
		cache       usecase.Cache
		idempotency usecase.IdempotencyStore
		pinger      handler.Pinger
	)
	if cfg.RedisEnabled() {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL, redis.DefaultRetryConfig(), log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisCache := redisRepo.NewCache(redisClient, m)
		cache = redisCache
		pinger = redisCache
		idempotency = redisRepo.NewIdempotencyStore(redisClient, m)
		log.Info().Msg("connected to redis")
	}

	queue := notifier.NewQueue(cfg.EventQueueSize, m, log)
	events := notifier.Multi{queue, notifier.NewLogNotifier(log)}

	workflow := usecase.NewWorkflowUseCase(
		ledger,
		domain.NewValidator(domain.ValidationPolicy{CreditLimitHeadroom: cfg.CreditLimitHeadroom}),
		gw,
		events,
		cache,
		m,
		log,
		usecase.WorkflowConfig{
			QuickActionAccount: cfg.QuickActionAccount,
			LastTransactionTTL: cfg.LastTransactionTTL,
		},
	)
	dashboard := usecase.NewDashboardUseCase(ledger)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(dashboard, workflow),
		TransactionHandler: handler.NewTransactionHandler(dashboard),
		DraftHandler:       handler.NewDraftHandler(workflow),
		EventHandler:       handler.NewEventHandler(queue),
		HealthHandler:      handler.NewHealthHandler(gw, pinger),
		IdempotencyStore:   idempotency,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        rateLimiter,
		Metrics:            m,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:             log,
	})

	return &app{
		handler:     router,
		gateway:     gw,
		rateLimiter: rateLimiter,
		redis:       redisClient,
	}, nil
}

// loadSeed reads the ledger seed file, or returns the demo data when path is empty.
func loadSeed(path string, now time.Time) (domain.Snapshot, error) {
	if path == "" {
		return seed.Demo(now), nil
	}
	return seed.Load(path)
}
