package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/config"
	httptransport "github.com/example/room-reservation/internal/http"
	"github.com/example/room-reservation/internal/notify"
	"github.com/example/room-reservation/internal/persistence"
	"github.com/example/room-reservation/internal/persistence/memory"
	"github.com/example/room-reservation/internal/persistence/postgres"
	"github.com/example/room-reservation/internal/persistence/sqlite"
	"github.com/example/room-reservation/internal/persistence/sqlite/migration"
	"github.com/example/room-reservation/internal/recurrence"
	"github.com/example/room-reservation/internal/scheduler"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		logger.Error("invalid log level", "level", cfg.LogLevel, "error", err)
		os.Exit(1)
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("reservation service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	notifier, closeNotifier := openNotifier(cfg, logger)
	defer closeNotifier()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newHandler(cfg, store, notifier, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("reservation API listening", "addr", server.Addr, "store", cfg.Store, "window", cfg.Window().String())
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// store bundles the repositories of the configured backend.
type store struct {
	resources    persistence.ResourceRepository
	reservations persistence.ReservationRepository
	health       httptransport.HealthChecker
	close        func()
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		mem := memory.New()
		return store{resources: mem, reservations: mem, health: mem, close: func() {}}, nil

	case config.StorePostgres:
		pool, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return store{}, err
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return store{}, err
		}
		return store{
			resources:    postgres.NewResourceRepository(pool),
			reservations: postgres.NewReservationRepository(pool),
			health:       pool,
			close:        pool.Close,
		}, nil

	default:
		if dir := filepath.Dir(cfg.SQLiteDSN); dir != "." && cfg.SQLiteDSN != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return store{}, fmt.Errorf("create database directory: %w", err)
			}
		}
		pool, err := sqlite.NewConnectionPool(migration.DefaultSQLiteConfig(cfg.SQLiteDSN))
		if err != nil {
			return store{}, fmt.Errorf("open storage: %w", err)
		}
		if err := pool.Migrate(ctx, logger); err != nil {
			_ = pool.Close()
			return store{}, fmt.Errorf("apply migrations: %w", err)
		}
		return store{
			resources:    sqlite.NewResourceRepository(pool),
			reservations: sqlite.NewReservationRepository(pool),
			health:       pool,
			close: func() {
				if err := pool.Close(); err != nil {
					logger.Error("failed to close storage", "error", err)
				}
			},
		}, nil
	}
}

// openNotifier always logs events and additionally fans out to Kafka and
// Redis when they are configured. Brokers are contacted lazily.
func openNotifier(cfg config.Config, logger *slog.Logger) (notify.Notifier, func()) {
	notifiers := notify.Multi{notify.NewLog(logger)}
	var closers []func() error

	if cfg.KafkaBrokers != "" {
		k := notify.NewKafka(notify.NewKafkaWriter(cfg.KafkaBrokers), cfg.KafkaTopic)
		notifiers = append(notifiers, k)
		closers = append(closers, k.Close)
		logger.Info("kafka notifications enabled", "topic", cfg.KafkaTopic)
	}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		notifiers = append(notifiers, notify.NewRedis(client, cfg.RedisChannel))
		closers = append(closers, client.Close)
		logger.Info("redis notifications enabled", "addr", cfg.RedisAddr, "channel", cfg.RedisChannel)
	}

	return notifiers, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("failed to close notifier", "error", err)
			}
		}
	}
}

func newHandler(cfg config.Config, s store, notifier notify.Notifier, logger *slog.Logger) http.Handler {
	window := cfg.Window()

	resources := application.NewResourceServiceWithLogger(
		s.resources,
		application.ResourceServiceOptions{CacheSize: cfg.ResourceCacheSize, CacheTTL: cfg.ResourceCacheTTL},
		uuid.NewString,
		time.Now,
		logger,
	)
	bookings := application.NewBookingServiceWithLogger(
		s.reservations,
		window,
		recurrence.NewEngine(cfg.MaxOccurrences),
		scheduler.NewDetector(cfg.DetectorParallelism),
		logger,
	)
	reservations := application.NewReservationServiceWithLogger(s.reservations, notifier, window, uuid.NewString, time.Now, logger)

	limiter := rate.NewLimiter(rate.Limit(cfg.SubmitRate), cfg.SubmitBurst)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Resources:    httptransport.NewResourceHandler(resources, logger),
		Plans:        httptransport.NewPlanHandler(bookings, resources, reservations, logger),
		Reservations: httptransport.NewReservationHandler(reservations, resources, logger),
		Health:       s.health,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RateLimit(limiter, logger, http.MethodPost),
		},
	})
}
