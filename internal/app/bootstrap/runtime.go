package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cacheadapter "github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/adapters/cache"
	eventadapter "github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/adapters/events"
	httpadapter "github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/adapters/http"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/adapters/postgres"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/adapters/remote"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/adapters/security"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/application"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)
	logger.Info("bootstrapping m04 account provisioning service", "http_port", cfg.HTTPPort)

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}
	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	publisher := ports.EventPublisher(eventadapter.NewLoggingPublisher(logger))
	var publisherCloser func()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, pubErr := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, map[string]string{
			"identity.provisioned": cfg.KafkaTopicAccountProvisioned,
		})
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka publisher disabled, using logging publisher", "error", pubErr)
		} else {
			publisher = kafkaPublisher
			publisherCloser = func() { _ = kafkaPublisher.Close() }
		}
	}

	repos := postgres.NewRepositories(db)
	service := application.NewService(application.Dependencies{
		Config: application.Config{
			DefaultPlanSlug:              cfg.DefaultPlanSlug,
			DefaultBillingCycle:          cfg.DefaultBillingCycle,
			PrecheckTimeout:              cfg.PrecheckTimeout,
			IdempotencyTTL:               cfg.IdempotencyTTL,
			RateLimitIPThreshold:         cfg.RateLimitIPThreshold,
			RateLimitIdentifierThreshold: cfg.RateLimitIdentifierThreshold,
			RateLimitWindow:              cfg.RateLimitWindow,
		},
		Identities:  repos.Identities,
		Idempotency: repos.Idempotency,
		Access:      remote.NewAccessControlClient(cfg.AccessControlURL, cfg.RemoteTimeout),
		Billing:     remote.NewBillingClient(cfg.BillingURL, cfg.RemoteTimeout),
		Publisher:   publisher,
		Rates:       cacheadapter.NewRedisRateLimitStore(redisClient),
		Hasher:      security.NewBcryptHasher(cfg.BcryptCost),
	})

	handler := httpadapter.NewHandler(service)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		cleanupFn: func(ctx context.Context) {
			if publisherCloser != nil {
				publisherCloser()
			}
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.cleanupFn(shutdownCtx)
	return nil
}
