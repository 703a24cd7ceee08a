package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ricirt/hubgateway/internal/api"
	"github.com/ricirt/hubgateway/internal/config"
	"github.com/ricirt/hubgateway/internal/db"
	"github.com/ricirt/hubgateway/internal/gateway"
	"github.com/ricirt/hubgateway/internal/media"
	"github.com/ricirt/hubgateway/internal/metrics"
	"github.com/ricirt/hubgateway/internal/notify"
	"github.com/ricirt/hubgateway/internal/ratelimiter"
	"github.com/ricirt/hubgateway/internal/repository"
	"github.com/ricirt/hubgateway/internal/service"
	"github.com/ricirt/hubgateway/internal/webhook"
)

func main() {
	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		boot, _ := zap.NewProduction()
		boot.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		boot, _ := zap.NewProduction()
		boot.Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- persistence ----
	var (
		messages repository.MessageRepository = repository.Discard{}
		tokens   repository.TokenStore        = repository.StaticTokenStore{cfg.TenantID: cfg.APIToken}
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, db.PoolConfig{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		logger.Info("database migrations applied")

		messages = repository.NewPgMessageRepository(pool)
		tokens = repository.NewPgTokenStore(pool)
	} else {
		logger.Info("no DATABASE_URL, outbound messages are not recorded", zap.String("tenant_id", cfg.TenantID))
	}

	// ---- realtime notifications ----
	var publisher notify.Publisher = notify.Nop{}
	if cfg.AMQPURL != "" {
		rp, err := notify.NewRabbitPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Fatal("failed to connect to broker", zap.Error(err))
		}
		publisher = rp
		logger.Info("publishing notifications", zap.String("exchange", cfg.AMQPExchange))
	}
	defer publisher.Close() //nolint:errcheck

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	limiter := ratelimiter.New(cfg.RateLimit)

	newClient := func(token string) (*gateway.Client, error) {
		return gateway.New(cfg.GatewayConfig(token),
			gateway.WithLogger(logger),
			gateway.WithLimiter(limiter),
			gateway.WithHooks(m.SendHooks()),
		)
	}
	// Fail fast on adapter misconfiguration instead of on the first send.
	if _, err := newClient(cfg.APIToken); err != nil {
		logger.Fatal("invalid gateway configuration", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.PublicDir, 0o755); err != nil {
		logger.Fatal("failed to create public dir", zap.String("dir", cfg.PublicDir), zap.Error(err))
	}

	svc := service.NewDispatchService(service.Deps{
		Tokens:           tokens,
		Clients:          newClient,
		Messages:         messages,
		Publisher:        publisher,
		Transcoder:       media.NewFFmpeg(cfg.FFmpegPath, logger),
		PublicBaseURL:    cfg.PublicBaseURL,
		OnFollowUpFailed: m.FollowUpFailed,
	}, logger)
	relay := service.NewInboundRelay(cfg.TenantID, publisher, logger)

	// ---- webhook listener ----
	listener := webhook.NewListener(webhook.Config{
		Addr:            cfg.WebhookAddr(),
		Path:            cfg.WebhookPath,
		VerifyToken:     cfg.WebhookVerifyToken,
		OnMessage:       relay.OnMessage,
		OnMessageStatus: relay.OnMessageStatus,
	}, logger,
		webhook.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		webhook.WithHooks(m.WebhookHooks()),
	)
	if err := listener.Start(); err != nil {
		logger.Fatal("failed to start webhook listener", zap.Error(err))
	}

	// ---- outbound API ----
	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           api.NewRouter(svc, api.RouterConfig{PublicDir: cfg.PublicDir, MaxUpload: cfg.MaxUpload}, logger),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * cfg.Timeout * time.Duration(cfg.RetryAttempts),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// ---- graceful shutdown ----
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		// 1. Stop accepting webhook deliveries, finishing in-flight ones.
		if err := listener.Stop(shutdownCtx); err != nil {
			logger.Error("webhook listener shutdown error", zap.Error(err))
		}
		// 2. Drain outbound API requests.
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}
	logger.Info("server stopped cleanly")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}
