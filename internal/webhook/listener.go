package webhook

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/hubgateway/internal/domain"
)

const (
	DefaultAddr = ":3000"
	DefaultPath = "/webhook"
)

// EventHandler receives one normalized event. Returning an error fails the
// whole delivery with 500 so the provider redelivers it.
type EventHandler func(ctx context.Context, ev domain.WebhookEvent) error

// Config is fixed at construction; the handler registry cannot change while
// the listener runs.
type Config struct {
	Addr            string
	Path            string
	VerifyToken     string
	OnMessage       EventHandler
	OnMessageStatus EventHandler
}

// Hooks observe ingestion outcomes. Nil funcs are skipped.
type Hooks struct {
	OnEvent    func(ev domain.WebhookEvent)
	OnRejected func(reason string)
}

type Option func(*Listener)

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option { return func(l *Listener) { l.metrics = h } }

func WithHooks(h Hooks) Option { return func(l *Listener) { l.hooks = h } }

func WithClock(now func() time.Time) Option { return func(l *Listener) { l.now = now } }

// Listener serves the provider webhook endpoint, its verification handshake
// and a health probe.
type Listener struct {
	cfg     Config
	logger  *zap.Logger
	hooks   Hooks
	metrics http.Handler
	now     func() time.Time
	handler http.Handler

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener
}

func NewListener(cfg Config, logger *zap.Logger, opts ...Option) *Listener {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Listener{cfg: cfg, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	l.handler = l.routes()
	return l
}

// Handler exposes the router, mainly for httptest.
func (l *Listener) Handler() http.Handler { return l.handler }

// Start binds the listen address and serves in the background. Calling
// Start on a running listener logs a warning and does nothing.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.srv != nil {
		l.logger.Warn("webhook listener already started", zap.String("addr", l.ln.Addr().String()))
		return nil
	}

	ln, err := net.Listen("tcp", l.cfg.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           l.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	l.srv, l.ln = srv, ln

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Error("webhook listener stopped", zap.Error(err))
		}
	}()

	l.logger.Info("webhook listener started",
		zap.String("addr", ln.Addr().String()),
		zap.String("path", l.cfg.Path),
	)
	return nil
}

// Stop drains in-flight deliveries and closes the listener. Stopping a
// listener that is not running is a no-op.
func (l *Listener) Stop(ctx context.Context) error {
	l.mu.Lock()
	srv := l.srv
	l.srv, l.ln = nil, nil
	l.mu.Unlock()

	if srv == nil {
		return nil
	}
	err := srv.Shutdown(ctx)
	l.logger.Info("webhook listener stopped")
	return err
}

// Addr is the bound address while running, "" otherwise.
func (l *Listener) Addr() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return ""
	}
	return l.ln.Addr().String()
}
