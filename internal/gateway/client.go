package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ricirt/hubgateway/internal/channel"
	"github.com/ricirt/hubgateway/internal/domain"
)

const DefaultBaseURL = "https://api.28web.io"

// Config describes one tenant's connection to the messaging provider.
type Config struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	Retry    channel.RetryPolicy
	WhatsApp channel.WhatsAppConfig
	Telegram channel.TelegramConfig
}

// Option customises a Client beyond its Config.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	httpClient *http.Client
	limiter    channel.Limiter
	hooks      channel.Hooks
	now        func() time.Time
}

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithHTTPClient replaces the default client; its own Timeout then applies.
func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.httpClient = c } }

func WithLimiter(l channel.Limiter) Option { return func(o *options) { o.limiter = l } }

func WithHooks(h channel.Hooks) Option { return func(o *options) { o.hooks = h } }

func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// Client is the entry point to the provider: it owns the shared transport,
// the four channel adapters and the provider management operations.
// A Client is immutable after New and safe for concurrent use.
type Client struct {
	api      *channel.Transport
	adapters map[domain.Channel]channel.Adapter
	whatsapp *channel.WhatsApp
	telegram *channel.Telegram
	validate *validator.Validate
	logger   *zap.Logger
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Token == "" {
		return nil, domain.NewError("", "configure", domain.ErrConfiguration, "API token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	api := channel.NewTransport(cfg.BaseURL, cfg.Token, cfg.Timeout, o.httpClient, o.logger)
	settings := channel.Settings{
		Transport: api,
		Retry:     cfg.Retry,
		Limiter:   o.limiter,
		Hooks:     o.hooks,
		Logger:    o.logger,
		Now:       o.now,
	}

	wa, err := channel.NewWhatsApp(cfg.WhatsApp, settings)
	if err != nil {
		return nil, err
	}
	tg, err := channel.NewTelegram(cfg.Telegram, settings)
	if err != nil {
		return nil, err
	}

	return &Client{
		api: api,
		adapters: map[domain.Channel]channel.Adapter{
			domain.ChannelWhatsApp:  wa,
			domain.ChannelFacebook:  channel.NewFacebook(settings),
			domain.ChannelInstagram: channel.NewInstagram(settings),
			domain.ChannelTelegram:  tg,
		},
		whatsapp: wa,
		telegram: tg,
		validate: validator.New(),
		logger:   o.logger,
	}, nil
}

// SetChannel returns the adapter registered under name.
func (c *Client) SetChannel(name string) (channel.Adapter, error) {
	if a, ok := c.adapters[domain.Channel(name)]; ok {
		return a, nil
	}
	return nil, &domain.ChannelNotSupportedError{Name: name, Known: c.Channels()}
}

// Channels lists the registered channel names in stable order.
func (c *Client) Channels() []domain.Channel {
	out := make([]domain.Channel, 0, len(c.adapters))
	for _, ch := range domain.Channels() {
		if _, ok := c.adapters[ch]; ok {
			out = append(out, ch)
		}
	}
	return out
}

func (c *Client) WhatsApp() *channel.WhatsApp { return c.whatsapp }

func (c *Client) Telegram() *channel.Telegram { return c.telegram }

// GetChannels lists the channels configured for this account at the provider.
func (c *Client) GetChannels(ctx context.Context) ([]domain.ChannelInfo, error) {
	var out []domain.ChannelInfo
	if err := c.do(ctx, "getChannels", channel.Request{Method: http.MethodGet, Path: "/channels"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSubscription registers a webhook target. Empty Events defaults to
// every event kind; the channel must be one this client registers.
func (c *Client) CreateSubscription(ctx context.Context, req domain.SubscriptionRequest) (*domain.Subscription, error) {
	const op = "createSubscription"

	if len(req.Events) == 0 {
		req.Events = domain.DefaultEvents()
	}
	if err := c.validate.Struct(req); err != nil {
		return nil, domain.NewError("", op, domain.ErrValidation, validationMessage(err))
	}
	if _, ok := c.adapters[req.Channel]; !ok {
		return nil, domain.NewError("", op, domain.ErrValidation,
			(&domain.ChannelNotSupportedError{Name: string(req.Channel), Known: c.Channels()}).Error())
	}

	var out domain.Subscription
	if err := c.do(ctx, op, channel.Request{Method: http.MethodPost, Path: "/subscriptions", Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	var out []domain.Subscription
	if err := c.do(ctx, "getSubscriptions", channel.Request{Method: http.MethodGet, Path: "/subscriptions"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteSubscription(ctx context.Context, id string) error {
	const op = "deleteSubscription"
	if id == "" {
		return domain.NewError("", op, domain.ErrValidation, "subscription id is required")
	}
	return c.do(ctx, op, channel.Request{Method: http.MethodDelete, Path: "/subscriptions/" + url.PathEscape(id)}, nil)
}

// GetStatus reports provider health. It never returns an error: failures
// are captured in the response envelope.
func (c *Client) GetStatus(ctx context.Context) *domain.APIResponse[domain.GatewayStatus] {
	var out domain.GatewayStatus
	if err := c.do(ctx, "getStatus", channel.Request{Method: http.MethodGet, Path: "/status"}, &out); err != nil {
		return domain.Fail[domain.GatewayStatus](err)
	}
	return domain.OK(out)
}

func (c *Client) do(ctx context.Context, op string, r channel.Request, out any) error {
	if err := c.api.Call(ctx, r, out); err != nil {
		err = channel.Classify(ctx, "", op, err)
		c.logger.Error("gateway operation failed", zap.String("op", op), zap.Error(err))
		return err
	}
	return nil
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
