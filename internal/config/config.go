package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ricirt/hubgateway/internal/channel"
	"github.com/ricirt/hubgateway/internal/gateway"
)

// Config holds all runtime configuration. Values come from environment
// variables, optionally layered over a YAML file named by CONFIG_FILE.
// Every field has a default except HUB_API_TOKEN, which is required.
type Config struct {
	// Provider API
	APIBaseURL     string
	APIToken       string
	Timeout        time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration

	// Outbound requests per second per channel; 0 disables throttling.
	RateLimit int

	// WhatsApp Business API
	WhatsAppPhoneNumberID string
	WhatsAppAccessToken   string
	WhatsAppVersion       string
	WhatsAppCountryCode   string

	// Telegram Bot API
	TelegramBotToken string
	TelegramAPIURL   string

	// Outbound API
	HTTPPort  string
	PublicDir string
	MaxUpload int64

	// Webhook listener
	WebhookPort        string
	WebhookPath        string
	WebhookVerifyToken string
	ShutdownTimeout    time.Duration

	// Optional collaborators; empty disables them.
	DatabaseURL  string
	DBMaxConns   int32
	DBMinConns   int32
	AMQPURL      string
	AMQPExchange string
	TenantID     string

	// Media
	PublicBaseURL string
	FFmpegPath    string

	LogLevel string
}

var defaults = map[string]any{
	"HUB_API_BASE_URL":           "https://api.28web.io",
	"HUB_API_TOKEN":              "",
	"HUB_TIMEOUT":                "30s",
	"HUB_RETRY_ATTEMPTS":         3,
	"HUB_RETRY_BASE_DELAY":       "1s",
	"HUB_RATE_LIMIT_PER_CHANNEL": 20,
	"HUB_TENANT_ID":              "default",

	"WHATSAPP_PHONE_NUMBER_ID":      "",
	"WHATSAPP_ACCESS_TOKEN":         "",
	"WHATSAPP_VERSION":              "v18.0",
	"WHATSAPP_DEFAULT_COUNTRY_CODE": "55",

	"TELEGRAM_BOT_TOKEN": "",
	"TELEGRAM_API_URL":   "https://api.telegram.org",

	"HTTP_PORT":        "8080",
	"PUBLIC_DIR":       "./public",
	"MAX_UPLOAD_BYTES": 16 << 20,

	"WEBHOOK_PORT":         "3000",
	"WEBHOOK_PATH":         "/webhook",
	"WEBHOOK_VERIFY_TOKEN": "",
	"SHUTDOWN_TIMEOUT":     "30s",

	"DATABASE_URL":  "",
	"DB_MAX_CONNS":  10,
	"DB_MIN_CONNS":  2,
	"AMQP_URL":      "",
	"AMQP_EXCHANGE": "hub.events",

	"PUBLIC_BASE_URL": "http://localhost:8080",
	"FFMPEG_PATH":     "ffmpeg",

	"LOG_LEVEL": "info",
}

func Load() (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	token := v.GetString("HUB_API_TOKEN")
	if token == "" {
		return nil, errors.New("HUB_API_TOKEN is required")
	}

	cfg := &Config{
		APIBaseURL:     v.GetString("HUB_API_BASE_URL"),
		APIToken:       token,
		Timeout:        v.GetDuration("HUB_TIMEOUT"),
		RetryAttempts:  v.GetInt("HUB_RETRY_ATTEMPTS"),
		RetryBaseDelay: v.GetDuration("HUB_RETRY_BASE_DELAY"),
		RateLimit:      v.GetInt("HUB_RATE_LIMIT_PER_CHANNEL"),

		WhatsAppPhoneNumberID: v.GetString("WHATSAPP_PHONE_NUMBER_ID"),
		WhatsAppAccessToken:   v.GetString("WHATSAPP_ACCESS_TOKEN"),
		WhatsAppVersion:       v.GetString("WHATSAPP_VERSION"),
		WhatsAppCountryCode:   v.GetString("WHATSAPP_DEFAULT_COUNTRY_CODE"),

		TelegramBotToken: v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramAPIURL:   v.GetString("TELEGRAM_API_URL"),

		HTTPPort:  v.GetString("HTTP_PORT"),
		PublicDir: v.GetString("PUBLIC_DIR"),
		MaxUpload: v.GetInt64("MAX_UPLOAD_BYTES"),

		WebhookPort:        v.GetString("WEBHOOK_PORT"),
		WebhookPath:        v.GetString("WEBHOOK_PATH"),
		WebhookVerifyToken: v.GetString("WEBHOOK_VERIFY_TOKEN"),
		ShutdownTimeout:    v.GetDuration("SHUTDOWN_TIMEOUT"),

		DatabaseURL:  v.GetString("DATABASE_URL"),
		DBMaxConns:   v.GetInt32("DB_MAX_CONNS"),
		DBMinConns:   v.GetInt32("DB_MIN_CONNS"),
		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),
		TenantID:     v.GetString("HUB_TENANT_ID"),

		PublicBaseURL: v.GetString("PUBLIC_BASE_URL"),
		FFmpegPath:    v.GetString("FFMPEG_PATH"),

		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("HUB_TIMEOUT must be positive, got %q", v.GetString("HUB_TIMEOUT"))
	}
	if cfg.RetryAttempts < 1 {
		return nil, fmt.Errorf("HUB_RETRY_ATTEMPTS must be at least 1, got %d", cfg.RetryAttempts)
	}
	if !strings.HasPrefix(cfg.WebhookPath, "/") {
		cfg.WebhookPath = "/" + cfg.WebhookPath
	}
	return cfg, nil
}

// HTTPAddr is the listen address of the outbound API.
func (c *Config) HTTPAddr() string {
	return ":" + c.HTTPPort
}

// WebhookAddr is the listen address derived from WebhookPort.
func (c *Config) WebhookAddr() string {
	return ":" + c.WebhookPort
}

// GatewayConfig is the client configuration for one tenant token, sharing
// every other setting with this Config.
func (c *Config) GatewayConfig(token string) gateway.Config {
	return gateway.Config{
		BaseURL: c.APIBaseURL,
		Token:   token,
		Timeout: c.Timeout,
		Retry:   channel.RetryPolicy{MaxAttempts: c.RetryAttempts, BaseDelay: c.RetryBaseDelay},
		WhatsApp: channel.WhatsAppConfig{
			PhoneNumberID:      c.WhatsAppPhoneNumberID,
			AccessToken:        c.WhatsAppAccessToken,
			APIVersion:         c.WhatsAppVersion,
			DefaultCountryCode: c.WhatsAppCountryCode,
		},
		Telegram: channel.TelegramConfig{BotToken: c.TelegramBotToken, APIURL: c.TelegramAPIURL},
	}
}
