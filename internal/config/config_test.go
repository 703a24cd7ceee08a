package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricirt/hubgateway/internal/config"
)

func TestLoad_RequiresToken(t *testing.T) {
	t.Setenv("HUB_API_TOKEN", "")
	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HUB_API_TOKEN")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HUB_API_TOKEN", "tok")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.28web.io", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, "v18.0", cfg.WhatsAppVersion)
	assert.Equal(t, "55", cfg.WhatsAppCountryCode)
	assert.Equal(t, "https://api.telegram.org", cfg.TelegramAPIURL)
	assert.Equal(t, "/webhook", cfg.WebhookPath)
	assert.Equal(t, ":3000", cfg.WebhookAddr())
	assert.Equal(t, ":8080", cfg.HTTPAddr())
	assert.Equal(t, "./public", cfg.PublicDir)
	assert.Equal(t, int64(16<<20), cfg.MaxUpload)
	assert.Empty(t, cfg.WebhookVerifyToken)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.AMQPURL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HUB_API_TOKEN", "tok")
	t.Setenv("HUB_API_BASE_URL", "https://hub.example.com")
	t.Setenv("HUB_TIMEOUT", "5s")
	t.Setenv("HUB_RETRY_ATTEMPTS", "5")
	t.Setenv("HUB_RATE_LIMIT_PER_CHANNEL", "0")
	t.Setenv("WEBHOOK_PORT", "8081")
	t.Setenv("WEBHOOK_PATH", "hooks")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "pn-1")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://hub.example.com", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, 0, cfg.RateLimit)
	assert.Equal(t, ":8081", cfg.WebhookAddr())
	assert.Equal(t, "/hooks", cfg.WebhookPath)
	assert.Equal(t, "pn-1", cfg.WhatsAppPhoneNumberID)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("HUB_API_TOKEN", "tok")
	t.Setenv("HUB_RETRY_ATTEMPTS", "0")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.yaml")
	require.NoError(t, os.WriteFile(path, []byte("HUB_API_TOKEN: from-file\nWEBHOOK_VERIFY_TOKEN: file-secret\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HUB_API_TOKEN", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.APIToken)
	assert.Equal(t, "file-secret", cfg.WebhookVerifyToken)
}

func TestGatewayConfig(t *testing.T) {
	t.Setenv("HUB_API_TOKEN", "tok")
	t.Setenv("HUB_RETRY_ATTEMPTS", "4")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := config.Load()
	require.NoError(t, err)

	gc := cfg.GatewayConfig("tenant-token")
	assert.Equal(t, "tenant-token", gc.Token)
	assert.Equal(t, cfg.APIBaseURL, gc.BaseURL)
	assert.Equal(t, 4, gc.Retry.MaxAttempts)
	assert.Equal(t, "123:abc", gc.Telegram.BotToken)
	assert.Equal(t, "55", gc.WhatsApp.DefaultCountryCode)
}
