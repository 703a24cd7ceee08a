package channel_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ricirt/hubgateway/internal/channel"
	"github.com/ricirt/hubgateway/internal/domain"
)

func newTelegram(t *testing.T, apiURL string) *channel.Telegram {
	t.Helper()
	tg, err := channel.NewTelegram(channel.TelegramConfig{BotToken: "123:abc", APIURL: apiURL}, settings("http://unused"))
	require.NoError(t, err)
	return tg
}

func TestNewTelegram_RequiresToken(t *testing.T) {
	_, err := channel.NewTelegram(channel.TelegramConfig{}, settings("http://unused"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestTelegram_SendText(t *testing.T) {
	rec, srv := newProvider(t, replyJSON(http.StatusOK, `{"ok":true,"result":{"message_id":77}}`))
	tg := newTelegram(t, srv.URL)

	resp, err := tg.SendMessage(context.Background(), "bot", "555", domain.NewText("hello"))
	require.NoError(t, err)
	assert.Equal(t, "77", resp.Data.ID)
	assert.Equal(t, domain.ChannelTelegram, resp.Data.Channel)

	assert.Equal(t, "/bot123:abc/sendMessage", rec.lastPath())
	assert.Empty(t, rec.lastAuth(), "gateway credential is not forwarded to the Bot API")
	body := rec.lastBody(t)
	assert.Equal(t, "555", body["chat_id"])
	assert.Equal(t, "hello", body["text"])
}

func TestTelegram_FileMethodByMimeType(t *testing.T) {
	tests := []struct {
		mime   string
		method string
		field  string
	}{
		{"image/png", "sendPhoto", "photo"},
		{"video/mp4", "sendVideo", "video"},
		{"audio/mpeg", "sendAudio", "audio"},
		{"application/zip", "sendDocument", "document"},
	}
	for _, tc := range tests {
		t.Run(tc.mime, func(t *testing.T) {
			rec, srv := newProvider(t, replyJSON(http.StatusOK, `{"ok":true,"result":{"message_id":5}}`))
			tg := newTelegram(t, srv.URL)

			_, err := tg.SendMessage(context.Background(), "bot", "555",
				domain.NewFile("https://cdn.example.com/f", tc.mime, "caption", ""))
			require.NoError(t, err)

			assert.Equal(t, "/bot123:abc/"+tc.method, rec.lastPath())
			body := rec.lastBody(t)
			assert.Equal(t, "https://cdn.example.com/f", body[tc.field])
			assert.Equal(t, "caption", body["caption"])
		})
	}
}

func TestTelegram_UnsupportedContent(t *testing.T) {
	rec, srv := newProvider(t, replyJSON(http.StatusOK, `{}`))
	tg := newTelegram(t, srv.URL)

	_, err := tg.SendMessage(context.Background(), "bot", "555", domain.NewLocation(0, 0, "", ""))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedContent))
	assert.EqualValues(t, 0, rec.calls.Load())
}

func TestTelegram_ProviderDescription(t *testing.T) {
	_, srv := newProvider(t, replyJSON(http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	tg := newTelegram(t, srv.URL)

	_, err := tg.SendMessage(context.Background(), "bot", "555", domain.NewText("x"))
	require.Error(t, err)
	assert.Equal(t, "telegram API error (sendMessage): Bad Request: chat not found", err.Error())
}

func TestTelegram_BotInfoAndWebhook(t *testing.T) {
	rec, srv := newProvider(t, replyJSON(http.StatusOK, `{"ok":true,"result":{"username":"hub_bot"}}`))
	tg := newTelegram(t, srv.URL)

	info, err := tg.GetBotInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hub_bot", info.Data["username"])
	assert.Equal(t, "/bot123:abc/getMe", rec.lastPath())

	_, err = tg.SetWebhook(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestTelegram_SetWebhook(t *testing.T) {
	rec, srv := newProvider(t, replyJSON(http.StatusOK, `{"ok":true,"result":true}`))
	tg := newTelegram(t, srv.URL)

	resp, err := tg.SetWebhook(context.Background(), "https://hooks.example.com/webhook")
	require.NoError(t, err)
	assert.True(t, resp.Data)
	assert.Equal(t, "/bot123:abc/setWebhook", rec.lastPath())
	assert.Equal(t, "https://hooks.example.com/webhook", rec.lastBody(t)["url"])
}

func TestTelegram_TokenNotLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := settings("http://unused")
	s.Logger = zap.New(core)
	s.Transport = channel.NewTransport("http://unused", "hub-token", 0, nil, zap.New(core))
	s.Retry = channel.RetryPolicy{MaxAttempts: 1}

	_, srv := newProvider(t, replyJSON(http.StatusInternalServerError, `{}`))
	tg, err := channel.NewTelegram(channel.TelegramConfig{BotToken: "123:secret", APIURL: srv.URL}, s)
	require.NoError(t, err)

	_, err = tg.SendMessage(context.Background(), "bot", "555", domain.NewText("x"))
	require.Error(t, err)
	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		for _, f := range entry.Context {
			assert.NotContains(t, f.String, "123:secret")
			if f.Interface != nil {
				if e, ok := f.Interface.(error); ok {
					assert.NotContains(t, e.Error(), "123:secret")
				}
			}
		}
	}
}
