package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricirt/hubgateway/internal/channel"
	"github.com/ricirt/hubgateway/internal/domain"
	"github.com/ricirt/hubgateway/internal/gateway"
)

func testConfig(baseURL string) gateway.Config {
	return gateway.Config{
		BaseURL:  baseURL,
		Token:    "hub-token",
		Timeout:  5 * time.Second,
		Retry:    channel.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
		WhatsApp: channel.WhatsAppConfig{PhoneNumberID: "pn-1", AccessToken: "wa-token"},
		Telegram: channel.TelegramConfig{BotToken: "123:abc"},
	}
}

func newClient(t *testing.T, handler http.HandlerFunc) *gateway.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := gateway.New(testConfig(srv.URL))
	require.NoError(t, err)
	return c
}

func TestNew_RequiresToken(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.Token = ""
	_, err := gateway.New(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestNew_PropagatesAdapterConfigErrors(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.Telegram = channel.TelegramConfig{}
	_, err := gateway.New(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestSetChannel(t *testing.T) {
	c, err := gateway.New(testConfig("http://unused"))
	require.NoError(t, err)

	for _, ch := range domain.Channels() {
		a, err := c.SetChannel(string(ch))
		require.NoError(t, err)
		assert.Equal(t, ch, a.Channel())
	}

	_, err = c.SetChannel("sms")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrChannelNotSupported))
	assert.Equal(t, "channel 'sms' not supported. Available channels: whatsapp, facebook, instagram, telegram", err.Error())

	assert.Same(t, c.WhatsApp(), mustAdapter(t, c, "whatsapp"))
	assert.Same(t, c.Telegram(), mustAdapter(t, c, "telegram"))
}

func mustAdapter(t *testing.T, c *gateway.Client, name string) channel.Adapter {
	t.Helper()
	a, err := c.SetChannel(name)
	require.NoError(t, err)
	return a
}

func TestClient_SendsDefaultHeaders(t *testing.T) {
	var got http.Header
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := c.GetChannels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer hub-token", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.NotEmpty(t, got.Get("User-Agent"))
}

func TestGetChannels(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id":"c1","name":"Main","type":"whatsapp","status":"connected"}]`)
	})

	got, err := c.GetChannels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.ChannelInfo{{ID: "c1", Name: "Main", Type: "whatsapp", Status: domain.ChannelConnected}}, got)
}

func TestCreateSubscription(t *testing.T) {
	var body map[string]any
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/subscriptions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `{"id":"sub-1","url":"https://hooks.example.com/in","channel":"whatsapp","events":["message","message_status"],"active":true}`)
	})

	sub, err := c.CreateSubscription(context.Background(), domain.SubscriptionRequest{
		URL:     "https://hooks.example.com/in",
		Channel: domain.ChannelWhatsApp,
	})
	require.NoError(t, err)
	assert.Equal(t, "sub-1", sub.ID)
	assert.True(t, sub.Active)

	assert.Equal(t, []any{"message", "message_status"}, body["events"], "empty events default to both kinds")
	assert.NotContains(t, body, "id")
	assert.NotContains(t, body, "active")
}

func TestCreateSubscription_Validation(t *testing.T) {
	calls := 0
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = io.WriteString(w, `{}`)
	})

	tests := []struct {
		name string
		req  domain.SubscriptionRequest
	}{
		{"missing url", domain.SubscriptionRequest{Channel: domain.ChannelWhatsApp}},
		{"relative url", domain.SubscriptionRequest{URL: "/hooks", Channel: domain.ChannelWhatsApp}},
		{"missing channel", domain.SubscriptionRequest{URL: "https://h.example.com"}},
		{"unknown channel", domain.SubscriptionRequest{URL: "https://h.example.com", Channel: "sms"}},
		{"unknown event", domain.SubscriptionRequest{
			URL: "https://h.example.com", Channel: domain.ChannelTelegram, Events: []domain.EventKind{"typing"},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.CreateSubscription(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
		})
	}
	assert.Zero(t, calls)
}

func TestSubscriptions_ListAndDelete(t *testing.T) {
	var deleted string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `[{"id":"sub-1","url":"https://h.example.com","channel":"telegram","events":["message"],"active":true}]`)
		case http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}
	})

	subs, err := c.GetSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, domain.ChannelTelegram, subs[0].Channel)

	require.NoError(t, c.DeleteSubscription(context.Background(), "sub-1"))
	assert.Equal(t, "/subscriptions/sub-1", deleted)

	assert.True(t, errors.Is(c.DeleteSubscription(context.Background(), ""), domain.ErrValidation))
}

func TestDeleteSubscription_ProviderError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"subscription not found"}`)
	})

	err := c.DeleteSubscription(context.Background(), "missing")
	require.Error(t, err)

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, http.StatusNotFound, de.StatusCode)
	assert.True(t, errors.Is(err, domain.ErrProvider))
	assert.Equal(t, "gateway API error (deleteSubscription): subscription not found", err.Error())
}

func TestGetStatus(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"status":"ok","version":"1.4.0"}`)
		})
		resp := c.GetStatus(context.Background())
		assert.True(t, resp.Success)
		assert.Equal(t, domain.GatewayStatus{Status: "ok", Version: "1.4.0"}, resp.Data)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c, err := gateway.New(testConfig(srv.URL))
		require.NoError(t, err)

		resp := c.GetStatus(context.Background())
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Error)
		assert.NotEmpty(t, resp.Code)
	})
}

func TestClients_AreIndependent(t *testing.T) {
	var tokens []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	cfgA := testConfig(srv.URL)
	cfgB := testConfig(srv.URL)
	cfgB.Token = "tenant-b"

	a, err := gateway.New(cfgA)
	require.NoError(t, err)
	b, err := gateway.New(cfgB)
	require.NoError(t, err)

	_, err = a.GetChannels(context.Background())
	require.NoError(t, err)
	_, err = b.GetChannels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer hub-token", "Bearer tenant-b"}, tokens)
}
