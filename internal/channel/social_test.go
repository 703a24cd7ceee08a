package channel_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricirt/hubgateway/internal/channel"
	"github.com/ricirt/hubgateway/internal/domain"
)

func TestSocial_SendText(t *testing.T) {
	tests := []struct {
		name    string
		build   func(channel.Settings) *channel.Social
		channel domain.Channel
		path    string
	}{
		{"facebook", channel.NewFacebook, domain.ChannelFacebook, "/facebook/messages"},
		{"instagram", channel.NewInstagram, domain.ChannelInstagram, "/instagram/messages"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, srv := newProvider(t, replyJSON(http.StatusOK, `{"message_id":"mid.1"}`))
			a := tc.build(settings(srv.URL))

			resp, err := a.SendMessage(context.Background(), "page-1", "psid-9", domain.NewText("hi"))
			require.NoError(t, err)
			assert.Equal(t, "mid.1", resp.Data.ID)
			assert.Equal(t, tc.channel, resp.Data.Channel)
			assert.Equal(t, tc.channel, a.Channel())

			assert.Equal(t, tc.path, rec.lastPath())
			assert.Equal(t, "Bearer hub-token", rec.lastAuth())
			body := rec.lastBody(t)
			assert.Equal(t, map[string]any{"id": "psid-9"}, body["recipient"])
			assert.Equal(t, "RESPONSE", body["messaging_type"])
			assert.Equal(t, map[string]any{"text": "hi"}, body["message"])
		})
	}
}

func TestSocial_FileAttachmentType(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"image/jpeg", "image"},
		{"video/mp4", "file"},
		{"application/pdf", "file"},
	}
	for _, tc := range tests {
		t.Run(tc.mime, func(t *testing.T) {
			rec, srv := newProvider(t, replyJSON(http.StatusOK, `{"message_id":"mid.2"}`))
			fb := channel.NewFacebook(settings(srv.URL))

			_, err := fb.SendMessage(context.Background(), "page-1", "psid-9",
				domain.NewFile("https://cdn.example.com/x", tc.mime, "", ""))
			require.NoError(t, err)

			attachment := rec.lastBody(t)["message"].(map[string]any)["attachment"].(map[string]any)
			assert.Equal(t, tc.want, attachment["type"])
			assert.Equal(t, map[string]any{"url": "https://cdn.example.com/x", "is_reusable": true}, attachment["payload"])
		})
	}
}

func TestSocial_UnsupportedContent(t *testing.T) {
	contents := []domain.Content{
		domain.NewLocation(1, 2, "", ""),
		domain.NewContacts(),
		domain.NewTemplate("t", nil, ""),
	}
	for _, content := range contents {
		t.Run(string(content.Type()), func(t *testing.T) {
			rec, srv := newProvider(t, replyJSON(http.StatusOK, `{"message_id":"never"}`))
			fb := channel.NewFacebook(settings(srv.URL))

			_, err := fb.SendMessage(context.Background(), "page-1", "psid-9", content)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrUnsupportedContent))
			assert.True(t, strings.Contains(err.Error(), string(content.Type())))
			assert.True(t, strings.Contains(err.Error(), "facebook"))
			assert.EqualValues(t, 0, rec.calls.Load(), "no network call for unsupported content")
		})
	}
}
