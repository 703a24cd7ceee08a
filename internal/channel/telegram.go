package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ricirt/hubgateway/internal/domain"
)

const DefaultTelegramAPIURL = "https://api.telegram.org"

// TelegramConfig holds the Bot API credentials. BotToken is required.
type TelegramConfig struct {
	BotToken string
	APIURL   string
}

// Telegram sends through the Telegram Bot API. Only text and file content
// are carried; each file kind goes through its own Bot API method.
type Telegram struct {
	sender
	token  string
	apiURL string
}

var _ Adapter = (*Telegram)(nil)

func NewTelegram(cfg TelegramConfig, s Settings) (*Telegram, error) {
	if cfg.BotToken == "" {
		return nil, domain.NewError(domain.ChannelTelegram, "configure", domain.ErrConfiguration, "bot token is required")
	}
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultTelegramAPIURL
	}
	return &Telegram{sender: newSender(domain.ChannelTelegram, s), token: cfg.BotToken, apiURL: apiURL}, nil
}

func (t *Telegram) SendMessage(ctx context.Context, from, to string, content domain.Content) (*domain.APIResponse[domain.Message], error) {
	return t.send(ctx, from, to, content, outbound{
		translate: tgTranslator{chatID: to, channel: t.channel},
		request: func(payload any) Request {
			call := payload.(tgCall)
			return t.request(http.MethodPost, call.method, call.body)
		},
		messageID: func(body json.RawMessage) (string, error) {
			var resp struct {
				Result struct {
					MessageID int64 `json:"message_id"`
				} `json:"result"`
			}
			if err := json.Unmarshal(body, &resp); err != nil || resp.Result.MessageID == 0 {
				return "", missingID("result.message_id")
			}
			return strconv.FormatInt(resp.Result.MessageID, 10), nil
		},
	})
}

// GetBotInfo returns the getMe result for the configured bot.
func (t *Telegram) GetBotInfo(ctx context.Context) (*domain.APIResponse[map[string]any], error) {
	var out struct {
		Result map[string]any `json:"result"`
	}
	if err := t.call(ctx, "getBotInfo", t.request(http.MethodGet, "getMe", nil), &out); err != nil {
		return nil, err
	}
	return domain.OK(out.Result), nil
}

// SetWebhook points the bot's update delivery at webhookURL.
func (t *Telegram) SetWebhook(ctx context.Context, webhookURL string) (*domain.APIResponse[bool], error) {
	if webhookURL == "" {
		return nil, domain.NewError(t.channel, "setWebhook", domain.ErrValidation, "webhook url is required")
	}
	var out struct {
		Result bool `json:"result"`
	}
	req := t.request(http.MethodPost, "setWebhook", map[string]string{"url": webhookURL})
	if err := t.call(ctx, "setWebhook", req, &out); err != nil {
		return nil, err
	}
	return domain.OK(out.Result), nil
}

// request builds a Bot API call. The token lives in the URL path, so the
// logged path is redacted and the gateway credential is not sent.
func (t *Telegram) request(method, apiMethod string, body any) Request {
	return Request{
		Method:    method,
		Path:      t.apiURL + "/bot" + t.token + "/" + apiMethod,
		LogPath:   t.apiURL + "/bot<redacted>/" + apiMethod,
		Body:      body,
		Anonymous: true,
	}
}

type tgCall struct {
	method string
	body   map[string]any
}

type tgTranslator struct {
	chatID  string
	channel domain.Channel
}

func (t tgTranslator) VisitText(c domain.TextContent) (any, error) {
	body := map[string]any{"chat_id": t.chatID, "text": c.Body}
	if c.ReplyMessageID != "" {
		body["reply_to_message_id"] = c.ReplyMessageID
	}
	return tgCall{method: "sendMessage", body: body}, nil
}

func (t tgTranslator) VisitFile(c domain.FileContent) (any, error) {
	field := mediaKind(c.MimeType)
	if field == "image" {
		field = "photo"
	}
	body := map[string]any{"chat_id": t.chatID, field: c.URL}
	if c.Caption != "" {
		body["caption"] = c.Caption
	}
	return tgCall{method: "send" + strings.ToUpper(field[:1]) + field[1:], body: body}, nil
}

func (t tgTranslator) VisitLocation(c domain.LocationContent) (any, error) {
	return nil, domain.Unsupported(t.channel, opSendMessage, c.Type())
}

func (t tgTranslator) VisitContacts(c domain.ContactsContent) (any, error) {
	return nil, domain.Unsupported(t.channel, opSendMessage, c.Type())
}

func (t tgTranslator) VisitTemplate(c domain.TemplateContent) (any, error) {
	return nil, domain.Unsupported(t.channel, opSendMessage, c.Type())
}
