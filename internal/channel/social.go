package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ricirt/hubgateway/internal/domain"
)

// Social sends through the Messenger-style endpoints the gateway exposes
// for Facebook and Instagram. Only text and file content are carried.
type Social struct {
	sender
}

var _ Adapter = (*Social)(nil)

func NewFacebook(s Settings) *Social {
	return &Social{sender: newSender(domain.ChannelFacebook, s)}
}

func NewInstagram(s Settings) *Social {
	return &Social{sender: newSender(domain.ChannelInstagram, s)}
}

func (a *Social) SendMessage(ctx context.Context, from, to string, content domain.Content) (*domain.APIResponse[domain.Message], error) {
	return a.send(ctx, from, to, content, outbound{
		translate: socialTranslator{to: to, channel: a.channel},
		request: func(payload any) Request {
			return Request{
				Method: http.MethodPost,
				Path:   "/" + string(a.channel) + "/messages",
				Body:   payload,
			}
		},
		messageID: func(body json.RawMessage) (string, error) {
			var resp struct {
				MessageID string `json:"message_id"`
			}
			if err := json.Unmarshal(body, &resp); err != nil || resp.MessageID == "" {
				return "", missingID("message_id")
			}
			return resp.MessageID, nil
		},
	})
}

type socialMessage struct {
	Recipient     socialRecipient `json:"recipient"`
	MessagingType string          `json:"messaging_type"`
	Message       socialBody      `json:"message"`
}

type socialRecipient struct {
	ID string `json:"id"`
}

type socialBody struct {
	Text       string            `json:"text,omitempty"`
	Attachment *socialAttachment `json:"attachment,omitempty"`
}

type socialAttachment struct {
	Type    string        `json:"type"`
	Payload socialPayload `json:"payload"`
}

type socialPayload struct {
	URL        string `json:"url"`
	IsReusable bool   `json:"is_reusable"`
}

type socialTranslator struct {
	to      string
	channel domain.Channel
}

func (t socialTranslator) message(body socialBody) socialMessage {
	return socialMessage{
		Recipient:     socialRecipient{ID: t.to},
		MessagingType: "RESPONSE",
		Message:       body,
	}
}

func (t socialTranslator) VisitText(c domain.TextContent) (any, error) {
	return t.message(socialBody{Text: c.Body}), nil
}

func (t socialTranslator) VisitFile(c domain.FileContent) (any, error) {
	kind := "file"
	if strings.HasPrefix(c.MimeType, "image") {
		kind = "image"
	}
	return t.message(socialBody{Attachment: &socialAttachment{
		Type:    kind,
		Payload: socialPayload{URL: c.URL, IsReusable: true},
	}}), nil
}

func (t socialTranslator) VisitLocation(c domain.LocationContent) (any, error) {
	return nil, domain.Unsupported(t.channel, opSendMessage, c.Type())
}

func (t socialTranslator) VisitContacts(c domain.ContactsContent) (any, error) {
	return nil, domain.Unsupported(t.channel, opSendMessage, c.Type())
}

func (t socialTranslator) VisitTemplate(c domain.TemplateContent) (any, error) {
	return nil, domain.Unsupported(t.channel, opSendMessage, c.Type())
}
