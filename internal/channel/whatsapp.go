package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ricirt/hubgateway/internal/domain"
)

const (
	DefaultWhatsAppVersion  = "v18.0"
	defaultTemplateLanguage = "pt_BR"
)

// WhatsAppConfig holds the Business API credentials. PhoneNumberID and
// AccessToken are required.
type WhatsAppConfig struct {
	PhoneNumberID      string
	AccessToken        string
	APIVersion         string
	DefaultCountryCode string
}

// WhatsApp sends through the WhatsApp Business Cloud API. It carries all
// five content variants.
type WhatsApp struct {
	sender
	cfg WhatsAppConfig
}

var _ Adapter = (*WhatsApp)(nil)

func NewWhatsApp(cfg WhatsAppConfig, s Settings) (*WhatsApp, error) {
	if cfg.PhoneNumberID == "" || cfg.AccessToken == "" {
		return nil, domain.NewError(domain.ChannelWhatsApp, "configure", domain.ErrConfiguration,
			"phone number id and access token are required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultWhatsAppVersion
	}
	if cfg.DefaultCountryCode == "" {
		cfg.DefaultCountryCode = DefaultCountryCode
	}
	return &WhatsApp{sender: newSender(domain.ChannelWhatsApp, s), cfg: cfg}, nil
}

func (w *WhatsApp) SendMessage(ctx context.Context, from, to string, content domain.Content) (*domain.APIResponse[domain.Message], error) {
	if err := w.validate(from, to, content); err != nil {
		return nil, w.fail(err)
	}
	recipient, ok := NormalizeRecipient(to, w.cfg.DefaultCountryCode)
	if !ok {
		return nil, w.fail(domain.NewError(w.channel, opSendMessage, domain.ErrValidation,
			fmt.Sprintf("recipient %q holds no digits", to)))
	}

	return w.send(ctx, from, to, content, outbound{
		translate: waTranslator{to: recipient},
		request: func(payload any) Request {
			return Request{
				Method: http.MethodPost,
				Path:   w.path("/messages"),
				Body:   payload,
				Token:  w.cfg.AccessToken,
			}
		},
		messageID: func(body json.RawMessage) (string, error) {
			var resp struct {
				Messages []struct {
					ID string `json:"id"`
				} `json:"messages"`
			}
			if err := json.Unmarshal(body, &resp); err != nil || len(resp.Messages) == 0 || resp.Messages[0].ID == "" {
				return "", missingID("messages[0].id")
			}
			return resp.Messages[0].ID, nil
		},
	})
}

// VerifyPhoneNumber fetches the provider record for a business phone number.
func (w *WhatsApp) VerifyPhoneNumber(ctx context.Context, phoneNumberID string) (*domain.APIResponse[map[string]any], error) {
	if phoneNumberID == "" {
		return nil, domain.NewError(w.channel, "verifyPhoneNumber", domain.ErrValidation, "phone number id is required")
	}
	var out map[string]any
	err := w.call(ctx, "verifyPhoneNumber", Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/%s/%s", w.cfg.APIVersion, phoneNumberID),
		Token:  w.cfg.AccessToken,
	}, &out)
	if err != nil {
		return nil, err
	}
	return domain.OK(out), nil
}

// ListTemplates returns the message templates approved for the configured
// number. A response without a data array yields an empty list.
func (w *WhatsApp) ListTemplates(ctx context.Context) (*domain.APIResponse[[]map[string]any], error) {
	var out struct {
		Data []map[string]any `json:"data"`
	}
	err := w.call(ctx, "listTemplates", Request{
		Method: http.MethodGet,
		Path:   w.path("/message_templates"),
		Token:  w.cfg.AccessToken,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []map[string]any{}
	}
	return domain.OK(out.Data), nil
}

// SetWebhook registers webhookURL for message, status and contact events on
// the configured number.
func (w *WhatsApp) SetWebhook(ctx context.Context, webhookURL, verifyToken string) (*domain.APIResponse[map[string]any], error) {
	if webhookURL == "" || verifyToken == "" {
		return nil, domain.NewError(w.channel, "setWebhook", domain.ErrValidation, "webhook url and verify token are required")
	}
	var out map[string]any
	err := w.call(ctx, "setWebhook", Request{
		Method: http.MethodPost,
		Path:   w.path("/webhooks"),
		Token:  w.cfg.AccessToken,
		Body: map[string]any{
			"id":           w.cfg.PhoneNumberID,
			"webhook_url":  webhookURL,
			"verify_token": verifyToken,
			"fields":       []string{"messages", "message_status", "contacts"},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return domain.OK(out), nil
}

func (w *WhatsApp) path(suffix string) string {
	return fmt.Sprintf("/%s/%s%s", w.cfg.APIVersion, w.cfg.PhoneNumberID, suffix)
}

type waMessage struct {
	MessagingProduct string           `json:"messaging_product"`
	RecipientType    string           `json:"recipient_type"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Context          *waContext       `json:"context,omitempty"`
	Text             *waText          `json:"text,omitempty"`
	Image            *waMedia         `json:"image,omitempty"`
	Video            *waMedia         `json:"video,omitempty"`
	Audio            *waMedia         `json:"audio,omitempty"`
	Document         *waMedia         `json:"document,omitempty"`
	Location         *waLocation      `json:"location,omitempty"`
	Contacts         []domain.Contact `json:"contacts,omitempty"`
	Template         *waTemplate      `json:"template,omitempty"`
}

type waContext struct {
	MessageID string `json:"message_id"`
}

type waText struct {
	Body string `json:"body"`
}

type waMedia struct {
	Link     string `json:"link"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type waLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

type waTemplate struct {
	Name       string        `json:"name"`
	Language   waLanguage    `json:"language"`
	Components []waComponent `json:"components"`
}

type waLanguage struct {
	Code string `json:"code"`
}

type waComponent struct {
	Type       string        `json:"type"`
	Parameters []waParameter `json:"parameters"`
}

type waParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type waTranslator struct {
	to string
}

func (t waTranslator) base(kind string) waMessage {
	return waMessage{MessagingProduct: "whatsapp", RecipientType: "individual", To: t.to, Type: kind}
}

func (t waTranslator) VisitText(c domain.TextContent) (any, error) {
	m := t.base("text")
	m.Text = &waText{Body: c.Body}
	if c.ReplyMessageID != "" {
		m.Context = &waContext{MessageID: c.ReplyMessageID}
	}
	return m, nil
}

func (t waTranslator) VisitFile(c domain.FileContent) (any, error) {
	kind := mediaKind(c.MimeType)
	m := t.base(kind)
	media := &waMedia{Link: c.URL, Caption: c.Caption}
	switch kind {
	case "image":
		m.Image = media
	case "video":
		m.Video = media
	case "audio":
		m.Audio = media
	default:
		media.Filename = c.Filename
		m.Document = media
	}
	return m, nil
}

func (t waTranslator) VisitLocation(c domain.LocationContent) (any, error) {
	m := t.base("location")
	m.Location = &waLocation{Latitude: c.Latitude, Longitude: c.Longitude, Name: c.Name, Address: c.Address}
	return m, nil
}

func (t waTranslator) VisitContacts(c domain.ContactsContent) (any, error) {
	m := t.base("contacts")
	m.Contacts = c.Contacts
	return m, nil
}

func (t waTranslator) VisitTemplate(c domain.TemplateContent) (any, error) {
	lang := c.Language
	if lang == "" {
		lang = defaultTemplateLanguage
	}
	params := make([]waParameter, len(c.TemplateData))
	for i, v := range c.TemplateData {
		params[i] = waParameter{Type: "text", Text: fmt.Sprint(v)}
	}
	m := t.base("template")
	m.Template = &waTemplate{
		Name:       c.TemplateName,
		Language:   waLanguage{Code: lang},
		Components: []waComponent{{Type: "body", Parameters: params}},
	}
	return m, nil
}
