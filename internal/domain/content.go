package domain

import "encoding/json"

// ContentType is the discriminator carried by every content variant.
type ContentType string

const (
	ContentText     ContentType = "text"
	ContentFile     ContentType = "file"
	ContentLocation ContentType = "location"
	ContentContacts ContentType = "contacts"
	ContentTemplate ContentType = "template"
)

// Content is the provider-agnostic message payload. The set of variants is
// closed: only the types in this file implement it.
type Content interface {
	Type() ContentType
	accept(v ContentVisitor) (any, error)
}

// ContentVisitor translates each content variant into a provider payload.
// Adapters implement every method; variants a provider cannot carry are
// rejected explicitly with an ErrUnsupportedContent error.
type ContentVisitor interface {
	VisitText(c TextContent) (any, error)
	VisitFile(c FileContent) (any, error)
	VisitLocation(c LocationContent) (any, error)
	VisitContacts(c ContactsContent) (any, error)
	VisitTemplate(c TemplateContent) (any, error)
}

// Visit dispatches c to the matching visitor method.
func Visit(c Content, v ContentVisitor) (any, error) {
	return c.accept(v)
}

// TextContent is a plain text message. ReplyMessageID optionally quotes an
// earlier message on providers that support replies.
type TextContent struct {
	Body           string `json:"body"`
	ReplyMessageID string `json:"replyMessageId,omitempty"`
}

func NewText(body string) TextContent { return TextContent{Body: body} }

func (TextContent) Type() ContentType                     { return ContentText }
func (c TextContent) accept(v ContentVisitor) (any, error) { return v.VisitText(c) }

func (c TextContent) MarshalJSON() ([]byte, error) {
	type plain TextContent
	return json.Marshal(struct {
		Type ContentType `json:"type"`
		plain
	}{ContentText, plain(c)})
}

// FileContent references media by URL. MimeType drives the per-provider
// media kind (image, video, audio, document).
type FileContent struct {
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

func NewFile(url, mimeType, caption, filename string) FileContent {
	return FileContent{URL: url, MimeType: mimeType, Caption: caption, Filename: filename}
}

func (FileContent) Type() ContentType                     { return ContentFile }
func (c FileContent) accept(v ContentVisitor) (any, error) { return v.VisitFile(c) }

func (c FileContent) MarshalJSON() ([]byte, error) {
	type plain FileContent
	return json.Marshal(struct {
		Type ContentType `json:"type"`
		plain
	}{ContentFile, plain(c)})
}

type LocationContent struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

func NewLocation(lat, lng float64, name, address string) LocationContent {
	return LocationContent{Latitude: lat, Longitude: lng, Name: name, Address: address}
}

func (LocationContent) Type() ContentType                     { return ContentLocation }
func (c LocationContent) accept(v ContentVisitor) (any, error) { return v.VisitLocation(c) }

func (c LocationContent) MarshalJSON() ([]byte, error) {
	type plain LocationContent
	return json.Marshal(struct {
		Type ContentType `json:"type"`
		plain
	}{ContentLocation, plain(c)})
}

type ContactsContent struct {
	Contacts []Contact `json:"contacts"`
}

func NewContacts(contacts ...Contact) ContactsContent {
	return ContactsContent{Contacts: append([]Contact(nil), contacts...)}
}

func (ContactsContent) Type() ContentType                     { return ContentContacts }
func (c ContactsContent) accept(v ContentVisitor) (any, error) { return v.VisitContacts(c) }

func (c ContactsContent) MarshalJSON() ([]byte, error) {
	type plain ContactsContent
	return json.Marshal(struct {
		Type ContentType `json:"type"`
		plain
	}{ContentContacts, plain(c)})
}

// TemplateContent fills a provider-approved template. TemplateData values
// are positional and rendered as text parameters.
type TemplateContent struct {
	TemplateName string `json:"templateName"`
	TemplateData []any  `json:"templateData"`
	Language     string `json:"language,omitempty"`
}

func NewTemplate(name string, data []any, language string) TemplateContent {
	return TemplateContent{TemplateName: name, TemplateData: append([]any(nil), data...), Language: language}
}

func (TemplateContent) Type() ContentType                     { return ContentTemplate }
func (c TemplateContent) accept(v ContentVisitor) (any, error) { return v.VisitTemplate(c) }

func (c TemplateContent) MarshalJSON() ([]byte, error) {
	type plain TemplateContent
	return json.Marshal(struct {
		Type ContentType `json:"type"`
		plain
	}{ContentTemplate, plain(c)})
}

// Contact is a vCard-like entry carried by ContactsContent.
type Contact struct {
	Name   ContactName    `json:"name"`
	Phones []ContactPhone `json:"phones,omitempty"`
	Emails []ContactEmail `json:"emails,omitempty"`
}

type ContactName struct {
	FormattedName string `json:"formatted_name"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
}

type ContactPhone struct {
	Phone string `json:"phone"`
	WaID  string `json:"wa_id,omitempty"`
	Type  string `json:"type,omitempty"`
}

type ContactEmail struct {
	Email string `json:"email"`
	Type  string `json:"type,omitempty"`
}
