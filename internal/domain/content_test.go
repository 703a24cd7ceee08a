package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ricirt/hubgateway/internal/domain"
)

// recordingVisitor reports which variant method was invoked.
type recordingVisitor struct{}

func (recordingVisitor) VisitText(domain.TextContent) (any, error)         { return "text", nil }
func (recordingVisitor) VisitFile(domain.FileContent) (any, error)         { return "file", nil }
func (recordingVisitor) VisitLocation(domain.LocationContent) (any, error) { return "location", nil }
func (recordingVisitor) VisitContacts(domain.ContactsContent) (any, error) { return "contacts", nil }
func (recordingVisitor) VisitTemplate(domain.TemplateContent) (any, error) { return "template", nil }

func allContent() []domain.Content {
	return []domain.Content{
		domain.NewText("hello"),
		domain.NewFile("https://cdn.example.com/a.png", "image/png", "look", "a.png"),
		domain.NewLocation(-23.55, -46.63, "Office", "Av. Paulista"),
		domain.NewContacts(domain.Contact{Name: domain.ContactName{FormattedName: "Ana"}}),
		domain.NewTemplate("welcome", []any{"Ana", 3}, ""),
	}
}

func TestContent_TypeMatchesVisitedVariant(t *testing.T) {
	for _, c := range allContent() {
		got, err := domain.Visit(c, recordingVisitor{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.Type(), err)
		}
		if got != string(c.Type()) {
			t.Fatalf("expected visitor %q, got %q", c.Type(), got)
		}
	}
}

func TestContent_JSONCarriesDiscriminator(t *testing.T) {
	for _, c := range allContent() {
		raw, err := json.Marshal(c)
		if err != nil {
			t.Fatalf("%s: marshal: %v", c.Type(), err)
		}
		var probe struct {
			Type domain.ContentType `json:"type"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			t.Fatalf("%s: unmarshal: %v", c.Type(), err)
		}
		if probe.Type != c.Type() {
			t.Fatalf("expected type %q in %s", c.Type(), raw)
		}
	}
}

func TestFileContent_JSONFields(t *testing.T) {
	raw, _ := json.Marshal(domain.NewFile("https://x/y.pdf", "application/pdf", "", "y.pdf"))
	var m map[string]any
	_ = json.Unmarshal(raw, &m)
	if m["url"] != "https://x/y.pdf" || m["mimeType"] != "application/pdf" || m["filename"] != "y.pdf" {
		t.Fatalf("unexpected encoding: %s", raw)
	}
	if _, ok := m["caption"]; ok {
		t.Fatalf("empty caption should be omitted: %s", raw)
	}
}

func TestNewTemplate_CopiesData(t *testing.T) {
	data := []any{"a"}
	tpl := domain.NewTemplate("t", data, "en_US")
	data[0] = "mutated"
	if tpl.TemplateData[0] != "a" {
		t.Fatal("template data must not alias the caller's slice")
	}
}

func TestUnsupported_IsUnsupportedContent(t *testing.T) {
	err := domain.Unsupported(domain.ChannelFacebook, "sendMessage", domain.ContentLocation)
	if !errors.Is(err, domain.ErrUnsupportedContent) {
		t.Fatalf("expected ErrUnsupportedContent, got %v", err)
	}
	want := "facebook (sendMessage): content type 'location' not supported by channel facebook"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
