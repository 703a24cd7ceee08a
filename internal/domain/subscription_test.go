package domain_test

import (
	"testing"

	"github.com/ricirt/hubgateway/internal/domain"
)

func TestNewSubscription_Defaults(t *testing.T) {
	s := domain.NewSubscription("https://backend.example.com/hub-webhook/5511")

	if s.ID == "" || !s.Active {
		t.Fatalf("expected local id and active=true, got %+v", s)
	}
	if s.Channel != domain.ChannelWhatsApp {
		t.Fatalf("expected default channel whatsapp, got %s", s.Channel)
	}
	if len(s.Events) != 2 || s.Events[0] != domain.EventMessage || s.Events[1] != domain.EventMessageStatus {
		t.Fatalf("unexpected default events: %v", s.Events)
	}
}

func TestNewSubscription_Options(t *testing.T) {
	s := domain.NewSubscription("https://x",
		domain.WithChannel(domain.ChannelTelegram),
		domain.WithEvents(domain.EventMessage),
	)
	if s.Channel != domain.ChannelTelegram || len(s.Events) != 1 {
		t.Fatalf("options not applied: %+v", s)
	}

	req := s.Request()
	if req.URL != s.URL || req.Channel != s.Channel || len(req.Events) != 1 {
		t.Fatalf("request does not mirror descriptor: %+v", req)
	}
}

func TestChannel_IsValid(t *testing.T) {
	for _, ch := range domain.Channels() {
		if !ch.IsValid() {
			t.Fatalf("expected %q to be valid", ch)
		}
	}
	if domain.Channel("sms").IsValid() {
		t.Fatal("expected sms to be invalid")
	}
}
