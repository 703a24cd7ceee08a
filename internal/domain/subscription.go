package domain

import "github.com/google/uuid"

// Subscription is a webhook delivery target registered with the provider.
// ID and Active are assigned by the provider when the subscription is created.
type Subscription struct {
	ID      string      `json:"id"`
	URL     string      `json:"url"`
	Channel Channel     `json:"channel"`
	Events  []EventKind `json:"events"`
	Active  bool        `json:"active"`
}

// SubscriptionRequest is the descriptor posted to the provider: a
// Subscription without the provider-assigned fields.
type SubscriptionRequest struct {
	URL     string      `json:"url" validate:"required,url"`
	Channel Channel     `json:"channel" validate:"required"`
	Events  []EventKind `json:"events" validate:"dive,oneof=message message_status"`
}

// Request strips the provider-assigned fields.
func (s Subscription) Request() SubscriptionRequest {
	return SubscriptionRequest{
		URL:     s.URL,
		Channel: s.Channel,
		Events:  append([]EventKind(nil), s.Events...),
	}
}

// DefaultEvents is the event set a subscription receives when none is given.
func DefaultEvents() []EventKind {
	return []EventKind{EventMessage, EventMessageStatus}
}

type SubscriptionOption func(*Subscription)

func WithChannel(ch Channel) SubscriptionOption {
	return func(s *Subscription) { s.Channel = ch }
}

func WithEvents(events ...EventKind) SubscriptionOption {
	return func(s *Subscription) {
		if len(events) > 0 {
			s.Events = append([]EventKind(nil), events...)
		}
	}
}

// NewSubscription builds a local descriptor for url. The ID is a temporary
// local identifier; the provider assigns the real one on creation.
func NewSubscription(url string, opts ...SubscriptionOption) Subscription {
	s := Subscription{
		ID:      uuid.New().String(),
		URL:     url,
		Channel: ChannelWhatsApp,
		Events:  DefaultEvents(),
		Active:  true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
