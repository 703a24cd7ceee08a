package domain

import (
	"encoding/json"
	"time"
)

// Channel identifies one external messaging provider.
type Channel string

const (
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelFacebook  Channel = "facebook"
	ChannelInstagram Channel = "instagram"
	ChannelTelegram  Channel = "telegram"
)

// Channels returns every supported channel in registration order.
func Channels() []Channel {
	return []Channel{ChannelWhatsApp, ChannelFacebook, ChannelInstagram, ChannelTelegram}
}

func (c Channel) IsValid() bool {
	switch c {
	case ChannelWhatsApp, ChannelFacebook, ChannelInstagram, ChannelTelegram:
		return true
	}
	return false
}

// StatusKind tracks the delivery lifecycle of a message.
type StatusKind string

const (
	StatusSent      StatusKind = "sent"
	StatusDelivered StatusKind = "delivered"
	StatusRead      StatusKind = "read"
	StatusFailed    StatusKind = "failed"
)

type MessageStatus struct {
	ID        string     `json:"id"`
	Status    StatusKind `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	Error     string     `json:"error,omitempty"`
}

// Message is the normalized result of a successful send. Timestamp is
// stamped by the gateway when the result is built, not by the provider.
type Message struct {
	ID        string        `json:"id"`
	From      string        `json:"from"`
	To        string        `json:"to"`
	Content   Content       `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
	Status    MessageStatus `json:"status"`
	Channel   Channel       `json:"channel"`
}

// ChannelState is the connection state reported by the provider.
type ChannelState string

const (
	ChannelConnected    ChannelState = "connected"
	ChannelDisconnected ChannelState = "disconnected"
	ChannelConnecting   ChannelState = "connecting"
)

// ChannelInfo is one entry of the provider's channel listing.
type ChannelInfo struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Type   string         `json:"type"`
	Status ChannelState   `json:"status"`
	Config map[string]any `json:"config,omitempty"`
}

// EventKind names the inbound webhook event types.
type EventKind string

const (
	EventMessage       EventKind = "message"
	EventMessageStatus EventKind = "message_status"
)

func (k EventKind) IsValid() bool {
	return k == EventMessage || k == EventMessageStatus
}

// WebhookEvent is the canonical envelope of one inbound provider event.
// Data keeps the provider-native payload untouched.
type WebhookEvent struct {
	Event     EventKind       `json:"event"`
	Data      json.RawMessage `json:"data"`
	Channel   Channel         `json:"channel"`
	Timestamp time.Time       `json:"timestamp"`
}

// GatewayStatus is the body of the provider health endpoint.
type GatewayStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
