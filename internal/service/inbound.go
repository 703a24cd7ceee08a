package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ricirt/hubgateway/internal/domain"
	"github.com/ricirt/hubgateway/internal/notify"
)

// InboundRelay forwards normalized webhook events to realtime subscribers
// of a single tenant. Its methods match webhook.EventHandler.
type InboundRelay struct {
	tenantID  string
	publisher notify.Publisher
	logger    *zap.Logger
}

func NewInboundRelay(tenantID string, publisher notify.Publisher, logger *zap.Logger) *InboundRelay {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &InboundRelay{tenantID: tenantID, publisher: publisher, logger: logger}
}

func (r *InboundRelay) OnMessage(ctx context.Context, ev domain.WebhookEvent) error {
	return r.relay(ctx, domain.NotifyMessageInbound, ev)
}

func (r *InboundRelay) OnMessageStatus(ctx context.Context, ev domain.WebhookEvent) error {
	return r.relay(ctx, domain.NotifyMessageStatus, ev)
}

func (r *InboundRelay) relay(ctx context.Context, typ string, ev domain.WebhookEvent) error {
	err := r.publisher.Publish(ctx, domain.Notification{
		TenantID:  r.tenantID,
		Type:      typ,
		Payload:   ev,
		CreatedAt: ev.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("relay %s from %s: %w", ev.Event, ev.Channel, err)
	}
	r.logger.Debug("webhook event relayed",
		zap.String("channel", string(ev.Channel)),
		zap.String("event", string(ev.Event)),
	)
	return nil
}
