package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ricirt/hubgateway/internal/domain"
)

// Publisher pushes realtime notifications (ticket updates, inbound
// messages, status changes) to whatever fans them out to connected UIs.
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
	Close() error
}

// Nop discards every notification. It stands in when no broker is
// configured.
type Nop struct{}

func (Nop) Publish(context.Context, domain.Notification) error { return nil }
func (Nop) Close() error                                       { return nil }

// RoutingKey addresses a notification by tenant and type,
// e.g. "acme.ticket:update".
func RoutingKey(n domain.Notification) string {
	return n.TenantID + "." + n.Type
}

type wireNotification struct {
	TenantID  string    `json:"tenantId"`
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

func encode(n domain.Notification) ([]byte, error) {
	return json.Marshal(wireNotification{
		TenantID:  n.TenantID,
		Type:      n.Type,
		Payload:   n.Payload,
		CreatedAt: n.CreatedAt,
	})
}
