package repository

import (
	"context"

	"github.com/ricirt/hubgateway/internal/domain"
)

// MessageRepository records outbound messages and touches the ticket they
// belong to. The pgx implementation is in pg_message_repo.go.
// Tests use a hand-written mock (mock_message_repo.go).
type MessageRepository interface {
	CreateMessage(ctx context.Context, m *domain.MessageRecord) error
	UpdateTicket(ctx context.Context, ticketID string, u domain.TicketUpdate) error
}

// TokenStore resolves the provider API token of a tenant. A tenant without
// a token yields domain.ErrTokenNotFound.
type TokenStore interface {
	HubToken(ctx context.Context, tenantID string) (string, error)
}

// Discard is the MessageRepository used when no database is configured.
type Discard struct{}

func (Discard) CreateMessage(context.Context, *domain.MessageRecord) error { return nil }

func (Discard) UpdateTicket(context.Context, string, domain.TicketUpdate) error { return nil }
