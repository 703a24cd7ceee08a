package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricirt/hubgateway/internal/domain"
)

type pgMessageRepository struct {
	pool *pgxpool.Pool
}

// NewPgMessageRepository returns a MessageRepository backed by PostgreSQL.
func NewPgMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &pgMessageRepository{pool: pool}
}

func (r *pgMessageRepository) CreateMessage(ctx context.Context, m *domain.MessageRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO hub_messages
			(id, tenant_id, ticket_id, contact_id, channel, body, from_me,
			 file_name, media_type, original_name, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO NOTHING`,
		m.ID, m.TenantID, m.TicketID, m.ContactID, string(m.Channel), m.Body, m.FromMe,
		nullable(m.FileName), nullable(m.MediaType), nullable(m.OriginalName), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *pgMessageRepository) UpdateTicket(ctx context.Context, ticketID string, u domain.TicketUpdate) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE hub_tickets
		SET last_message = $2, answered = $3, updated_at = now()
		WHERE id = $1`,
		ticketID, u.LastMessage, u.Answered,
	)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
