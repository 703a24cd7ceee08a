package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricirt/hubgateway/internal/domain"
)

type pgTokenStore struct {
	pool *pgxpool.Pool
}

// NewPgTokenStore returns a TokenStore reading the hub_tokens table.
func NewPgTokenStore(pool *pgxpool.Pool) TokenStore {
	return &pgTokenStore{pool: pool}
}

func (s *pgTokenStore) HubToken(ctx context.Context, tenantID string) (string, error) {
	var token string
	err := s.pool.QueryRow(ctx, `SELECT token FROM hub_tokens WHERE tenant_id = $1`, tenantID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("tenant %s: %w", tenantID, domain.ErrTokenNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("select hub token: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("tenant %s: %w", tenantID, domain.ErrTokenNotFound)
	}
	return token, nil
}

// StaticTokenStore serves tokens from memory. A single-tenant deployment
// uses it with the configured API token.
type StaticTokenStore map[string]string

func (s StaticTokenStore) HubToken(_ context.Context, tenantID string) (string, error) {
	if token, ok := s[tenantID]; ok && token != "" {
		return token, nil
	}
	return "", fmt.Errorf("tenant %s: %w", tenantID, domain.ErrTokenNotFound)
}
